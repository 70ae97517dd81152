// Package plant defines the instrumented tags of the FCC unit.
package plant

import (
	"fmt"
	"os"
	"strings"

	"FCCMonitorAPI/internal/models"

	"gopkg.in/yaml.v3"
)

// TagDefinition is the static configuration of a tag.
type TagDefinition struct {
	ID          string          `yaml:"id"`
	Name        string          `yaml:"name"`
	Description string          `yaml:"description"`
	Unit        string          `yaml:"unit"`
	Setpoint    float64         `yaml:"setpoint"`
	Limits      models.Limits   `yaml:"limits"`
	Position    models.Position `yaml:"position"`
}

type Catalog struct {
	Unit string          `yaml:"unit"`
	Tags []TagDefinition `yaml:"tags"`
}

// NewTag builds the live tag for a definition, starting at its setpoint.
func (d TagDefinition) NewTag() models.Tag {
	tag := models.Tag{
		ID:             d.ID,
		Name:           d.Name,
		Description:    d.Description,
		Unit:           d.Unit,
		CurrentValue:   d.Setpoint,
		Setpoint:       d.Setpoint,
		PredictedValue: d.Setpoint,
		Limits:         d.Limits,
		Position:       d.Position,
		History:        make([]models.Sample, 0, models.HistoryCapacity),
	}
	tag.RefreshStatus()
	return tag
}

// Validate checks ids are unique and limits are strictly ordered.
func (c *Catalog) Validate() error {
	var problems []string
	seen := make(map[string]bool, len(c.Tags))

	if len(c.Tags) == 0 {
		problems = append(problems, "catalog has no tags")
	}
	for i, t := range c.Tags {
		if t.ID == "" {
			problems = append(problems, fmt.Sprintf("tag %d has no id", i))
			continue
		}
		if seen[t.ID] {
			problems = append(problems, fmt.Sprintf("duplicate tag id %s", t.ID))
		}
		seen[t.ID] = true
		if !t.Limits.Ordered() {
			problems = append(problems, fmt.Sprintf("tag %s limits must satisfy low_alarm < low_warning < high_warning < high_alarm", t.ID))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid tag catalog:\n  - %s", strings.Join(problems, "\n  - "))
	}
	return nil
}

// LoadCatalog reads a YAML catalog from path, or returns the built-in catalog when path is empty.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return DefaultCatalog(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tag catalog: %w", err)
	}
	return ParseCatalog(data)
}

func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse tag catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func DefaultCatalog() *Catalog {
	tags := make([]TagDefinition, len(defaultTags))
	copy(tags, defaultTags)
	return &Catalog{Unit: "FCC-1", Tags: tags}
}

func limits(lowAlarm, lowWarning, highWarning, highAlarm float64) models.Limits {
	return models.Limits{LowAlarm: lowAlarm, LowWarning: lowWarning, HighWarning: highWarning, HighAlarm: highAlarm}
}

var defaultTags = []TagDefinition{
	{ID: "TI-101", Name: "Reactor Temperature", Description: "Riser outlet / reactor vessel temperature", Unit: "°C", Setpoint: 520, Limits: limits(490, 500, 540, 550), Position: models.Position{X: 320, Y: 140}},
	{ID: "TI-102", Name: "Riser Outlet Temperature", Description: "Riser top temperature", Unit: "°C", Setpoint: 525, Limits: limits(495, 505, 545, 555), Position: models.Position{X: 300, Y: 220}},
	{ID: "TI-201", Name: "Regenerator Temperature", Description: "Regenerator dense phase temperature", Unit: "°C", Setpoint: 700, Limits: limits(660, 675, 720, 735), Position: models.Position{X: 560, Y: 150}},
	{ID: "TI-202", Name: "Regenerator Dilute Phase Temperature", Description: "Afterburn indicator", Unit: "°C", Setpoint: 710, Limits: limits(670, 685, 735, 750), Position: models.Position{X: 560, Y: 80}},
	{ID: "TI-301", Name: "Main Fractionator Top Temperature", Description: "Fractionator overhead temperature", Unit: "°C", Setpoint: 125, Limits: limits(105, 112, 138, 145), Position: models.Position{X: 820, Y: 90}},
	{ID: "PI-101", Name: "Reactor Pressure", Description: "Reactor vessel top pressure", Unit: "kg/cm²g", Setpoint: 1.6, Limits: limits(1.2, 1.35, 1.85, 2.0), Position: models.Position{X: 340, Y: 70}},
	{ID: "PI-201", Name: "Regenerator Pressure", Description: "Regenerator top pressure", Unit: "kg/cm²g", Setpoint: 1.9, Limits: limits(1.5, 1.65, 2.15, 2.3), Position: models.Position{X: 580, Y: 40}},
	{ID: "PI-301", Name: "Fractionator Top Pressure", Description: "Main fractionator overhead pressure", Unit: "kg/cm²g", Setpoint: 0.8, Limits: limits(0.5, 0.6, 1.0, 1.1), Position: models.Position{X: 840, Y: 40}},
	{ID: "FI-101", Name: "Fresh Feed Flow", Description: "Combined fresh feed to riser", Unit: "t/h", Setpoint: 180, Limits: limits(140, 155, 205, 215), Position: models.Position{X: 120, Y: 300}},
	{ID: "FI-102", Name: "Catalyst Circulation", Description: "Regenerated catalyst circulation rate", Unit: "t/min", Setpoint: 22, Limits: limits(16, 18, 26, 28), Position: models.Position{X: 440, Y: 300}},
	{ID: "FI-201", Name: "Main Air Flow", Description: "Main air blower discharge to regenerator", Unit: "kNm³/h", Setpoint: 150, Limits: limits(120, 130, 170, 180), Position: models.Position{X: 640, Y: 320}},
	{ID: "FI-301", Name: "Stripping Steam Flow", Description: "Stripper steam", Unit: "t/h", Setpoint: 4.5, Limits: limits(3.0, 3.5, 5.5, 6.0), Position: models.Position{X: 260, Y: 260}},
	{ID: "LI-101", Name: "Stripper Level", Description: "Spent catalyst stripper bed level", Unit: "%", Setpoint: 55, Limits: limits(30, 40, 70, 80), Position: models.Position{X: 360, Y: 250}},
	{ID: "LI-301", Name: "Fractionator Bottoms Level", Description: "Main fractionator bottoms level", Unit: "%", Setpoint: 50, Limits: limits(20, 30, 70, 80), Position: models.Position{X: 820, Y: 300}},
	{ID: "AI-201", Name: "Flue Gas Oxygen", Description: "Regenerator flue gas excess O2", Unit: "%", Setpoint: 2.0, Limits: limits(0.5, 1.0, 3.5, 4.5), Position: models.Position{X: 660, Y: 30}},
	{ID: "DPI-101", Name: "Regenerated Slide Valve dP", Description: "Differential pressure across the regenerated catalyst slide valve", Unit: "kg/cm²", Setpoint: 0.45, Limits: limits(0.2, 0.3, 0.7, 0.8), Position: models.Position{X: 480, Y: 240}},
}
