package priority

import (
	"time"

	"FCCMonitorAPI/internal/models"
)

const defaultCriticality = 0.5

// criticality ranks how much damage an excursion on the tag's equipment can do.
var criticality = map[string]float64{
	"TI-101":  0.95,
	"TI-102":  0.85,
	"TI-201":  0.90,
	"TI-202":  0.80,
	"TI-301":  0.60,
	"PI-101":  0.90,
	"PI-201":  0.85,
	"PI-301":  0.55,
	"FI-101":  0.75,
	"FI-102":  0.80,
	"FI-201":  0.70,
	"FI-301":  0.50,
	"LI-101":  0.70,
	"LI-301":  0.45,
	"AI-201":  0.65,
	"DPI-101": 0.85,
}

var categories = map[string]models.Category{
	"TI-101":  models.CategorySafety,
	"TI-201":  models.CategorySafety,
	"PI-101":  models.CategorySafety,
	"PI-201":  models.CategorySafety,
	"DPI-101": models.CategorySafety,
	"AI-201":  models.CategorySafety,
	"TI-102":  models.CategoryEquipment,
	"TI-202":  models.CategoryEquipment,
	"FI-102":  models.CategoryEquipment,
	"LI-101":  models.CategoryEquipment,
	"FI-201":  models.CategoryEquipment,
}

var responseTimeLimits = map[models.Priority]time.Duration{
	models.PriorityCritical: 1 * time.Minute,
	models.PriorityHigh:     5 * time.Minute,
	models.PriorityMedium:   15 * time.Minute,
	models.PriorityLow:      60 * time.Minute,
}

// Criticality returns the equipment criticality of a tag in [0,1], 0.5 when unlisted.
func Criticality(tagID string) float64 {
	if c, ok := criticality[tagID]; ok {
		return c
	}
	return defaultCriticality
}

// CategoryFor returns the alarm category for a tag, process when unlisted.
func CategoryFor(tagID string) models.Category {
	if c, ok := categories[tagID]; ok {
		return c
	}
	return models.CategoryProcess
}

// ResponseTimeLimit is the time an operator has to acknowledge an alarm of priority p.
// Out-of-range priorities get the least urgent limit.
func ResponseTimeLimit(p models.Priority) time.Duration {
	if d, ok := responseTimeLimits[p]; ok {
		return d
	}
	return responseTimeLimits[models.PriorityLow]
}
