// internal/models/models.go

package models

import (
	"time"
)

// HistoryCapacity is the number of samples retained per tag.
const HistoryCapacity = 30

type Status string

const (
	StatusNormal  Status = "normal"
	StatusWarning Status = "warning"
	StatusAlarm   Status = "alarm"
)

// Limits must satisfy LowAlarm < LowWarning < HighWarning < HighAlarm.
type Limits struct {
	HighAlarm   float64 `json:"highAlarm" yaml:"high_alarm"`
	HighWarning float64 `json:"highWarning" yaml:"high_warning"`
	LowWarning  float64 `json:"lowWarning" yaml:"low_warning"`
	LowAlarm    float64 `json:"lowAlarm" yaml:"low_alarm"`
}

// Ordered reports whether the limits are strictly increasing from LowAlarm to HighAlarm.
func (l Limits) Ordered() bool {
	return l.LowAlarm < l.LowWarning && l.LowWarning < l.HighWarning && l.HighWarning < l.HighAlarm
}

// StatusFor derives a tag status from its value and limits.
func StatusFor(value float64, limits Limits) Status {
	switch {
	case value >= limits.HighAlarm || value <= limits.LowAlarm:
		return StatusAlarm
	case value >= limits.HighWarning || value <= limits.LowWarning:
		return StatusWarning
	default:
		return StatusNormal
	}
}

type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

type Sample struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
	Predicted *float64  `json:"predicted,omitempty"`
}

// Tag is a single instrumented process variable.
type Tag struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	Unit           string   `json:"unit"`
	CurrentValue   float64  `json:"currentValue"`
	Setpoint       float64  `json:"setpoint"`
	PredictedValue float64  `json:"predictedValue"`
	Limits         Limits   `json:"limits"`
	Status         Status   `json:"status"`
	Position       Position `json:"position"`
	History        []Sample `json:"history"`
}

// PushSample appends a sample and evicts the oldest once HistoryCapacity is reached.
func (t *Tag) PushSample(s Sample) {
	if len(t.History) >= HistoryCapacity {
		t.History = append(t.History[:0], t.History[len(t.History)-HistoryCapacity+1:]...)
	}
	t.History = append(t.History, s)
}

// RefreshStatus recomputes Status from CurrentValue and Limits.
func (t *Tag) RefreshStatus() Status {
	t.Status = StatusFor(t.CurrentValue, t.Limits)
	return t.Status
}

// Clone returns a deep copy safe to hand outside a lock.
func (t *Tag) Clone() Tag {
	c := *t
	c.History = make([]Sample, len(t.History))
	copy(c.History, t.History)
	return c
}

// TagReading is the sampler payload for a single tag.
type TagReading struct {
	TagID     string    `json:"tag_id"`
	Value     float64   `json:"value"`
	Timestamp time.Time `json:"timestamp"`
}

// TagSnapshot carries several readings in one message.
type TagSnapshot struct {
	Timestamp time.Time    `json:"timestamp"`
	Readings  []TagReading `json:"readings"`
}

type HandoverLog struct {
	ID        string    `json:"id" db:"id"`
	Shift     string    `json:"shift" db:"shift"`
	Author    string    `json:"author" db:"author"`
	Notes     string    `json:"notes" db:"notes"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type CreateHandoverRequest struct {
	Shift string `json:"shift"`
	Notes string `json:"notes"`
}

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Services  struct {
		Database bool `json:"database"`
		MQTT     bool `json:"mqtt"`
	} `json:"services"`
}
