package models

import "time"

type AlarmKind string

const (
	KindWarning AlarmKind = "warning"
	KindAlarm   AlarmKind = "alarm"
)

// Priority ranges from 1 (most urgent) to 4.
type Priority int

const (
	PriorityCritical Priority = 1
	PriorityHigh     Priority = 2
	PriorityMedium   Priority = 3
	PriorityLow      Priority = 4
)

// Priorities lists every priority from most to least urgent.
var Priorities = []Priority{PriorityCritical, PriorityHigh, PriorityMedium, PriorityLow}

func (p Priority) Valid() bool {
	return p >= PriorityCritical && p <= PriorityLow
}

type Category string

const (
	CategorySafety    Category = "safety"
	CategoryEquipment Category = "equipment"
	CategoryProcess   Category = "process"
)

// Alarm is a recorded urgency event raised by a tag status transition.
type Alarm struct {
	ID               string     `json:"id" db:"id"`
	TagID            string     `json:"tag_id" db:"tag_id"`
	TagName          string     `json:"tag_name" db:"tag_name"`
	Message          string     `json:"message" db:"message"`
	Kind             AlarmKind  `json:"kind" db:"kind"`
	Timestamp        time.Time  `json:"timestamp" db:"created_at"`
	Acknowledged     bool       `json:"acknowledged" db:"acknowledged"`
	AcknowledgedBy   *string    `json:"acknowledged_by,omitempty" db:"acknowledged_by"`
	AcknowledgedAt   *time.Time `json:"acknowledged_at,omitempty" db:"acknowledged_at"`
	Priority         Priority   `json:"priority" db:"priority"`
	Category         Category   `json:"category" db:"category"`
	RiskScore        int        `json:"risk_score" db:"risk_score"`
	ResponseDeadline time.Time  `json:"response_deadline" db:"response_deadline"`
	Escalated        bool       `json:"escalated" db:"escalated"`
	UpstreamCauses   []string   `json:"upstream_causes,omitempty" db:"upstream_causes"`
}

// KindForStatus maps a non-normal tag status to the alarm kind it raises.
func KindForStatus(s Status) AlarmKind {
	if s == StatusAlarm {
		return KindAlarm
	}
	return KindWarning
}

// AlarmGroups holds alarms partitioned into the four priority buckets.
type AlarmGroups struct {
	Critical []Alarm `json:"1"`
	High     []Alarm `json:"2"`
	Medium   []Alarm `json:"3"`
	Low      []Alarm `json:"4"`
}

// Bucket returns a pointer to the slice holding alarms of priority p.
func (g *AlarmGroups) Bucket(p Priority) *[]Alarm {
	switch p {
	case PriorityCritical:
		return &g.Critical
	case PriorityHigh:
		return &g.High
	case PriorityMedium:
		return &g.Medium
	default:
		return &g.Low
	}
}

type AcknowledgeResponse struct {
	Status string `json:"status"`
	Alarm  *Alarm `json:"alarm"`
}
