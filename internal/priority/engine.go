// Package priority classifies alarms by urgency and keeps their risk score current.
//
// Every function here is pure: callers supply the clock and own persistence.
// Numeric input is not validated; callers must keep tag limits ordered.
package priority

import (
	"math"
	"time"

	"FCCMonitorAPI/internal/models"
)

const (
	weightDeviation   = 0.35
	weightChangeRate  = 0.20
	weightCriticality = 0.35
	weightUnacked     = 0.10

	alarmKindBonus = 0.1

	// changeRateWindow is the number of trailing samples used for the rate of change.
	changeRateWindow = 5
	minRateSamples   = 3
	rateAmplifier    = 5.0

	unackedSaturation = 30.0 // minutes

	riskPerLevel       = 18
	riskPerMinute      = 1.5
	maxRiskTimeBonus   = 25.0
	riskAlarmKindBonus = 10
	riskEscalatedBonus = 8
	maxRiskScore       = 100
)

// Factors are the normalised inputs of the priority score, each in [0,1]
// except TimeUnacknowledged which is in minutes.
type Factors struct {
	Deviation          float64 `json:"deviation"`
	ChangeRate         float64 `json:"change_rate"`
	Criticality        float64 `json:"criticality"`
	TimeUnacknowledged float64 `json:"time_unacknowledged"`
}

// DeviationSeverity is 0 inside the normal band, 0.4..0.8 across the warning band
// and 0.8..1.0 past the alarm threshold.
func DeviationSeverity(tag *models.Tag) float64 {
	v := tag.CurrentValue
	l := tag.Limits

	switch {
	case v >= l.HighAlarm:
		return math.Min(1, 0.8+((v-l.HighAlarm)/gap(l.HighAlarm-l.HighWarning))*0.2)
	case v <= l.LowAlarm:
		return math.Min(1, 0.8+((l.LowAlarm-v)/gap(l.LowWarning-l.LowAlarm))*0.2)
	case v >= l.HighWarning:
		return 0.4 + ((v-l.HighWarning)/gap(l.HighAlarm-l.HighWarning))*0.4
	case v <= l.LowWarning:
		return 0.4 + ((l.LowWarning-v)/gap(l.LowWarning-l.LowAlarm))*0.4
	default:
		return 0
	}
}

// ChangeRate is the per-sample change over the trailing window, relative to the alarm band.
func ChangeRate(tag *models.Tag) float64 {
	n := len(tag.History)
	if n < minRateSamples {
		return 0
	}

	recent := tag.History
	if n > changeRateWindow {
		recent = tag.History[n-changeRateWindow:]
	}

	first := recent[0].Value
	last := recent[len(recent)-1].Value
	rate := math.Abs(last-first) / float64(len(recent)-1)

	normalized := rate / gap(tag.Limits.HighAlarm-tag.Limits.LowAlarm)
	return math.Min(1, normalized*rateAmplifier)
}

// CalculateFactors collects the priority inputs for a tag at classification time.
func CalculateFactors(tag *models.Tag) Factors {
	return Factors{
		Deviation:   DeviationSeverity(tag),
		ChangeRate:  ChangeRate(tag),
		Criticality: Criticality(tag.ID),
	}
}

// Score combines the factors into a weighted urgency score.
func Score(f Factors, isAlarmKind bool) float64 {
	score := weightDeviation*f.Deviation +
		weightChangeRate*f.ChangeRate +
		weightCriticality*f.Criticality +
		weightUnacked*math.Min(f.TimeUnacknowledged/unackedSaturation, 1)
	if isAlarmKind {
		score += alarmKindBonus
	}
	return score
}

// PriorityForScore maps an urgency score onto the four priority levels.
func PriorityForScore(score float64) models.Priority {
	switch {
	case score > 0.75:
		return models.PriorityCritical
	case score > 0.55:
		return models.PriorityHigh
	case score > 0.35:
		return models.PriorityMedium
	default:
		return models.PriorityLow
	}
}

// CalculatePriority classifies a freshly raised alarm on tag.
func CalculatePriority(tag *models.Tag, isAlarmKind bool) models.Priority {
	return PriorityForScore(Score(CalculateFactors(tag), isAlarmKind))
}

// CalculateRiskScore grows with time until acknowledged; it must be re-evaluated periodically.
func CalculateRiskScore(alarm *models.Alarm, now time.Time) int {
	score := float64((5 - int(alarm.Priority)) * riskPerLevel)

	minutes := now.Sub(alarm.Timestamp).Minutes()
	if minutes < 0 {
		minutes = 0
	}
	score += math.Min(minutes*riskPerMinute, maxRiskTimeBonus)

	if alarm.Kind == models.KindAlarm {
		score += riskAlarmKindBonus
	}
	if alarm.Escalated {
		score += riskEscalatedBonus
	}

	return int(math.Round(math.Min(score, maxRiskScore)))
}

// CalculateResponseDeadline is the alarm time plus the response limit for its priority.
func CalculateResponseDeadline(alarm *models.Alarm) time.Time {
	return alarm.Timestamp.Add(ResponseTimeLimit(alarm.Priority))
}

// CheckEscalation reports whether an unacknowledged, not yet escalated alarm is past its deadline.
func CheckEscalation(alarm *models.Alarm, now time.Time) bool {
	if alarm.Acknowledged || alarm.Escalated {
		return false
	}
	deadline := alarm.ResponseDeadline
	if deadline.IsZero() {
		deadline = CalculateResponseDeadline(alarm)
	}
	return now.After(deadline)
}

// EscalatedPriority raises urgency by one level, floored at PriorityCritical.
func EscalatedPriority(p models.Priority) models.Priority {
	if p-1 < models.PriorityCritical {
		return models.PriorityCritical
	}
	return p - 1
}

func gap(d float64) float64 {
	if d == 0 {
		return 1
	}
	return d
}
