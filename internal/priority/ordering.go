package priority

import (
	"sort"

	"FCCMonitorAPI/internal/models"
)

// SortAlarms returns a copy ordered by priority asc, risk score desc, then oldest first.
func SortAlarms(alarms []models.Alarm) []models.Alarm {
	sorted := make([]models.Alarm, len(alarms))
	copy(sorted, alarms)

	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Priority != b.Priority {
			return a.Priority < b.Priority
		}
		return byRiskThenAge(a, b)
	})
	return sorted
}

// GroupAlarmsByPriority partitions alarms into the four priority buckets,
// each ordered by risk score desc then oldest first.
func GroupAlarmsByPriority(alarms []models.Alarm) models.AlarmGroups {
	groups := models.AlarmGroups{
		Critical: []models.Alarm{},
		High:     []models.Alarm{},
		Medium:   []models.Alarm{},
		Low:      []models.Alarm{},
	}
	for _, a := range alarms {
		bucket := groups.Bucket(a.Priority)
		*bucket = append(*bucket, a)
	}

	for _, p := range models.Priorities {
		bucket := *groups.Bucket(p)
		sort.SliceStable(bucket, func(i, j int) bool {
			return byRiskThenAge(bucket[i], bucket[j])
		})
	}
	return groups
}

func byRiskThenAge(a, b models.Alarm) bool {
	if a.RiskScore != b.RiskScore {
		return a.RiskScore > b.RiskScore
	}
	return a.Timestamp.Before(b.Timestamp)
}
