package priority

import (
	"testing"
	"time"

	"FCCMonitorAPI/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func alarmAt(id string, p models.Priority, risk int, minute int) models.Alarm {
	t0 := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	return models.Alarm{ID: id, Priority: p, RiskScore: risk, Timestamp: t0.Add(time.Duration(minute) * time.Minute)}
}

func ids(alarms []models.Alarm) []string {
	out := make([]string, 0, len(alarms))
	for _, a := range alarms {
		out = append(out, a.ID)
	}
	return out
}

func TestSortAlarms_LexicographicOrder(t *testing.T) {
	input := []models.Alarm{
		alarmAt("low", models.PriorityLow, 90, 0),
		alarmAt("p2-old", models.PriorityHigh, 60, 1),
		alarmAt("p1-low-risk", models.PriorityCritical, 72, 5),
		alarmAt("p2-new", models.PriorityHigh, 60, 3),
		alarmAt("p1-high-risk", models.PriorityCritical, 90, 9),
		alarmAt("p2-risky", models.PriorityHigh, 70, 8),
	}

	sorted := SortAlarms(input)
	assert.Equal(t, []string{"p1-high-risk", "p1-low-risk", "p2-risky", "p2-old", "p2-new", "low"}, ids(sorted))

	for i := 1; i < len(sorted); i++ {
		a, b := sorted[i-1], sorted[i]
		require.LessOrEqual(t, a.Priority, b.Priority)
		if a.Priority == b.Priority {
			require.GreaterOrEqual(t, a.RiskScore, b.RiskScore)
			if a.RiskScore == b.RiskScore {
				require.False(t, b.Timestamp.Before(a.Timestamp))
			}
		}
	}
}

func TestSortAlarms_StableOnFullTies(t *testing.T) {
	input := []models.Alarm{
		alarmAt("a", models.PriorityMedium, 40, 2),
		alarmAt("b", models.PriorityMedium, 40, 2),
		alarmAt("c", models.PriorityMedium, 40, 2),
	}
	assert.Equal(t, []string{"a", "b", "c"}, ids(SortAlarms(input)))
}

func TestSortAlarms_DoesNotMutateInput(t *testing.T) {
	input := []models.Alarm{
		alarmAt("second", models.PriorityLow, 10, 0),
		alarmAt("first", models.PriorityCritical, 10, 0),
	}
	SortAlarms(input)
	assert.Equal(t, []string{"second", "first"}, ids(input))
}

func TestGroupAlarmsByPriority(t *testing.T) {
	input := []models.Alarm{
		alarmAt("p3-a", models.PriorityMedium, 36, 4),
		alarmAt("p1", models.PriorityCritical, 80, 0),
		alarmAt("p3-b", models.PriorityMedium, 50, 6),
		alarmAt("p3-c", models.PriorityMedium, 36, 1),
	}

	groups := GroupAlarmsByPriority(input)
	assert.Equal(t, []string{"p1"}, ids(groups.Critical))
	assert.Empty(t, groups.High)
	assert.Equal(t, []string{"p3-b", "p3-c", "p3-a"}, ids(groups.Medium))
	assert.NotNil(t, groups.Low)
	assert.Empty(t, groups.Low)
}
