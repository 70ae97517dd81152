package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var limits = Limits{HighAlarm: 550, HighWarning: 540, LowWarning: 500, LowAlarm: 490}

func TestStatusFor(t *testing.T) {
	cases := map[float64]Status{
		520:   StatusNormal,
		500.5: StatusNormal,
		540:   StatusWarning,
		500:   StatusWarning,
		549.9: StatusWarning,
		550:   StatusAlarm,
		490:   StatusAlarm,
		400:   StatusAlarm,
	}
	for v, want := range cases {
		assert.Equal(t, want, StatusFor(v, limits), "value %v", v)
	}
}

func TestLimitsOrdered(t *testing.T) {
	assert.True(t, limits.Ordered())
	assert.False(t, Limits{HighAlarm: 10, HighWarning: 10, LowWarning: 0, LowAlarm: -1}.Ordered())
}

func TestTagPushSample_EvictsOldest(t *testing.T) {
	tag := &Tag{}
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < HistoryCapacity+5; i++ {
		tag.PushSample(Sample{Timestamp: start.Add(time.Duration(i) * time.Second), Value: float64(i)})
	}

	require.Len(t, tag.History, HistoryCapacity)
	assert.Equal(t, 5.0, tag.History[0].Value)
	assert.Equal(t, float64(HistoryCapacity+4), tag.History[HistoryCapacity-1].Value)
}

func TestTagClone_IsIndependent(t *testing.T) {
	tag := &Tag{ID: "TI-101"}
	tag.PushSample(Sample{Value: 1})
	c := tag.Clone()
	c.History[0].Value = 99
	assert.Equal(t, 1.0, tag.History[0].Value)
}

func TestAlarmJSON_UsesRFC3339(t *testing.T) {
	ts := time.Date(2026, 3, 1, 8, 30, 0, 0, time.UTC)
	alarm := Alarm{ID: "a1", TagID: "TI-101", Kind: KindAlarm, Timestamp: ts, Priority: PriorityHigh, ResponseDeadline: ts.Add(5 * time.Minute)}

	data, err := json.Marshal(alarm)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"timestamp":"2026-03-01T08:30:00Z"`)
	assert.Contains(t, string(data), `"response_deadline":"2026-03-01T08:35:00Z"`)

	var decoded Alarm
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, decoded.Timestamp.Equal(ts))
	assert.Equal(t, alarm.Priority, decoded.Priority)
}

func TestKindForStatus(t *testing.T) {
	assert.Equal(t, KindAlarm, KindForStatus(StatusAlarm))
	assert.Equal(t, KindWarning, KindForStatus(StatusWarning))
}

func TestAlarmGroupsBucket(t *testing.T) {
	var g AlarmGroups
	*g.Bucket(PriorityHigh) = append(*g.Bucket(PriorityHigh), Alarm{ID: "x"})
	assert.Len(t, g.High, 1)
	assert.Same(t, &g.Low, g.Bucket(Priority(9)))
}
