package service

import (
	"context"
	"testing"
	"time"

	"FCCMonitorAPI/internal/logger"
	"FCCMonitorAPI/internal/models"
	"FCCMonitorAPI/internal/plant"
	"FCCMonitorAPI/internal/websocket"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type raisedTags struct {
	tags []models.Tag
}

func (r *raisedTags) Raise(_ context.Context, tag models.Tag) (*models.Alarm, error) {
	r.tags = append(r.tags, tag)
	return &models.Alarm{TagID: tag.ID}, nil
}

func newTagFixture(t *testing.T) (*TagService, *raisedTags, *recordingHub) {
	t.Helper()
	raised := &raisedTags{}
	hub := &recordingHub{}
	svc := NewTagService(plant.DefaultCatalog(), raised, hub, logger.Discard())
	svc.now = func() time.Time { return t0 }
	return svc, raised, hub
}

func TestTagService_UnknownTag(t *testing.T) {
	svc, _, _ := newTagFixture(t)

	_, err := svc.ApplyReading(context.Background(), models.TagReading{TagID: "XX-999", Value: 1})
	assert.ErrorIs(t, err, ErrUnknownTag)

	_, err = svc.Get("XX-999")
	assert.ErrorIs(t, err, ErrUnknownTag)
}

func TestTagService_RaisesOnStatusTransitions(t *testing.T) {
	svc, raised, hub := newTagFixture(t)
	ctx := context.Background()

	steps := []struct {
		value  float64
		status models.Status
	}{
		{521, models.StatusNormal},
		{545, models.StatusWarning},
		{546, models.StatusWarning},
		{551, models.StatusAlarm},
		{530, models.StatusNormal},
		{489, models.StatusAlarm},
	}
	for _, step := range steps {
		tag, err := svc.ApplyReading(ctx, models.TagReading{TagID: "TI-101", Value: step.value})
		require.NoError(t, err)
		assert.Equal(t, step.status, tag.Status, "value %v", step.value)
	}

	require.Len(t, raised.tags, 3)
	assert.Equal(t, 545.0, raised.tags[0].CurrentValue)
	assert.Equal(t, 551.0, raised.tags[1].CurrentValue)
	assert.Equal(t, 489.0, raised.tags[2].CurrentValue)
	assert.Equal(t, len(steps), hub.count(websocket.TypeTagUpdate))
}

func TestTagService_PredictsByLinearExtrapolation(t *testing.T) {
	svc, _, _ := newTagFixture(t)
	ctx := context.Background()

	tag, err := svc.ApplyReading(ctx, models.TagReading{TagID: "FI-101", Value: 180})
	require.NoError(t, err)
	assert.Equal(t, 180.0, tag.PredictedValue)

	tag, err = svc.ApplyReading(ctx, models.TagReading{TagID: "FI-101", Value: 184})
	require.NoError(t, err)
	assert.Equal(t, 188.0, tag.PredictedValue)
	require.Len(t, tag.History, 2)
	require.NotNil(t, tag.History[1].Predicted)
	assert.Equal(t, 188.0, *tag.History[1].Predicted)
	assert.Equal(t, t0, tag.History[1].Timestamp)
}

func TestTagService_HistoryBounded(t *testing.T) {
	svc, _, _ := newTagFixture(t)
	for i := 0; i < models.HistoryCapacity+10; i++ {
		_, err := svc.ApplyReading(context.Background(), models.TagReading{TagID: "LI-101", Value: 55})
		require.NoError(t, err)
	}
	tag, err := svc.Get("LI-101")
	require.NoError(t, err)
	assert.Len(t, tag.History, models.HistoryCapacity)
}

func TestTagService_ProcessMessage(t *testing.T) {
	svc, raised, _ := newTagFixture(t)
	ctx := context.Background()

	require.NoError(t, svc.ProcessMessage(ctx, "fcc/tags/PI-201/value", []byte(`{"value": 2.2}`)))
	tag, _ := svc.Get("PI-201")
	assert.Equal(t, 2.2, tag.CurrentValue)
	assert.Equal(t, models.StatusWarning, tag.Status)
	require.Len(t, raised.tags, 1)

	snapshot := `{"timestamp":"2026-03-01T09:00:00Z","readings":[
		{"tag_id":"FI-201","value":150},
		{"tag_id":"AI-201","value":4.6,"timestamp":"2026-03-01T09:00:01Z"}
	]}`
	require.NoError(t, svc.ProcessMessage(ctx, "fcc/tags/snapshot", []byte(snapshot)))
	ai, _ := svc.Get("AI-201")
	assert.Equal(t, models.StatusAlarm, ai.Status)
	assert.Equal(t, time.Date(2026, 3, 1, 9, 0, 1, 0, time.UTC), ai.History[0].Timestamp)
	fi, _ := svc.Get("FI-201")
	assert.Equal(t, time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC), fi.History[0].Timestamp)

	assert.Error(t, svc.ProcessMessage(ctx, "fcc/tags/snapshot", []byte(`not json`)))
	assert.Error(t, svc.ProcessMessage(ctx, "fcc/other", []byte(`{"value": 1}`)))
	assert.Error(t, svc.ProcessMessage(ctx, "fcc/tags/snapshot", []byte(`{"readings":[{"tag_id":"NOPE","value":1}]}`)))
}

func TestTagService_ListKeepsCatalogOrder(t *testing.T) {
	svc, _, _ := newTagFixture(t)
	tags := svc.List()
	catalog := plant.DefaultCatalog()
	require.Len(t, tags, len(catalog.Tags))
	for i, def := range catalog.Tags {
		assert.Equal(t, def.ID, tags[i].ID)
	}
}
