package service

import (
	"context"
	"testing"
	"time"

	"FCCMonitorAPI/internal/logger"

	"github.com/stretchr/testify/assert"
)

func TestSimulator_StepFeedsEveryTag(t *testing.T) {
	tags, _, hub := newTagFixture(t)
	sim := NewSimulator(tags, time.Second, 42, logger.Discard())

	sim.Step(context.Background())

	for _, tag := range tags.List() {
		assert.Len(t, tag.History, 1, tag.ID)
	}
	assert.Equal(t, len(tags.List()), hub.count("TAG_UPDATE"))
}

func TestSimulator_StartShutdown(t *testing.T) {
	tags, _, _ := newTagFixture(t)
	sim := NewSimulator(tags, 5*time.Millisecond, 1, logger.Discard())

	sim.Start()
	time.Sleep(30 * time.Millisecond)
	sim.Shutdown()

	tag, err := tags.Get("TI-101")
	assert.NoError(t, err)
	assert.NotEmpty(t, tag.History)
}
