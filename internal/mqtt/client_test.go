package mqtt

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"FCCMonitorAPI/internal/config"
	"FCCMonitorAPI/internal/logger"
	"FCCMonitorAPI/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchTopic(t *testing.T) {
	cases := []struct {
		pattern, topic string
		want           bool
	}{
		{"fcc/tags/+/value", "fcc/tags/TI-101/value", true},
		{"fcc/tags/+/value", "fcc/tags/TI-101/quality", false},
		{"fcc/tags/+/value", "fcc/tags/value", false},
		{"fcc/tags/snapshot", "fcc/tags/snapshot", true},
		{"fcc/#", "fcc/tags/TI-101/value", true},
		{"fcc/#/value", "fcc/tags/TI-101/value", false},
		{"fcc/tags/+", "fcc/tags/TI-101/value", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, matchTopic(tc.pattern, tc.topic), "%s vs %s", tc.pattern, tc.topic)
	}
}

func TestNewClient_RequiresLogger(t *testing.T) {
	_, err := NewClient(ClientConfig{MQTT: &config.MQTTConfig{}})
	assert.Error(t, err)
}

func TestHandleMessage_RoutesByWildcard(t *testing.T) {
	c, err := NewClient(ClientConfig{MQTT: &config.MQTTConfig{Broker: "localhost", Port: 1883}, Logger: logger.Discard()})
	require.NoError(t, err)

	var got []string
	c.handlers["fcc/tags/+/value"] = func(_ context.Context, topic string, payload []byte) error {
		got = append(got, topic+"="+string(payload))
		return nil
	}
	c.handlers["fcc/tags/snapshot"] = func(_ context.Context, topic string, _ []byte) error {
		return errors.New("bad snapshot")
	}

	c.handleMessage("fcc/tags/TI-101/value", []byte(`{"value":1}`))
	c.handleMessage("fcc/tags/snapshot", []byte(`{}`))
	c.handleMessage("other/topic", nil)

	assert.Equal(t, []string{`fcc/tags/TI-101/value={"value":1}`}, got)
}

type capturePublisher struct {
	mu     sync.Mutex
	topics []string
	events []AlarmEvent
}

func (p *capturePublisher) PublishJSON(topic string, data interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic)
	p.events = append(p.events, data.(AlarmEvent))
	return nil
}

func (p *capturePublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.topics)
}

func TestEventRelay_PublishesAlarmLifecycle(t *testing.T) {
	pub := &capturePublisher{}
	relay := NewEventRelay(pub, "fcc/alarms/", logger.Discard())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go relay.Run(ctx)

	alarm := &models.Alarm{ID: "a1", TagID: "TI-101"}
	relay.Broadcast("ALARM_RAISED", alarm)
	relay.Broadcast("TAG_UPDATE", models.Tag{ID: "TI-101"})
	relay.Broadcast("ALARM_ACKNOWLEDGED", alarm)

	require.Eventually(t, func() bool { return pub.count() == 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"fcc/alarms/a1/raised", "fcc/alarms/a1/acknowledged"}, pub.topics)
	assert.Equal(t, "raised", pub.events[0].Event)
}

func TestHealth_ReportsTopicsWhenDisconnected(t *testing.T) {
	c, err := NewClient(ClientConfig{MQTT: &config.MQTTConfig{Broker: "broker", Port: 1883}, Logger: logger.Discard()})
	require.NoError(t, err)
	noop := func(context.Context, string, []byte) error { return nil }
	c.handlers["fcc/tags/snapshot"] = noop
	c.handlers["fcc/tags/+/value"] = noop

	status, err := c.Health(context.Background())
	require.Error(t, err)
	assert.False(t, status.Connected)
	assert.Equal(t, "broker:1883", status.Broker)
	assert.Equal(t, []string{"fcc/tags/+/value", "fcc/tags/snapshot"}, status.Topics)

}
