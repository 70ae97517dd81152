package mqtt

import (
	"context"
	"fmt"
	"strings"

	"FCCMonitorAPI/internal/logger"
	"FCCMonitorAPI/internal/models"
)

const relayBuffer = 128

// Publisher is the subset of Client used to publish events.
type Publisher interface {
	PublishJSON(topic string, data interface{}) error
}

// AlarmEvent is published to {EventTopic}/{alarm id}/{event} so that the DCS
// and other consoles see alarm lifecycle changes.
type AlarmEvent struct {
	Event string        `json:"event"`
	Alarm *models.Alarm `json:"alarm"`
}

type relayed struct {
	topic string
	event AlarmEvent
}

// EventRelay forwards alarm broadcasts to MQTT. Tag and graph updates are
// not relayed. Publishing happens on a background goroutine so callers never
// wait on the broker.
type EventRelay struct {
	pub    Publisher
	prefix string
	log    *logger.Logger
	queue  chan relayed
}

func NewEventRelay(pub Publisher, prefix string, log *logger.Logger) *EventRelay {
	return &EventRelay{
		pub:    pub,
		prefix: strings.TrimSuffix(prefix, "/"),
		log:    log,
		queue:  make(chan relayed, relayBuffer),
	}
}

// Broadcast implements the service broadcaster contract.
func (r *EventRelay) Broadcast(msgType string, payload interface{}) {
	alarm, ok := payload.(*models.Alarm)
	if !ok || alarm == nil {
		return
	}

	event := eventName(msgType)
	if event == "" {
		return
	}

	msg := relayed{
		topic: fmt.Sprintf("%s/%s/%s", r.prefix, alarm.ID, event),
		event: AlarmEvent{Event: event, Alarm: alarm},
	}

	select {
	case r.queue <- msg:
	default:
		r.log.Warn("MQTT event relay full, dropping %s for %s", event, alarm.ID)
	}
}

// Run publishes queued events until ctx is cancelled.
func (r *EventRelay) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-r.queue:
			if err := r.pub.PublishJSON(msg.topic, msg.event); err != nil {
				r.log.Error("Failed to relay alarm event to %s: %v", msg.topic, err)
			}
		}
	}
}

func eventName(msgType string) string {
	switch msgType {
	case "ALARM_RAISED":
		return "raised"
	case "ALARM_ACKNOWLEDGED":
		return "acknowledged"
	case "ALARM_ESCALATED":
		return "escalated"
	default:
		return ""
	}
}
