package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"FCCMonitorAPI/internal/logger"
	"FCCMonitorAPI/internal/metrics"
	"FCCMonitorAPI/internal/models"
	"FCCMonitorAPI/internal/plant"
	"FCCMonitorAPI/internal/websocket"
)

// AlarmRaiser records an alarm for a tag that has just left the normal band
// or moved between warning and alarm.
type AlarmRaiser interface {
	Raise(ctx context.Context, tag models.Tag) (*models.Alarm, error)
}

// TagService holds the live state of every catalogued tag.
type ITagService interface {
	List() []models.Tag
	Get(id string) (models.Tag, error)
}

type TagService struct {
	mu    sync.RWMutex
	tags  map[string]*models.Tag
	order []string

	alarms AlarmRaiser
	hub    Broadcaster
	log    *logger.Logger
	now    func() time.Time
}

func NewTagService(catalog *plant.Catalog, alarms AlarmRaiser, hub Broadcaster, log *logger.Logger) *TagService {
	s := &TagService{
		tags:   make(map[string]*models.Tag, len(catalog.Tags)),
		order:  make([]string, 0, len(catalog.Tags)),
		alarms: alarms,
		hub:    orNop(hub),
		log:    log,
		now:    utcNow,
	}

	for _, def := range catalog.Tags {
		tag := def.NewTag()
		s.tags[def.ID] = &tag
		s.order = append(s.order, def.ID)
	}

	log.Info("Loaded %d tags for unit %s", len(s.order), catalog.Unit)
	return s
}

// ApplyReading records a new sample for a tag. When the status changes to
// warning or alarm an alarm is raised for the updated tag.
func (s *TagService) ApplyReading(ctx context.Context, reading models.TagReading) (models.Tag, error) {
	ts := reading.Timestamp
	if ts.IsZero() {
		ts = s.now()
	}

	s.mu.Lock()
	tag, ok := s.tags[reading.TagID]
	if !ok {
		s.mu.Unlock()
		return models.Tag{}, fmt.Errorf("%w: %s", ErrUnknownTag, reading.TagID)
	}

	previous := tag.Status
	predicted := reading.Value
	if n := len(tag.History); n > 0 {
		predicted = reading.Value + (reading.Value - tag.History[n-1].Value)
	}

	tag.CurrentValue = reading.Value
	tag.PredictedValue = predicted
	tag.PushSample(models.Sample{Timestamp: ts, Value: reading.Value, Predicted: &predicted})
	status := tag.RefreshStatus()
	snapshot := tag.Clone()
	s.mu.Unlock()

	metrics.TagReading(status)
	s.hub.Broadcast(websocket.TypeTagUpdate, snapshot)

	if status == previous || status == models.StatusNormal || s.alarms == nil {
		return snapshot, nil
	}

	s.log.Info("Tag %s changed %s -> %s at %.3f %s", snapshot.ID, previous, status, snapshot.CurrentValue, snapshot.Unit)
	if _, err := s.alarms.Raise(ctx, snapshot); err != nil {
		return snapshot, fmt.Errorf("failed to raise alarm for %s: %w", snapshot.ID, err)
	}

	return snapshot, nil
}

// ProcessMessage applies an MQTT payload. Snapshot payloads carry a readings
// array; single readings may omit tag_id when the topic is fcc/tags/{id}/value.
func (s *TagService) ProcessMessage(ctx context.Context, topic string, payload []byte) error {
	s.log.Debug("Processing tag message on %s: %d bytes", topic, len(payload))

	var snapshot models.TagSnapshot
	if err := json.Unmarshal(payload, &snapshot); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}

	if len(snapshot.Readings) > 0 {
		var failed []string
		for _, r := range snapshot.Readings {
			if r.Timestamp.IsZero() {
				r.Timestamp = snapshot.Timestamp
			}
			if _, err := s.ApplyReading(ctx, r); err != nil {
				s.log.Warn("Skipping reading in snapshot: %v", err)
				failed = append(failed, r.TagID)
			}
		}
		if len(failed) > 0 {
			return fmt.Errorf("failed to apply %d of %d readings: %s", len(failed), len(snapshot.Readings), strings.Join(failed, ", "))
		}
		return nil
	}

	var reading models.TagReading
	if err := json.Unmarshal(payload, &reading); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if reading.TagID == "" {
		reading.TagID = tagIDFromTopic(topic)
	}
	if reading.TagID == "" {
		return fmt.Errorf("missing tag_id")
	}

	_, err := s.ApplyReading(ctx, reading)
	return err
}

// tagIDFromTopic extracts {id} from fcc/tags/{id}/value.
func tagIDFromTopic(topic string) string {
	parts := strings.Split(topic, "/")
	if len(parts) == 4 && parts[1] == "tags" && parts[3] == "value" {
		return parts[2]
	}
	return ""
}

// List returns every tag in catalog order.
func (s *TagService) List() []models.Tag {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tags := make([]models.Tag, 0, len(s.order))
	for _, id := range s.order {
		tags = append(tags, s.tags[id].Clone())
	}
	return tags
}

func (s *TagService) Get(id string) (models.Tag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tag, ok := s.tags[id]
	if !ok {
		return models.Tag{}, fmt.Errorf("%w: %s", ErrUnknownTag, id)
	}
	return tag.Clone(), nil
}

// Snapshot returns the current tags keyed by id.
func (s *TagService) Snapshot() map[string]models.Tag {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]models.Tag, len(s.tags))
	for id, tag := range s.tags {
		out[id] = tag.Clone()
	}
	return out
}
