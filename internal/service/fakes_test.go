package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"FCCMonitorAPI/internal/models"
	"FCCMonitorAPI/internal/repository"
)

type sentMessage struct {
	Type    string
	Payload interface{}
}

type recordingHub struct {
	mu   sync.Mutex
	sent []sentMessage
}

func (h *recordingHub) Broadcast(msgType string, payload interface{}) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sent = append(h.sent, sentMessage{Type: msgType, Payload: payload})
}

func (h *recordingHub) types() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, 0, len(h.sent))
	for _, m := range h.sent {
		out = append(out, m.Type)
	}
	return out
}

func (h *recordingHub) count(msgType string) int {
	n := 0
	for _, t := range h.types() {
		if t == msgType {
			n++
		}
	}
	return n
}

type memoryAlarmRepo struct {
	mu      sync.Mutex
	alarms  map[string]models.Alarm
	updates int
	fail    error
}

func newMemoryAlarmRepo() *memoryAlarmRepo {
	return &memoryAlarmRepo{alarms: make(map[string]models.Alarm)}
}

func (r *memoryAlarmRepo) Create(_ context.Context, alarm *models.Alarm) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return r.fail
	}
	r.alarms[alarm.ID] = *alarm
	return nil
}

func (r *memoryAlarmRepo) GetByID(_ context.Context, id string) (*models.Alarm, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.alarms[id]
	if !ok {
		return nil, repository.ErrAlarmNotFound
	}
	return &a, nil
}

func (r *memoryAlarmRepo) all() []models.Alarm {
	out := make([]models.Alarm, 0, len(r.alarms))
	for _, a := range r.alarms {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out
}

func (r *memoryAlarmRepo) List(_ context.Context, limit int) ([]models.Alarm, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.all()
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memoryAlarmRepo) ListUnacknowledged(_ context.Context) ([]models.Alarm, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.Alarm{}
	for _, a := range r.all() {
		if !a.Acknowledged {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *memoryAlarmRepo) Acknowledge(_ context.Context, id, user string, at time.Time) (*models.Alarm, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.alarms[id]
	if !ok {
		return nil, repository.ErrAlarmNotFound
	}
	if a.Acknowledged {
		return nil, repository.ErrAlreadyAcknowledged
	}
	a.Acknowledged = true
	a.AcknowledgedBy = &user
	a.AcknowledgedAt = &at
	r.alarms[id] = a
	return &a, nil
}

func (r *memoryAlarmRepo) UpdateRiskState(_ context.Context, alarm *models.Alarm) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.alarms[alarm.ID]
	if !ok || a.Acknowledged {
		return false, nil
	}
	a.Priority = alarm.Priority
	a.RiskScore = alarm.RiskScore
	a.ResponseDeadline = alarm.ResponseDeadline
	a.Escalated = alarm.Escalated
	r.alarms[alarm.ID] = a
	r.updates++
	return true, nil
}

func (r *memoryAlarmRepo) DeleteOld(_ context.Context, olderThan time.Duration) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cutoff := time.Now().Add(-olderThan)
	var n int64
	for id, a := range r.alarms {
		if a.Acknowledged && a.Timestamp.Before(cutoff) {
			delete(r.alarms, id)
			n++
		}
	}
	return n, nil
}

type memoryHandoverRepo struct {
	logs []models.HandoverLog
}

func (r *memoryHandoverRepo) Create(_ context.Context, log *models.HandoverLog) error {
	r.logs = append([]models.HandoverLog{*log}, r.logs...)
	return nil
}

func (r *memoryHandoverRepo) ListRecent(_ context.Context, limit int) ([]models.HandoverLog, error) {
	if len(r.logs) > limit {
		return r.logs[:limit], nil
	}
	return r.logs, nil
}

type memoryKV struct {
	data map[string][]byte
}

func newMemoryKV() *memoryKV {
	return &memoryKV{data: make(map[string][]byte)}
}

func (m *memoryKV) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memoryKV) Put(_ context.Context, key string, value []byte) error {
	m.data[key] = value
	return nil
}

func (m *memoryKV) Delete(_ context.Context, key string) error {
	delete(m.data, key)
	return nil
}

type fixedClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}
