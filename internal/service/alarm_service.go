package service

import (
	"context"
	"fmt"
	"time"

	"FCCMonitorAPI/internal/causality"
	"FCCMonitorAPI/internal/logger"
	"FCCMonitorAPI/internal/metrics"
	"FCCMonitorAPI/internal/models"
	"FCCMonitorAPI/internal/priority"
	"FCCMonitorAPI/internal/repository"
	"FCCMonitorAPI/internal/websocket"

	"github.com/google/uuid"
)

// ChainResolver resolves the upstream causal chain of a tag.
type ChainResolver interface {
	FindCausalChain(target string) []causality.Link
}

type AlarmOptions struct {
	ListLimit       int
	Retention       time.Duration
	CleanupInterval time.Duration
}

// AlarmService raises, acknowledges and periodically re-prioritizes alarms.
type IAlarmService interface {
	List(ctx context.Context, limit int) ([]models.Alarm, error)
	Grouped(ctx context.Context) (models.AlarmGroups, error)
	Get(ctx context.Context, id string) (*models.Alarm, error)
	Acknowledge(ctx context.Context, id, user string) (*models.Alarm, error)
}

type AlarmService struct {
	repo   repository.IAlarmRepository
	chains ChainResolver
	hub    Broadcaster
	log    *logger.Logger
	opts   AlarmOptions
	now    func() time.Time
}

func NewAlarmService(repo repository.IAlarmRepository, chains ChainResolver, hub Broadcaster, log *logger.Logger, opts AlarmOptions) *AlarmService {
	if opts.ListLimit <= 0 {
		opts.ListLimit = 200
	}
	return &AlarmService{
		repo:   repo,
		chains: chains,
		hub:    orNop(hub),
		log:    log,
		opts:   opts,
		now:    utcNow,
	}
}

// Raise classifies and stores a new alarm for tag, which must be out of its normal band.
func (s *AlarmService) Raise(ctx context.Context, tag models.Tag) (*models.Alarm, error) {
	now := s.now()
	kind := models.KindForStatus(tag.Status)

	alarm := &models.Alarm{
		ID:        uuid.NewString(),
		TagID:     tag.ID,
		TagName:   tag.Name,
		Message:   alarmMessage(&tag, kind),
		Kind:      kind,
		Timestamp: now,
		Priority:  priority.CalculatePriority(&tag, kind == models.KindAlarm),
		Category:  priority.CategoryFor(tag.ID),
	}
	alarm.ResponseDeadline = priority.CalculateResponseDeadline(alarm)
	alarm.RiskScore = priority.CalculateRiskScore(alarm, now)
	if s.chains != nil {
		alarm.UpstreamCauses = causality.UpstreamTags(s.chains.FindCausalChain(tag.ID))
	}

	if err := s.repo.Create(ctx, alarm); err != nil {
		return nil, fmt.Errorf("failed to persist alarm: %w", err)
	}

	metrics.AlarmRaised(alarm.Priority, alarm.Kind)
	s.hub.Broadcast(websocket.TypeAlarmRaised, alarm)
	s.log.Info("Raised P%d %s alarm %s on %s (risk %d)", alarm.Priority, alarm.Kind, alarm.ID, alarm.TagID, alarm.RiskScore)

	return alarm, nil
}

func alarmMessage(tag *models.Tag, kind models.AlarmKind) string {
	side := "low"
	if tag.CurrentValue >= tag.Limits.HighWarning {
		side = "high"
	}
	return fmt.Sprintf("%s %s %s: %.2f %s", tag.Name, side, kind, tag.CurrentValue, tag.Unit)
}

// Acknowledge marks an alarm acknowledged by user. Acknowledgement is
// permanent; acknowledging again returns repository.ErrAlreadyAcknowledged.
func (s *AlarmService) Acknowledge(ctx context.Context, id, user string) (*models.Alarm, error) {
	alarm, err := s.repo.Acknowledge(ctx, id, user, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to acknowledge alarm %s: %w", id, err)
	}

	metrics.AlarmAcknowledged()
	s.hub.Broadcast(websocket.TypeAlarmAcknowledged, alarm)
	s.log.Info("Alarm %s acknowledged by %s", id, user)

	return alarm, nil
}

// Recompute escalates overdue alarms and refreshes every active risk score.
// It returns the number of alarms escalated in this pass.
func (s *AlarmService) Recompute(ctx context.Context) (int, error) {
	start := time.Now()
	defer func() { metrics.ObserveRecompute(time.Since(start).Seconds()) }()

	active, err := s.repo.ListUnacknowledged(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load active alarms: %w", err)
	}

	now := s.now()
	escalated := 0
	counts := make(map[models.Priority]int, len(models.Priorities))

	for i := range active {
		alarm := &active[i]
		didEscalate := false

		if priority.CheckEscalation(alarm, now) {
			alarm.Priority = priority.EscalatedPriority(alarm.Priority)
			alarm.ResponseDeadline = priority.CalculateResponseDeadline(alarm)
			alarm.Escalated = true
			didEscalate = true
		}

		risk := priority.CalculateRiskScore(alarm, now)
		if !didEscalate && risk == alarm.RiskScore {
			counts[alarm.Priority]++
			continue
		}
		alarm.RiskScore = risk

		updated, err := s.repo.UpdateRiskState(ctx, alarm)
		if err != nil {
			s.log.Error("Failed to update alarm %s: %v", alarm.ID, err)
			continue
		}
		if !updated {
			// acknowledged since it was loaded
			continue
		}
		counts[alarm.Priority]++

		if didEscalate {
			escalated++
			metrics.AlarmEscalated(alarm.Priority)
			s.hub.Broadcast(websocket.TypeAlarmEscalated, alarm)
			s.log.Warn("Escalated alarm %s on %s to P%d", alarm.ID, alarm.TagID, alarm.Priority)
		}
	}

	metrics.SetActiveAlarms(counts)
	return escalated, nil
}

// Run recomputes alarms every interval and purges old acknowledged alarms
// every CleanupInterval until ctx is cancelled.
func (s *AlarmService) Run(ctx context.Context, interval time.Duration) {
	s.log.Info("Alarm recompute loop started (every %s)", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var cleanup <-chan time.Time
	if s.opts.CleanupInterval > 0 && s.opts.Retention > 0 {
		cleanupTicker := time.NewTicker(s.opts.CleanupInterval)
		defer cleanupTicker.Stop()
		cleanup = cleanupTicker.C
	}

	for {
		select {
		case <-ctx.Done():
			s.log.Info("Alarm recompute loop stopping")
			return
		case <-ticker.C:
			if _, err := s.Recompute(ctx); err != nil {
				s.log.Error("Recompute failed: %v", err)
			}
		case <-cleanup:
			s.CleanUp(ctx, s.opts.Retention)
		}
	}
}

// List returns recent alarms in display order.
func (s *AlarmService) List(ctx context.Context, limit int) ([]models.Alarm, error) {
	if limit <= 0 || limit > s.opts.ListLimit {
		limit = s.opts.ListLimit
	}

	alarms, err := s.repo.List(ctx, limit)
	if err != nil {
		return nil, err
	}
	return priority.SortAlarms(alarms), nil
}

// Grouped returns unacknowledged alarms bucketed by priority.
func (s *AlarmService) Grouped(ctx context.Context) (models.AlarmGroups, error) {
	active, err := s.repo.ListUnacknowledged(ctx)
	if err != nil {
		return models.AlarmGroups{}, err
	}
	return priority.GroupAlarmsByPriority(active), nil
}

func (s *AlarmService) Get(ctx context.Context, id string) (*models.Alarm, error) {
	return s.repo.GetByID(ctx, id)
}

// CleanUp removes acknowledged alarms older than retention. A non-positive
// retention disables deletion.
func (s *AlarmService) CleanUp(ctx context.Context, retention time.Duration) {
	if retention <= 0 {
		return
	}
	count, err := s.repo.DeleteOld(ctx, retention)
	if err != nil {
		s.log.Error("Alarm cleanup failed: %v", err)
		return
	}
	if count > 0 {
		s.log.Info("Removed %d acknowledged alarms older than %s", count, retention)
	}
}
