package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"FCCMonitorAPI/internal/logger"
	"FCCMonitorAPI/internal/models"
	"FCCMonitorAPI/internal/report"
	"FCCMonitorAPI/internal/repository"

	"github.com/google/uuid"
)

const maxHandoverNotes = 4000

// ActiveAlarmSource provides the current unacknowledged alarms by priority.
type ActiveAlarmSource interface {
	Grouped(ctx context.Context) (models.AlarmGroups, error)
}

type IHandoverService interface {
	Create(ctx context.Context, author string, req models.CreateHandoverRequest) (*models.HandoverLog, error)
	List(ctx context.Context, limit int) ([]models.HandoverLog, error)
	Report(ctx context.Context, requestedBy string) ([]byte, error)
}

type HandoverService struct {
	repo   repository.IHandoverRepository
	alarms ActiveAlarmSource
	unit   string
	log    *logger.Logger
	now    func() time.Time
}

func NewHandoverService(repo repository.IHandoverRepository, alarms ActiveAlarmSource, unit string, log *logger.Logger) *HandoverService {
	return &HandoverService{
		repo:   repo,
		alarms: alarms,
		unit:   unit,
		log:    log,
		now:    utcNow,
	}
}

func (s *HandoverService) Create(ctx context.Context, author string, req models.CreateHandoverRequest) (*models.HandoverLog, error) {
	shift := strings.TrimSpace(req.Shift)
	notes := strings.TrimSpace(req.Notes)

	switch {
	case shift == "":
		return nil, fmt.Errorf("%w: shift is required", ErrInvalidHandover)
	case notes == "":
		return nil, fmt.Errorf("%w: notes are required", ErrInvalidHandover)
	case len(notes) > maxHandoverNotes:
		return nil, fmt.Errorf("%w: notes exceed %d characters", ErrInvalidHandover, maxHandoverNotes)
	}
	if author == "" {
		author = "anonymous"
	}

	log := &models.HandoverLog{
		ID:        uuid.NewString(),
		Shift:     shift,
		Author:    author,
		Notes:     notes,
		CreatedAt: s.now(),
	}
	if err := s.repo.Create(ctx, log); err != nil {
		return nil, err
	}

	s.log.Info("Handover log %s recorded by %s for %s shift", log.ID, author, shift)
	return log, nil
}

func (s *HandoverService) List(ctx context.Context, limit int) ([]models.HandoverLog, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.repo.ListRecent(ctx, limit)
}

// Report renders the latest handover note and the active alarm picture as a PDF.
func (s *HandoverService) Report(ctx context.Context, requestedBy string) ([]byte, error) {
	recent, err := s.repo.ListRecent(ctx, 1)
	if err != nil {
		return nil, err
	}

	groups, err := s.alarms.Grouped(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load active alarms: %w", err)
	}

	h := report.Handover{
		Unit:        s.unit,
		GeneratedAt: s.now(),
		GeneratedBy: requestedBy,
		Active:      groups,
	}
	if len(recent) > 0 {
		h.Latest = &recent[0]
	}

	return report.BuildHandoverPDF(h)
}
