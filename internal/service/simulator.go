package service

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"FCCMonitorAPI/internal/logger"
	"FCCMonitorAPI/internal/models"
)

const (
	simReversion      = 0.08
	simNoise          = 0.03
	simUpsetChance    = 0.01
	simUpsetMagnitude = 0.6
)

// Simulator feeds random-walk readings into the tag service for demo and
// commissioning runs without a live sampler.
type Simulator struct {
	tags     *TagService
	interval time.Duration
	log      *logger.Logger
	rng      *rand.Rand

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewSimulator(tags *TagService, interval time.Duration, seed int64, log *logger.Logger) *Simulator {
	ctx, cancel := context.WithCancel(context.Background())

	return &Simulator{
		tags:     tags,
		interval: interval,
		log:      log,
		rng:      rand.New(rand.NewSource(seed)),
		ctx:      ctx,
		cancel:   cancel,
	}
}

func (s *Simulator) Start() {
	s.log.Info("Starting tag simulator (every %s)", s.interval)

	s.wg.Add(1)
	go s.loop()
}

func (s *Simulator) Shutdown() {
	s.log.Info("Shutting down tag simulator...")
	s.cancel()
	s.wg.Wait()
	s.log.Info("Tag simulator stopped")
}

func (s *Simulator) loop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.Step(s.ctx)
		}
	}
}

// Step advances every tag by one sample.
func (s *Simulator) Step(ctx context.Context) {
	for _, tag := range s.tags.List() {
		reading := models.TagReading{TagID: tag.ID, Value: s.next(tag)}
		if _, err := s.tags.ApplyReading(ctx, reading); err != nil {
			s.log.Error("Simulator reading for %s failed: %v", tag.ID, err)
		}
	}
}

// next pulls the value back toward the setpoint with gaussian noise scaled to
// the normal band, plus the occasional upset.
func (s *Simulator) next(tag models.Tag) float64 {
	band := tag.Limits.HighWarning - tag.Limits.LowWarning
	v := tag.CurrentValue
	v += (tag.Setpoint - v) * simReversion
	v += s.rng.NormFloat64() * band * simNoise

	if s.rng.Float64() < simUpsetChance {
		direction := 1.0
		if s.rng.Intn(2) == 0 {
			direction = -1
		}
		v += direction * band * simUpsetMagnitude
		s.log.Debug("Simulated upset on %s", tag.ID)
	}
	return v
}
