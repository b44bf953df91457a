package reservations

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/kaiyuenlam/UniHaven/internal/app/system"
	"github.com/kaiyuenlam/UniHaven/pkg/logger"
)

var _ system.Service = (*Sweeper)(nil)

// DefaultSweepSchedule runs the completion sweep once an hour.
const DefaultSweepSchedule = "@every 1h"

// Sweeper periodically completes CONFIRMED reservations whose stay has
// ended, returning their accommodations to the market.
type Sweeper struct {
	service  *Service
	log      *logger.Logger
	schedule string

	mu      sync.Mutex
	cron    *cron.Cron
	running bool
}

// NewSweeper creates a lifecycle-managed reservation sweeper. An empty
// schedule falls back to DefaultSweepSchedule.
func NewSweeper(service *Service, schedule string, log *logger.Logger) *Sweeper {
	if schedule == "" {
		schedule = DefaultSweepSchedule
	}
	if log == nil {
		log = logger.NewDefault("reservation-sweeper")
	}
	return &Sweeper{service: service, schedule: schedule, log: log}
}

func (s *Sweeper) Name() string { return "reservation-sweeper" }

func (s *Sweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil
	}

	c := cron.New()
	if _, err := c.AddFunc(s.schedule, func() { s.sweep(context.Background()) }); err != nil {
		return err
	}
	c.Start()
	s.cron = c
	s.running = true

	s.log.WithField("schedule", s.schedule).Info("reservation sweeper started")
	return nil
}

func (s *Sweeper) Stop(ctx context.Context) error {
	s.mu.Lock()
	c := s.cron
	s.cron = nil
	s.running = false
	s.mu.Unlock()

	if c == nil {
		return nil
	}

	select {
	case <-c.Stop().Done():
	case <-ctx.Done():
		return ctx.Err()
	}

	s.log.Info("reservation sweeper stopped")
	return nil
}

func (s *Sweeper) sweep(ctx context.Context) {
	if s.service == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	completed, err := s.service.CompleteExpired(ctx, time.Now().UTC())
	if err != nil {
		s.log.WithError(err).Warn("reservation sweep failed")
		return
	}
	if completed > 0 {
		s.log.WithField("completed", completed).Info("reservations auto-completed")
	}
}
