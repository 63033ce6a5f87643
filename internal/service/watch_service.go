package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"cloudlodge/internal/entities"
)

// WatchService re-fetches the admin dashboard on a cron schedule and logs
// occupancy and income movement until its context is cancelled.
type WatchService struct {
	admin *AdminService
	log   *logrus.Logger

	mu   sync.Mutex
	last *entities.DashboardMetrics
}

func NewWatchService(admin *AdminService, log *logrus.Logger) *WatchService {
	return &WatchService{admin: admin, log: log}
}

// Run fetches once immediately, then on every tick of schedule (any
// robfig/cron expression, e.g. "@every 1m"). It blocks until ctx is
// cancelled and waits for an in-flight refresh to finish before returning.
func (s *WatchService) Run(ctx context.Context, schedule string) error {
	s.refresh(ctx)

	c := cron.New()
	if _, err := c.AddFunc(schedule, func() { s.refresh(ctx) }); err != nil {
		return fmt.Errorf("invalid watch schedule %q: %w", schedule, err)
	}
	c.Start()

	<-ctx.Done()
	stopped := c.Stop()
	<-stopped.Done()
	return nil
}

func (s *WatchService) refresh(ctx context.Context) {
	metrics, err := s.admin.Metrics(ctx)
	if err != nil {
		s.log.WithError(err).Warn("dashboard refresh failed")
		return
	}

	s.mu.Lock()
	prev := s.last
	s.last = metrics
	s.mu.Unlock()

	fields := logrus.Fields{
		"occupied":       metrics.OccupiedRooms,
		"total_rooms":    metrics.TotalRooms,
		"occupancy_rate": metrics.OccupancyRate,
		"income_month":   metrics.IncomeCentsMonth,
	}
	if prev != nil {
		fields["occupied_delta"] = metrics.OccupiedRooms - prev.OccupiedRooms
		fields["income_delta"] = metrics.IncomeCentsMonth - prev.IncomeCentsMonth
	}
	s.log.WithFields(fields).Info("dashboard refreshed")
}

// Last returns the most recent metrics snapshot, nil before the first
// successful refresh.
func (s *WatchService) Last() *entities.DashboardMetrics {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}
