package service

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cloudlodge/internal/entities"
)

type adminAPIStub struct {
	metrics entities.DashboardMetrics
	calls   int
}

func (s *adminAPIStub) DashboardMetrics(ctx context.Context) (*entities.DashboardMetrics, error) {
	s.calls++
	m := s.metrics
	return &m, nil
}

func (s *adminAPIStub) ListUsers(ctx context.Context) ([]entities.User, error) {
	return nil, nil
}

func (s *adminAPIStub) UpdateUserRole(ctx context.Context, id, role string) (*entities.User, error) {
	return &entities.User{ID: id, Role: role}, nil
}

func (s *adminAPIStub) DeleteUser(ctx context.Context, id string) error {
	return nil
}

func TestWatchRefreshesImmediatelyAndStopsOnCancel(t *testing.T) {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	stub := &adminAPIStub{metrics: entities.DashboardMetrics{TotalRooms: 10, OccupiedRooms: 4}}
	watch := NewWatchService(NewAdminService(stub, log), log)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- watch.Run(ctx, "@every 1h") }()

	// The first refresh happens before the schedule ever ticks.
	require.Eventually(t, func() bool { return watch.Last() != nil }, time.Second, 10*time.Millisecond)
	assert.Equal(t, 4, watch.Last().OccupiedRooms)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop after context cancellation")
	}
	assert.Equal(t, 1, stub.calls)
}

func TestWatchRejectsBadSchedule(t *testing.T) {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	watch := NewWatchService(NewAdminService(&adminAPIStub{}, log), log)

	err := watch.Run(context.Background(), "not a schedule")
	require.Error(t, err)
}
