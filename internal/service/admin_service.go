package service

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"cloudlodge/internal/entities"
	apperrors "cloudlodge/internal/errors"
)

// AdminAPI is the slice of the backend behind the admin dashboard and user
// management screens.
type AdminAPI interface {
	DashboardMetrics(ctx context.Context) (*entities.DashboardMetrics, error)
	ListUsers(ctx context.Context) ([]entities.User, error)
	UpdateUserRole(ctx context.Context, id, role string) (*entities.User, error)
	DeleteUser(ctx context.Context, id string) error
}

type AdminService struct {
	api AdminAPI
	log *logrus.Logger
}

func NewAdminService(adminAPI AdminAPI, log *logrus.Logger) *AdminService {
	return &AdminService{api: adminAPI, log: log}
}

func (s *AdminService) Metrics(ctx context.Context) (*entities.DashboardMetrics, error) {
	metrics, err := s.api.DashboardMetrics(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching dashboard metrics: %w", err)
	}
	return metrics, nil
}

func (s *AdminService) ListUsers(ctx context.Context) ([]entities.User, error) {
	return s.api.ListUsers(ctx)
}

// SetUserRole changes a user's role. Only the two roles the backend knows
// about are accepted.
func (s *AdminService) SetUserRole(ctx context.Context, id, role string) (*entities.User, error) {
	if role != entities.RoleGuest && role != entities.RoleAdmin {
		return nil, apperrors.Validation("unknown role %q", role)
	}
	user, err := s.api.UpdateUserRole(ctx, id, role)
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"user_id": id, "role": role}).Info("user role updated")
	return user, nil
}

func (s *AdminService) RemoveUser(ctx context.Context, id string) error {
	if err := s.api.DeleteUser(ctx, id); err != nil {
		return err
	}
	s.log.WithField("user_id", id).Info("user removed")
	return nil
}
