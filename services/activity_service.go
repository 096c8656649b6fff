package services

import (
	"context"

	"github.com/yashrajoria/farm-marketplace/models"
	"github.com/yashrajoria/farm-marketplace/repository"
)

// ActivityService exposes the audit log and the admin dashboard projection.
// Writes happen inside the repositories' transactions; this service only
// reads.
type ActivityService struct {
	activity repository.ActivityRepository
}

func NewActivityService(activity repository.ActivityRepository) *ActivityService {
	return &ActivityService{activity: activity}
}

// Query returns entries newest first, optionally filtered by action tag.
func (s *ActivityService) Query(ctx context.Context, action string, page, limit int) ([]models.ActivityLogEntry, int64, error) {
	return s.activity.List(ctx, action, page, limit)
}

func (s *ActivityService) DashboardStats(ctx context.Context) (*models.DashboardStats, error) {
	return s.activity.DashboardStats(ctx)
}
