package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yashrajoria/farm-marketplace/apperrors"
	"github.com/yashrajoria/farm-marketplace/models"
	"github.com/yashrajoria/farm-marketplace/repository"
)

// UserService covers the small slice of account management owned by this
// core: admins enabling and disabling farmer/buyer accounts.
type UserService struct {
	users repository.UserRepository
	log   *zap.Logger
}

func NewUserService(users repository.UserRepository, log *zap.Logger) *UserService {
	return &UserService{users: users, log: log}
}

// ToggleStatus flips IsActive on a non-admin account.
func (s *UserService) ToggleStatus(ctx context.Context, adminID uuid.UUID, userID uuid.UUID) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	if user.Role == models.RoleAdmin {
		return nil, apperrors.Wrap(apperrors.ErrForbidden, "cannot modify admin accounts")
	}

	user.IsActive = !user.IsActive
	status := "deactivated"
	if user.IsActive {
		status = "activated"
	}

	entry := &models.ActivityLogEntry{
		UserID:      adminID,
		Role:        models.RoleAdmin,
		Action:      "toggle_user_status",
		EntityType:  "user",
		EntityID:    &user.ID,
		Description: fmt.Sprintf("Admin %s %s account: %s", status, user.Role, user.Email),
	}
	if err := s.users.SaveWithLog(ctx, user, entry); err != nil {
		return nil, err
	}

	s.log.Info("User status toggled",
		zap.String("user_id", user.ID.String()),
		zap.Bool("is_active", user.IsActive),
	)
	return user, nil
}
