package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yashrajoria/farm-marketplace/models"
)

// UserRepository reads the shared identity model. Account creation and
// credentials live in the external auth service; this core only toggles
// active status.
type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	ListByRole(ctx context.Context, role string) ([]models.User, error)
	SaveWithLog(ctx context.Context, u *models.User, entry *models.ActivityLogEntry) error
}

// GormUserRepository implements UserRepository on Postgres
type GormUserRepository struct {
	db *gorm.DB
}

func NewGormUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

func (r *GormUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *GormUserRepository) ListByRole(ctx context.Context, role string) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Where("role = ? AND is_active = ?", role, true).
		Order("full_name ASC").
		Find(&users).Error
	return users, err
}

func (r *GormUserRepository) SaveWithLog(ctx context.Context, u *models.User, entry *models.ActivityLogEntry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(u).Error; err != nil {
			return err
		}
		return tx.Create(entry).Error
	})
}
