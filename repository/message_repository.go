package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yashrajoria/farm-marketplace/models"
)

// MessageRepository persists conversation messages. Threads are not stored;
// they are reconstructed from the thread_id column.
type MessageRepository interface {
	Create(ctx context.Context, m *models.Message) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Message, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Message, error)
	ListThread(ctx context.Context, threadID string) ([]models.Message, error)
	MarkThreadRead(ctx context.Context, threadID string, receiverID uuid.UUID, at time.Time) error
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)
}

// GormMessageRepository implements MessageRepository on Postgres
type GormMessageRepository struct {
	db *gorm.DB
}

func NewGormMessageRepository(db *gorm.DB) MessageRepository {
	return &GormMessageRepository{db: db}
}

func (r *GormMessageRepository) Create(ctx context.Context, m *models.Message) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *GormMessageRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Message, error) {
	var m models.Message
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

// ListByUser returns every message the user sent or received, newest first.
func (r *GormMessageRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Message, error) {
	var msgs []models.Message
	err := r.db.WithContext(ctx).
		Where("sender_id = ? OR receiver_id = ?", userID, userID).
		Order("created_at DESC").
		Find(&msgs).Error
	return msgs, err
}

// ListThread returns the full thread in creation order.
func (r *GormMessageRepository) ListThread(ctx context.Context, threadID string) ([]models.Message, error) {
	var msgs []models.Message
	err := r.db.WithContext(ctx).
		Where("thread_id = ?", threadID).
		Order("created_at ASC").
		Find(&msgs).Error
	return msgs, err
}

// MarkThreadRead flags every unread message in the thread addressed to
// receiverID. Re-running it matches no rows, which makes thread opening
// idempotent.
func (r *GormMessageRepository) MarkThreadRead(ctx context.Context, threadID string, receiverID uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).Model(&models.Message{}).
		Where("thread_id = ? AND receiver_id = ? AND is_read = ?", threadID, receiverID, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": at}).Error
}

func (r *GormMessageRepository) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Message{}).
		Where("receiver_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}
