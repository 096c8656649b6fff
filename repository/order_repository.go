package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yashrajoria/farm-marketplace/models"
)

// ErrStatusConflict reports that the order's status changed between the
// caller's read and its write, so the transition did not happen.
var ErrStatusConflict = errors.New("order status changed concurrently")

// OrderRepository persists orders. Status changes always travel with their
// activity-log entries in one transaction.
type OrderRepository interface {
	CreateWithLog(ctx context.Context, order *models.Order, entry *models.ActivityLogEntry) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListByBuyer(ctx context.Context, buyerID uuid.UUID, page, limit int) ([]models.Order, int64, error)
	ListByStatus(ctx context.Context, status string, page, limit int) ([]models.Order, int64, error)
	UpdateStatusWithLog(ctx context.Context, order *models.Order, from string, entries []models.ActivityLogEntry) error
}

// GormOrderRepository implements OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

func NewGormOrderRepository(db *gorm.DB) OrderRepository {
	return &GormOrderRepository{db: db}
}

func (r *GormOrderRepository) CreateWithLog(ctx context.Context, order *models.Order, entry *models.ActivityLogEntry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(order).Error; err != nil {
			return err
		}
		entry.EntityID = &order.ID
		return tx.Create(entry).Error
	})
}

func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).Preload("Items").First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (r *GormOrderRepository) ListByBuyer(ctx context.Context, buyerID uuid.UUID, page, limit int) ([]models.Order, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Order{}).Where("buyer_id = ?", buyerID)
	return r.list(query, page, limit)
}

func (r *GormOrderRepository) ListByStatus(ctx context.Context, status string, page, limit int) ([]models.Order, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Order{}).Where("status = ?", status)
	return r.list(query, page, limit)
}

// UpdateStatusWithLog writes the order's new status and its audit entries in
// one transaction. The transition is guarded by the status the caller read:
// the conditional UPDATE matches no row if a concurrent request already moved
// the order on, in which case nothing is written and ErrStatusConflict comes
// back. If the log insert fails the whole change rolls back and the caller
// must compensate any stock decrements it already applied.
func (r *GormOrderRepository) UpdateStatusWithLog(ctx context.Context, order *models.Order, from string, entries []models.ActivityLogEntry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", order.ID, from).
			UpdateColumn("status", order.Status)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrStatusConflict
		}
		if err := tx.Save(order).Error; err != nil {
			return err
		}
		for i := range entries {
			if err := tx.Create(&entries[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *GormOrderRepository) list(query *gorm.DB, page, limit int) ([]models.Order, int64, error) {
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	page, limit = normalizePage(page, limit)
	var orders []models.Order
	if err := query.
		Preload("Items").
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}
