package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/yashrajoria/farm-marketplace/models"
)

// ActivityRepository is the append-only audit store plus the admin dashboard
// projection. Entries are never updated or deleted.
type ActivityRepository interface {
	Append(ctx context.Context, entry *models.ActivityLogEntry) error
	List(ctx context.Context, action string, page, limit int) ([]models.ActivityLogEntry, int64, error)
	DashboardStats(ctx context.Context) (*models.DashboardStats, error)
}

// GormActivityRepository implements ActivityRepository on Postgres
type GormActivityRepository struct {
	db *gorm.DB
}

func NewGormActivityRepository(db *gorm.DB) ActivityRepository {
	return &GormActivityRepository{db: db}
}

func (r *GormActivityRepository) Append(ctx context.Context, entry *models.ActivityLogEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *GormActivityRepository) List(ctx context.Context, action string, page, limit int) ([]models.ActivityLogEntry, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.ActivityLogEntry{})
	if action != "" {
		query = query.Where("action = ?", action)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page, limit = normalizePage(page, limit)
	var entries []models.ActivityLogEntry
	if err := query.Order("created_at DESC").Offset((page - 1) * limit).Limit(limit).Find(&entries).Error; err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

func (r *GormActivityRepository) DashboardStats(ctx context.Context) (*models.DashboardStats, error) {
	stats := &models.DashboardStats{}
	db := r.db.WithContext(ctx)

	counts := []struct {
		dest  *int64
		model interface{}
		query string
		args  []interface{}
	}{
		{&stats.TotalFarmers, &models.User{}, "role = ?", []interface{}{models.RoleFarmer}},
		{&stats.ActiveFarmers, &models.User{}, "role = ? AND is_active = ?", []interface{}{models.RoleFarmer, true}},
		{&stats.TotalBuyers, &models.User{}, "role = ?", []interface{}{models.RoleBuyer}},
		{&stats.ActiveBuyers, &models.User{}, "role = ? AND is_active = ?", []interface{}{models.RoleBuyer, true}},
		{&stats.TotalProducts, &models.Product{}, "", nil},
		{&stats.ApprovedProducts, &models.Product{}, "status = ?", []interface{}{models.ProductApproved}},
		{&stats.PendingProducts, &models.Product{}, "status = ? AND is_active = ?", []interface{}{models.ProductPending, true}},
		{&stats.TotalOrders, &models.Order{}, "", nil},
		{&stats.PendingOrders, &models.Order{}, "status = ?", []interface{}{models.OrderPending}},
		{&stats.ApprovedOrders, &models.Order{}, "status = ?", []interface{}{models.OrderApproved}},
		{&stats.RejectedOrders, &models.Order{}, "status = ?", []interface{}{models.OrderRejected}},
	}
	for _, c := range counts {
		q := db.Model(c.model)
		if c.query != "" {
			q = q.Where(c.query, c.args...)
		}
		if err := q.Count(c.dest).Error; err != nil {
			return nil, err
		}
	}

	// Completed orders were approved first; both count toward revenue.
	err := db.Model(&models.Order{}).
		Where("status IN ?", []string{models.OrderApproved, models.OrderCompleted}).
		Select("COALESCE(SUM(total_cents), 0)").
		Scan(&stats.TotalRevenueCents).Error
	if err != nil {
		return nil, err
	}
	return stats, nil
}
