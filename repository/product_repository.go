package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yashrajoria/farm-marketplace/models"
)

var ErrNotFound = errors.New("record not found")

// ProductRepository is the catalog store. Quantity may only be mutated
// through CompareAndDecrement (order approval) and IncrementQuantity (its
// compensating action).
type ProductRepository interface {
	Create(ctx context.Context, p *models.Product) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	Save(ctx context.Context, p *models.Product) error
	SaveWithLog(ctx context.Context, p *models.Product, entry *models.ActivityLogEntry) error
	ListApproved(ctx context.Context, q models.ListProductsQuery) ([]models.Product, int64, error)
	ListByFarmer(ctx context.Context, farmerID uuid.UUID, status string, page, limit int) ([]models.Product, int64, error)
	ListPending(ctx context.Context, page, limit int) ([]models.Product, int64, error)
	IncrementViewCount(ctx context.Context, id uuid.UUID) error
	CompareAndDecrement(ctx context.Context, id uuid.UUID, qty int) (bool, error)
	IncrementQuantity(ctx context.Context, id uuid.UUID, qty int) error
}

// GormProductRepository implements ProductRepository on Postgres
type GormProductRepository struct {
	db *gorm.DB
}

func NewGormProductRepository(db *gorm.DB) ProductRepository {
	return &GormProductRepository{db: db}
}

func (r *GormProductRepository) Create(ctx context.Context, p *models.Product) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var p models.Product
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *GormProductRepository) Save(ctx context.Context, p *models.Product) error {
	return r.db.WithContext(ctx).Save(p).Error
}

// SaveWithLog commits the product change and its audit entry together. A
// failed log write aborts the whole operation.
func (r *GormProductRepository) SaveWithLog(ctx context.Context, p *models.Product, entry *models.ActivityLogEntry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(p).Error; err != nil {
			return err
		}
		return tx.Create(entry).Error
	})
}

func (r *GormProductRepository) ListApproved(ctx context.Context, q models.ListProductsQuery) ([]models.Product, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("status = ? AND is_active = ?", models.ProductApproved, true)

	if !q.IncludeOutOfStock {
		query = query.Where("quantity > 0")
	}
	if q.ProductType != "" {
		query = query.Where("product_type = ?", q.ProductType)
	}
	if q.Search != "" {
		like := "%" + strings.ToLower(q.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}
	if q.MinPriceCents != nil {
		query = query.Where("price_cents >= ?", *q.MinPriceCents)
	}
	if q.MaxPriceCents != nil {
		query = query.Where("price_cents <= ?", *q.MaxPriceCents)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	switch q.SortBy {
	case "price_asc":
		query = query.Order("price_cents ASC")
	case "price_desc":
		query = query.Order("price_cents DESC")
	case "views":
		query = query.Order("view_count DESC")
	default:
		query = query.Order("created_at DESC")
	}

	page, limit := normalizePage(q.Page, q.Limit)
	var products []models.Product
	if err := query.Offset((page - 1) * limit).Limit(limit).Find(&products).Error; err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func (r *GormProductRepository) ListByFarmer(ctx context.Context, farmerID uuid.UUID, status string, page, limit int) ([]models.Product, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("farmer_id = ? AND is_active = ?", farmerID, true)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	return listPage(query, page, limit)
}

func (r *GormProductRepository) ListPending(ctx context.Context, page, limit int) ([]models.Product, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("status = ? AND is_active = ?", models.ProductPending, true)
	return listPage(query, page, limit)
}

func (r *GormProductRepository) IncrementViewCount(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error
}

// CompareAndDecrement atomically deducts qty iff quantity >= qty. The guard
// lives in the UPDATE's WHERE clause, so there is no read-then-write gap:
// two concurrent approvals cannot both pass the check.
func (r *GormProductRepository) CompareAndDecrement(ctx context.Context, id uuid.UUID, qty int) (bool, error) {
	if qty <= 0 {
		return false, fmt.Errorf("decrement quantity must be positive, got %d", qty)
	}
	res := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ? AND quantity >= ?", id, qty).
		UpdateColumn("quantity", gorm.Expr("quantity - ?", qty))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// IncrementQuantity is the compensating action for a CompareAndDecrement that
// must be undone. It is not a general restock path.
func (r *GormProductRepository) IncrementQuantity(ctx context.Context, id uuid.UUID, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("increment quantity must be positive, got %d", qty)
	}
	return r.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ?", id).
		UpdateColumn("quantity", gorm.Expr("quantity + ?", qty)).Error
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}

func listPage(query *gorm.DB, page, limit int) ([]models.Product, int64, error) {
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	page, limit = normalizePage(page, limit)
	var products []models.Product
	if err := query.Order("created_at DESC").Offset((page - 1) * limit).Limit(limit).Find(&products).Error; err != nil {
		return nil, 0, err
	}
	return products, total, nil
}
