package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yashrajoria/farm-marketplace/apperrors"
	"github.com/yashrajoria/farm-marketplace/kafka"
	"github.com/yashrajoria/farm-marketplace/models"
	"github.com/yashrajoria/farm-marketplace/repository"
)

// ProductService is the publication gate: farmer submissions sit in pending
// until an admin decision, and only approved, in-stock products are visible
// to buyers.
type ProductService struct {
	products repository.ProductRepository
	events   kafka.Publisher
	log      *zap.Logger
}

func NewProductService(products repository.ProductRepository, events kafka.Publisher, log *zap.Logger) *ProductService {
	return &ProductService{products: products, events: events, log: log}
}

// Submit creates a pending listing for the farmer.
func (s *ProductService) Submit(ctx context.Context, farmerID uuid.UUID, req *models.SubmitProductRequest) (*models.Product, error) {
	if req.Name == "" || req.Unit == "" {
		return nil, apperrors.Wrap(apperrors.ErrValidation, "name and unit are required")
	}
	if req.PriceCents < 0 {
		return nil, apperrors.Wrap(apperrors.ErrValidation, "price must not be negative")
	}
	if req.Quantity < 0 {
		return nil, apperrors.Wrap(apperrors.ErrValidation, "quantity must not be negative")
	}

	product := &models.Product{
		ID:          uuid.New(),
		FarmerID:    farmerID,
		Name:        req.Name,
		Description: req.Description,
		PriceCents:  req.PriceCents,
		Unit:        req.Unit,
		Quantity:    req.Quantity,
		ProductType: req.ProductType,
		Status:      models.ProductPending,
		IsActive:    true,
	}
	if err := s.products.Create(ctx, product); err != nil {
		return nil, err
	}

	s.log.Info("Product submitted",
		zap.String("product_id", product.ID.String()),
		zap.String("farmer_id", farmerID.String()),
	)
	return product, nil
}

// Decide transitions a pending product to approved or rejected. Decisions are
// final: a decided product can never return to pending.
func (s *ProductService) Decide(ctx context.Context, adminID uuid.UUID, productID uuid.UUID, approve bool) (*models.Product, error) {
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	if product.Status != models.ProductPending {
		return nil, apperrors.Wrap(apperrors.ErrInvalidState,
			fmt.Sprintf("product is already %s", product.Status))
	}

	now := time.Now()
	action, verb, eventType := "approve_product", "approved", "product.approved"
	if approve {
		product.Status = models.ProductApproved
		product.ApprovedAt = &now
	} else {
		product.Status = models.ProductRejected
		product.RejectedAt = &now
		action, verb, eventType = "reject_product", "rejected", "product.rejected"
	}

	entry := &models.ActivityLogEntry{
		UserID:      adminID,
		Role:        models.RoleAdmin,
		Action:      action,
		EntityType:  "product",
		EntityID:    &product.ID,
		Description: fmt.Sprintf("Admin %s product: %s", verb, product.Name),
	}
	if err := s.products.SaveWithLog(ctx, product, entry); err != nil {
		return nil, err
	}

	evt := kafka.ProductEvent{
		Type:      eventType,
		ProductID: product.ID,
		FarmerID:  product.FarmerID,
		Name:      product.Name,
		Timestamp: now,
	}
	if err := kafka.PublishJSON(ctx, s.events, product.ID.String(), evt); err != nil {
		s.log.Warn("Product event publish failed", zap.Error(err))
	}

	return product, nil
}

// ListApproved is the public browse projection.
func (s *ProductService) ListApproved(ctx context.Context, q models.ListProductsQuery) ([]models.Product, int64, error) {
	return s.products.ListApproved(ctx, q)
}

// Get returns a buyer-visible product and bumps its view counter.
func (s *ProductService) Get(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	if product.Status != models.ProductApproved || !product.IsActive {
		return nil, apperrors.ErrNotFound
	}

	if err := s.products.IncrementViewCount(ctx, productID); err != nil {
		s.log.Warn("View count increment failed", zap.String("product_id", productID.String()), zap.Error(err))
	} else {
		product.ViewCount++
	}
	return product, nil
}

// ListByFarmer shows a farmer their own listings, including pending and
// out-of-stock ones.
func (s *ProductService) ListByFarmer(ctx context.Context, farmerID uuid.UUID, status string, page, limit int) ([]models.Product, int64, error) {
	return s.products.ListByFarmer(ctx, farmerID, status, page, limit)
}

// ListPending is the admin review queue.
func (s *ProductService) ListPending(ctx context.Context, page, limit int) ([]models.Product, int64, error) {
	return s.products.ListPending(ctx, page, limit)
}

// Deactivate soft-removes a farmer's own listing. The row stays so order
// history keeps resolving.
func (s *ProductService) Deactivate(ctx context.Context, farmerID uuid.UUID, productID uuid.UUID) error {
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		if err == repository.ErrNotFound {
			return apperrors.ErrNotFound
		}
		return err
	}
	if product.FarmerID != farmerID {
		return apperrors.ErrForbidden
	}
	if !product.IsActive {
		return nil
	}

	product.IsActive = false
	entry := &models.ActivityLogEntry{
		UserID:      farmerID,
		Role:        models.RoleFarmer,
		Action:      "deactivate_product",
		EntityType:  "product",
		EntityID:    &product.ID,
		Description: fmt.Sprintf("Farmer removed product listing: %s", product.Name),
	}
	return s.products.SaveWithLog(ctx, product, entry)
}
