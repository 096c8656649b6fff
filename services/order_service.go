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

// OrderService runs the order lifecycle. Stock is deducted only at admin
// approval, never at cart or confirmation time: pending orders may jointly
// over-commit a product, and whichever approval runs first wins.
type OrderService struct {
	orders   repository.OrderRepository
	products repository.ProductRepository
	events   kafka.Publisher
	log      *zap.Logger
}

func NewOrderService(orders repository.OrderRepository, products repository.ProductRepository, events kafka.Publisher, log *zap.Logger) *OrderService {
	return &OrderService{orders: orders, products: products, events: events, log: log}
}

// Approve admits a pending order against current stock.
//
// Every item is deducted with a conditional decrement; the sequence is made
// all-or-nothing by compensation, not by a long-held lock, so contention
// stays local to whichever product is scarce. On any failure the decrements
// already applied are re-incremented and the order stays pending for the
// admin to retry or reject.
func (s *OrderService) Approve(ctx context.Context, adminID uuid.UUID, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	if order.Status != models.OrderPending {
		return nil, apperrors.Wrap(apperrors.ErrInvalidState,
			fmt.Sprintf("order is already %s", order.Status))
	}

	applied := make([]models.OrderItem, 0, len(order.Items))
	for _, item := range order.Items {
		ok, err := s.products.CompareAndDecrement(ctx, item.ProductID, item.Quantity)
		if err != nil {
			s.rollbackDecrements(ctx, applied)
			return nil, err
		}
		if !ok {
			s.rollbackDecrements(ctx, applied)
			return nil, apperrors.Wrap(apperrors.ErrInsufficientStock,
				fmt.Sprintf("insufficient stock for %s", item.ProductName))
		}
		applied = append(applied, item)
	}

	now := time.Now()
	order.Status = models.OrderApproved
	order.ApprovedAt = &now

	entries := make([]models.ActivityLogEntry, 0, len(order.Items)+1)
	for _, item := range order.Items {
		productID := item.ProductID
		entries = append(entries, models.ActivityLogEntry{
			UserID:     adminID,
			Role:       models.RoleAdmin,
			Action:     "stock_deduction",
			EntityType: "product",
			EntityID:   &productID,
			Description: fmt.Sprintf("Stock deducted: %d %s of %s (Order %s)",
				item.Quantity, item.Unit, item.ProductName, order.OrderNumber),
		})
	}
	entries = append(entries, models.ActivityLogEntry{
		UserID:      adminID,
		Role:        models.RoleAdmin,
		Action:      "approve_order",
		EntityType:  "order",
		EntityID:    &order.ID,
		Description: fmt.Sprintf("Admin approved order %s", order.OrderNumber),
	})

	// The status change and its audit entries commit together, guarded on
	// the order still being pending. If the guard fails a concurrent request
	// already decided this order and our decrements would be a second
	// deduction, so they are compensated either way.
	if err := s.orders.UpdateStatusWithLog(ctx, order, models.OrderPending, entries); err != nil {
		s.rollbackDecrements(ctx, applied)
		if err == repository.ErrStatusConflict {
			return nil, apperrors.Wrap(apperrors.ErrInvalidState, "order was already decided")
		}
		return nil, err
	}

	evt := kafka.OrderEvent{
		Type:        "order.approved",
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		BuyerID:     order.BuyerID,
		TotalCents:  order.TotalCents,
		Timestamp:   now,
	}
	if err := kafka.PublishJSON(ctx, s.events, order.ID.String(), evt); err != nil {
		s.log.Warn("Order event publish failed", zap.Error(err))
	}

	s.log.Info("Order approved",
		zap.String("order_id", order.ID.String()),
		zap.String("order_number", order.OrderNumber),
		zap.Int("items", len(order.Items)),
	)
	return order, nil
}

// rollbackDecrements re-increments every product deducted so far in this
// approval attempt. A failed compensation is logged loudly: it means stock
// is understated until repaired from the activity log.
func (s *OrderService) rollbackDecrements(ctx context.Context, applied []models.OrderItem) {
	for _, item := range applied {
		if err := s.products.IncrementQuantity(ctx, item.ProductID, item.Quantity); err != nil {
			s.log.Error("Stock rollback failed",
				zap.String("product_id", item.ProductID.String()),
				zap.Int("quantity", item.Quantity),
				zap.Error(err),
			)
		}
	}
}

// Reject moves a pending order to its terminal rejected state. No stock is
// touched because none was ever deducted.
func (s *OrderService) Reject(ctx context.Context, adminID uuid.UUID, orderID uuid.UUID, note string) (*models.Order, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	if order.Status != models.OrderPending {
		return nil, apperrors.Wrap(apperrors.ErrInvalidState,
			fmt.Sprintf("order is already %s", order.Status))
	}

	now := time.Now()
	order.Status = models.OrderRejected
	order.RejectedAt = &now
	order.AdminNote = note

	entries := []models.ActivityLogEntry{{
		UserID:      adminID,
		Role:        models.RoleAdmin,
		Action:      "reject_order",
		EntityType:  "order",
		EntityID:    &order.ID,
		Description: fmt.Sprintf("Admin rejected order %s", order.OrderNumber),
	}}
	if err := s.orders.UpdateStatusWithLog(ctx, order, models.OrderPending, entries); err != nil {
		if err == repository.ErrStatusConflict {
			return nil, apperrors.Wrap(apperrors.ErrInvalidState, "order was already decided")
		}
		return nil, err
	}

	evt := kafka.OrderEvent{
		Type:        "order.rejected",
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		BuyerID:     order.BuyerID,
		TotalCents:  order.TotalCents,
		Timestamp:   now,
	}
	if err := kafka.PublishJSON(ctx, s.events, order.ID.String(), evt); err != nil {
		s.log.Warn("Order event publish failed", zap.Error(err))
	}
	return order, nil
}

// Complete marks an approved order fulfilled. It is a status tag only and
// never re-enters inventory logic.
func (s *OrderService) Complete(ctx context.Context, adminID uuid.UUID, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	if order.Status != models.OrderApproved {
		return nil, apperrors.Wrap(apperrors.ErrInvalidState,
			fmt.Sprintf("cannot complete a %s order", order.Status))
	}

	now := time.Now()
	order.Status = models.OrderCompleted
	order.CompletedAt = &now

	entries := []models.ActivityLogEntry{{
		UserID:      adminID,
		Role:        models.RoleAdmin,
		Action:      "complete_order",
		EntityType:  "order",
		EntityID:    &order.ID,
		Description: fmt.Sprintf("Admin marked order %s completed", order.OrderNumber),
	}}
	if err := s.orders.UpdateStatusWithLog(ctx, order, models.OrderApproved, entries); err != nil {
		if err == repository.ErrStatusConflict {
			return nil, apperrors.Wrap(apperrors.ErrInvalidState, "order is no longer approved")
		}
		return nil, err
	}
	return order, nil
}

// GetByID returns the order to its buyer or to an admin.
func (s *OrderService) GetByID(ctx context.Context, requesterID uuid.UUID, requesterRole string, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	if requesterRole != models.RoleAdmin && order.BuyerID != requesterID {
		return nil, apperrors.ErrForbidden
	}
	return order, nil
}

func (s *OrderService) ListByBuyer(ctx context.Context, buyerID uuid.UUID, page, limit int) ([]models.Order, int64, error) {
	return s.orders.ListByBuyer(ctx, buyerID, page, limit)
}

func (s *OrderService) ListPending(ctx context.Context, page, limit int) ([]models.Order, int64, error) {
	return s.orders.ListByStatus(ctx, models.OrderPending, page, limit)
}
