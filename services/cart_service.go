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

// CartService manages the buyer's staging area. Availability checks here are
// advisory only; the authoritative admission happens at order approval.
type CartService struct {
	carts    repository.CartRepository
	products repository.ProductRepository
	orders   repository.OrderRepository
	events   kafka.Publisher
	log      *zap.Logger
}

func NewCartService(carts repository.CartRepository, products repository.ProductRepository, orders repository.OrderRepository, events kafka.Publisher, log *zap.Logger) *CartService {
	return &CartService{carts: carts, products: products, orders: orders, events: events, log: log}
}

// Get returns the buyer's cart, empty if none exists yet.
func (s *CartService) Get(ctx context.Context, buyerID uuid.UUID) (*models.Cart, error) {
	cart, err := s.carts.Get(ctx, buyerID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		cart = &models.Cart{UserID: buyerID, Lines: []models.CartLine{}}
	}
	return cart, nil
}

// AddLine puts qty of a product into the cart, merging with an existing line
// for the same product.
func (s *CartService) AddLine(ctx context.Context, buyerID uuid.UUID, req *models.AddLineRequest) (*models.Cart, error) {
	if req.Quantity < 1 {
		return nil, apperrors.Wrap(apperrors.ErrValidation, "quantity must be at least 1")
	}

	if err := s.checkAvailable(ctx, req.ProductID); err != nil {
		return nil, err
	}

	cart, err := s.Get(ctx, buyerID)
	if err != nil {
		return nil, err
	}

	if i := cart.Line(req.ProductID); i >= 0 {
		cart.Lines[i].Quantity += req.Quantity
	} else {
		cart.Lines = append(cart.Lines, models.CartLine{ProductID: req.ProductID, Quantity: req.Quantity})
	}

	if err := s.carts.Save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// SetLineQuantity replaces the quantity of an existing line.
func (s *CartService) SetLineQuantity(ctx context.Context, buyerID uuid.UUID, productID uuid.UUID, quantity int) (*models.Cart, error) {
	if quantity < 1 {
		return nil, apperrors.Wrap(apperrors.ErrValidation, "quantity must be at least 1")
	}

	cart, err := s.Get(ctx, buyerID)
	if err != nil {
		return nil, err
	}
	i := cart.Line(productID)
	if i < 0 {
		return nil, apperrors.Wrap(apperrors.ErrNotFound, "product not in cart")
	}

	cart.Lines[i].Quantity = quantity
	if err := s.carts.Save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// RemoveLine deletes one product from the cart.
func (s *CartService) RemoveLine(ctx context.Context, buyerID uuid.UUID, productID uuid.UUID) (*models.Cart, error) {
	cart, err := s.Get(ctx, buyerID)
	if err != nil {
		return nil, err
	}
	i := cart.Line(productID)
	if i < 0 {
		return nil, apperrors.Wrap(apperrors.ErrNotFound, "product not in cart")
	}

	cart.Lines = append(cart.Lines[:i], cart.Lines[i+1:]...)
	if err := s.carts.Save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// Clear empties the cart without deleting it.
func (s *CartService) Clear(ctx context.Context, buyerID uuid.UUID) error {
	cart, err := s.Get(ctx, buyerID)
	if err != nil {
		return err
	}
	cart.Lines = []models.CartLine{}
	return s.carts.Save(ctx, cart)
}

// Confirm snapshots the cart into a pending order. Prices, names and units
// are frozen per line; no stock is touched. The order plus its audit entry
// commit together, then the cart is emptied.
func (s *CartService) Confirm(ctx context.Context, buyerID uuid.UUID, req *models.ConfirmOrderRequest) (*models.Order, error) {
	cart, err := s.Get(ctx, buyerID)
	if err != nil {
		return nil, err
	}
	if len(cart.Lines) == 0 {
		return nil, apperrors.ErrEmptyCart
	}

	now := time.Now()
	orderID := uuid.New()
	order := &models.Order{
		ID:          orderID,
		OrderNumber: models.NewOrderNumber(now, orderID),
		BuyerID:     buyerID,
		Status:      models.OrderPending,
		BuyerNote:   req.BuyerNote,
		Items:       make([]models.OrderItem, 0, len(cart.Lines)),
	}

	for _, line := range cart.Lines {
		product, err := s.products.FindByID(ctx, line.ProductID)
		if err != nil {
			if err == repository.ErrNotFound {
				return nil, apperrors.Wrap(apperrors.ErrProductUnavailable, "a cart item no longer exists")
			}
			return nil, err
		}
		if product.Status != models.ProductApproved || !product.IsActive {
			return nil, apperrors.Wrap(apperrors.ErrProductUnavailable,
				fmt.Sprintf("%s is no longer available", product.Name))
		}

		subtotal := product.PriceCents * int64(line.Quantity)
		order.Items = append(order.Items, models.OrderItem{
			OrderID:        order.ID,
			ProductID:      product.ID,
			FarmerID:       product.FarmerID,
			ProductName:    product.Name,
			Unit:           product.Unit,
			UnitPriceCents: product.PriceCents,
			Quantity:       line.Quantity,
			SubtotalCents:  subtotal,
		})
		order.TotalCents += subtotal
	}

	entry := &models.ActivityLogEntry{
		UserID:      buyerID,
		Role:        models.RoleBuyer,
		Action:      "create_order",
		EntityType:  "order",
		Description: fmt.Sprintf("Buyer created order %s (pending admin approval)", order.OrderNumber),
	}
	if err := s.orders.CreateWithLog(ctx, order, entry); err != nil {
		return nil, err
	}

	// The order exists now; a cart that fails to clear is only stale
	// intent and is safe to leave behind.
	if err := s.Clear(ctx, buyerID); err != nil {
		s.log.Warn("Cart clear after confirm failed",
			zap.String("buyer_id", buyerID.String()),
			zap.Error(err),
		)
	}

	evt := kafka.OrderEvent{
		Type:        "order.confirmed",
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		BuyerID:     buyerID,
		TotalCents:  order.TotalCents,
		Timestamp:   now,
	}
	if err := kafka.PublishJSON(ctx, s.events, order.ID.String(), evt); err != nil {
		s.log.Warn("Order event publish failed", zap.Error(err))
	}

	s.log.Info("Order confirmed",
		zap.String("order_number", order.OrderNumber),
		zap.String("buyer_id", buyerID.String()),
		zap.Int64("total_cents", order.TotalCents),
	)
	return order, nil
}

// checkAvailable is the cart-time advisory gate. Stock can still change
// before confirmation and approval.
func (s *CartService) checkAvailable(ctx context.Context, productID uuid.UUID) error {
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		if err == repository.ErrNotFound {
			return apperrors.Wrap(apperrors.ErrProductUnavailable, "product not found")
		}
		return err
	}
	if product.Status != models.ProductApproved || !product.IsActive {
		return apperrors.Wrap(apperrors.ErrProductUnavailable, "product is not available")
	}
	if product.Quantity == 0 {
		return apperrors.Wrap(apperrors.ErrProductUnavailable, "product is out of stock")
	}
	return nil
}
