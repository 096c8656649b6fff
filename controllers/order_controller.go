package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yashrajoria/farm-marketplace/apperrors"
	"github.com/yashrajoria/farm-marketplace/middleware"
	"github.com/yashrajoria/farm-marketplace/models"
	"github.com/yashrajoria/farm-marketplace/services"
)

type OrderController struct {
	orderService *services.OrderService
}

func NewOrderController(orderService *services.OrderService) *OrderController {
	return &OrderController{orderService: orderService}
}

// ListMine returns the authenticated buyer's orders.
func (oc *OrderController) ListMine(ctx *gin.Context) {
	buyerID, err := middleware.GetUserID(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	page, limit := parsePaginationParams(ctx)

	orders, total, err := oc.orderService.ListByBuyer(ctx.Request.Context(), buyerID, page, limit)
	if err != nil {
		apperrors.Respond(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"orders": orders,
		"meta":   paginationMeta(page, limit, total),
	})
}

// Get returns one order to its buyer or an admin.
func (oc *OrderController) Get(ctx *gin.Context) {
	userID, err := middleware.GetUserID(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	orderID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
		return
	}

	order, err := oc.orderService.GetByID(ctx.Request.Context(), userID, middleware.GetRole(ctx), orderID)
	if err != nil {
		apperrors.Respond(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"order": order})
}

// ListPending is the admin approval queue.
func (oc *OrderController) ListPending(ctx *gin.Context) {
	page, limit := parsePaginationParams(ctx)

	orders, total, err := oc.orderService.ListPending(ctx.Request.Context(), page, limit)
	if err != nil {
		apperrors.Respond(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"orders": orders,
		"meta":   paginationMeta(page, limit, total),
	})
}

// Approve admits the order and deducts stock for every item.
func (oc *OrderController) Approve(ctx *gin.Context) {
	adminID, err := middleware.GetUserID(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	orderID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
		return
	}

	order, err := oc.orderService.Approve(ctx.Request.Context(), adminID, orderID)
	if err != nil {
		apperrors.Respond(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"message": "Order approved and stock deducted",
		"order":   order,
	})
}

// Reject declines a pending order with an optional note.
func (oc *OrderController) Reject(ctx *gin.Context) {
	adminID, err := middleware.GetUserID(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	orderID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
		return
	}

	var req models.RejectOrderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	order, err := oc.orderService.Reject(ctx.Request.Context(), adminID, orderID, req.AdminNote)
	if err != nil {
		apperrors.Respond(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "Order rejected", "order": order})
}

// Complete marks an approved order fulfilled.
func (oc *OrderController) Complete(ctx *gin.Context) {
	adminID, err := middleware.GetUserID(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	orderID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
		return
	}

	order, err := oc.orderService.Complete(ctx.Request.Context(), adminID, orderID)
	if err != nil {
		apperrors.Respond(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "Order completed", "order": order})
}
