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

type CartController struct {
	cartService *services.CartService
}

func NewCartController(cartService *services.CartService) *CartController {
	return &CartController{cartService: cartService}
}

func (cc *CartController) Get(ctx *gin.Context) {
	buyerID, err := middleware.GetUserID(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	cart, err := cc.cartService.Get(ctx.Request.Context(), buyerID)
	if err != nil {
		apperrors.Respond(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"cart": cart})
}

func (cc *CartController) AddLine(ctx *gin.Context) {
	buyerID, err := middleware.GetUserID(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.AddLineRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	cart, err := cc.cartService.AddLine(ctx.Request.Context(), buyerID, &req)
	if err != nil {
		apperrors.Respond(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "Item added to cart", "cart": cart})
}

func (cc *CartController) SetLineQuantity(ctx *gin.Context) {
	buyerID, err := middleware.GetUserID(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	productID, err := uuid.Parse(ctx.Param("productId"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}

	var req models.SetLineQuantityRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	cart, err := cc.cartService.SetLineQuantity(ctx.Request.Context(), buyerID, productID, req.Quantity)
	if err != nil {
		apperrors.Respond(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "Cart updated", "cart": cart})
}

func (cc *CartController) RemoveLine(ctx *gin.Context) {
	buyerID, err := middleware.GetUserID(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	productID, err := uuid.Parse(ctx.Param("productId"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}

	cart, err := cc.cartService.RemoveLine(ctx.Request.Context(), buyerID, productID)
	if err != nil {
		apperrors.Respond(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "Item removed from cart", "cart": cart})
}

func (cc *CartController) Clear(ctx *gin.Context) {
	buyerID, err := middleware.GetUserID(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := cc.cartService.Clear(ctx.Request.Context(), buyerID); err != nil {
		apperrors.Respond(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "Cart cleared"})
}

// Confirm converts the cart into a pending order awaiting admin approval.
func (cc *CartController) Confirm(ctx *gin.Context) {
	buyerID, err := middleware.GetUserID(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.ConfirmOrderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	order, err := cc.cartService.Confirm(ctx.Request.Context(), buyerID, &req)
	if err != nil {
		apperrors.Respond(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{
		"message": "Order created successfully. Awaiting admin approval.",
		"order":   order,
	})
}
