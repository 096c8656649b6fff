package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yashrajoria/farm-marketplace/apperrors"
	"github.com/yashrajoria/farm-marketplace/middleware"
	"github.com/yashrajoria/farm-marketplace/models"
	"github.com/yashrajoria/farm-marketplace/services"
)

type ProductController struct {
	productService *services.ProductService
}

func NewProductController(productService *services.ProductService) *ProductController {
	return &ProductController{productService: productService}
}

// ListPublic returns approved, in-stock products for buyers to browse.
func (pc *ProductController) ListPublic(ctx *gin.Context) {
	var q models.ListProductsQuery
	if err := ctx.ShouldBindQuery(&q); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query", "details": err.Error()})
		return
	}

	products, total, err := pc.productService.ListApproved(ctx.Request.Context(), q)
	if err != nil {
		apperrors.Respond(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"products": products,
		"meta":     paginationMeta(q.Page, q.Limit, total),
	})
}

// GetPublic returns one visible product and bumps its view counter.
func (pc *ProductController) GetPublic(ctx *gin.Context) {
	productID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}

	product, err := pc.productService.Get(ctx.Request.Context(), productID)
	if err != nil {
		apperrors.Respond(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"product": product})
}

// Submit creates a pending listing for the authenticated farmer.
func (pc *ProductController) Submit(ctx *gin.Context) {
	farmerID, err := middleware.GetUserID(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.SubmitProductRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	product, err := pc.productService.Submit(ctx.Request.Context(), farmerID, &req)
	if err != nil {
		apperrors.Respond(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{
		"message": "Product submitted for approval",
		"product": product,
	})
}

// ListMine returns the farmer's own listings.
func (pc *ProductController) ListMine(ctx *gin.Context) {
	farmerID, err := middleware.GetUserID(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	page, limit := parsePaginationParams(ctx)
	status := ctx.Query("status")

	products, total, err := pc.productService.ListByFarmer(ctx.Request.Context(), farmerID, status, page, limit)
	if err != nil {
		apperrors.Respond(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"products": products,
		"meta":     paginationMeta(page, limit, total),
	})
}

// Deactivate soft-removes the farmer's own listing.
func (pc *ProductController) Deactivate(ctx *gin.Context) {
	farmerID, err := middleware.GetUserID(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	productID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}

	if err := pc.productService.Deactivate(ctx.Request.Context(), farmerID, productID); err != nil {
		apperrors.Respond(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "Product removed"})
}

// ListPending is the admin review queue.
func (pc *ProductController) ListPending(ctx *gin.Context) {
	page, limit := parsePaginationParams(ctx)

	products, total, err := pc.productService.ListPending(ctx.Request.Context(), page, limit)
	if err != nil {
		apperrors.Respond(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"products": products,
		"meta":     paginationMeta(page, limit, total),
	})
}

// Approve transitions a pending product to approved.
func (pc *ProductController) Approve(ctx *gin.Context) {
	pc.decide(ctx, true)
}

// Reject transitions a pending product to rejected.
func (pc *ProductController) Reject(ctx *gin.Context) {
	pc.decide(ctx, false)
}

func (pc *ProductController) decide(ctx *gin.Context, approve bool) {
	adminID, err := middleware.GetUserID(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	productID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}

	product, err := pc.productService.Decide(ctx.Request.Context(), adminID, productID, approve)
	if err != nil {
		apperrors.Respond(ctx, err)
		return
	}

	message := "Product approved successfully"
	if !approve {
		message = "Product rejected"
	}
	ctx.JSON(http.StatusOK, gin.H{"message": message, "product": product})
}

// parsePaginationParams reads page/limit query params with sane defaults.
func parsePaginationParams(ctx *gin.Context) (int, int) {
	page, err := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(ctx.DefaultQuery("limit", "20"))
	if err != nil || limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}

func paginationMeta(page, limit int, total int64) gin.H {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	totalPages := (total + int64(limit) - 1) / int64(limit)
	return gin.H{
		"page":        page,
		"limit":       limit,
		"total":       total,
		"total_pages": totalPages,
		"has_more":    int64(page) < totalPages,
	}
}
