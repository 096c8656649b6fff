package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yashrajoria/farm-marketplace/apperrors"
	"github.com/yashrajoria/farm-marketplace/middleware"
	"github.com/yashrajoria/farm-marketplace/services"
)

// AdminController covers the audit log, dashboard stats and account toggles.
type AdminController struct {
	activityService *services.ActivityService
	userService     *services.UserService
}

func NewAdminController(activityService *services.ActivityService, userService *services.UserService) *AdminController {
	return &AdminController{activityService: activityService, userService: userService}
}

// ActivityLogs returns audit entries, newest first.
func (ac *AdminController) ActivityLogs(ctx *gin.Context) {
	page, limit := parsePaginationParams(ctx)
	action := ctx.Query("action")

	entries, total, err := ac.activityService.Query(ctx.Request.Context(), action, page, limit)
	if err != nil {
		apperrors.Respond(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"logs": entries,
		"meta": paginationMeta(page, limit, total),
	})
}

func (ac *AdminController) DashboardStats(ctx *gin.Context) {
	stats, err := ac.activityService.DashboardStats(ctx.Request.Context())
	if err != nil {
		apperrors.Respond(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, stats)
}

// ToggleUserStatus activates or deactivates a farmer/buyer account.
func (ac *AdminController) ToggleUserStatus(ctx *gin.Context) {
	adminID, err := middleware.GetUserID(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	userID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	user, err := ac.userService.ToggleStatus(ctx.Request.Context(), adminID, userID)
	if err != nil {
		apperrors.Respond(ctx, err)
		return
	}

	status := "deactivated"
	if user.IsActive {
		status = "activated"
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "User " + status, "user": user})
}
