package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yashrajoria/farm-marketplace/apperrors"
	"github.com/yashrajoria/farm-marketplace/middleware"
	"github.com/yashrajoria/farm-marketplace/models"
	"github.com/yashrajoria/farm-marketplace/services"
)

type MessageController struct {
	messageService *services.MessageService
}

func NewMessageController(messageService *services.MessageService) *MessageController {
	return &MessageController{messageService: messageService}
}

func (mc *MessageController) Send(ctx *gin.Context) {
	senderID, err := middleware.GetUserID(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.SendMessageRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	msg, err := mc.messageService.Send(ctx.Request.Context(), senderID, middleware.GetRole(ctx), &req)
	if err != nil {
		apperrors.Respond(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{"message": "Message sent", "data": msg})
}

func (mc *MessageController) ListConversations(ctx *gin.Context) {
	userID, err := middleware.GetUserID(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	conversations, err := mc.messageService.ListConversations(ctx.Request.Context(), userID)
	if err != nil {
		apperrors.Respond(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"conversations": conversations})
}

// OpenThread returns the thread and marks messages addressed to the caller
// as read.
func (mc *MessageController) OpenThread(ctx *gin.Context) {
	userID, err := middleware.GetUserID(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	msgs, err := mc.messageService.OpenThread(ctx.Request.Context(), userID, ctx.Param("threadId"))
	if err != nil {
		apperrors.Respond(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"messages": msgs})
}

func (mc *MessageController) UnreadCount(ctx *gin.Context) {
	userID, err := middleware.GetUserID(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	count, err := mc.messageService.UnreadCount(ctx.Request.Context(), userID)
	if err != nil {
		apperrors.Respond(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"unread_count": count})
}

// Contacts lists the users the caller may start a conversation with.
func (mc *MessageController) Contacts(ctx *gin.Context) {
	if _, err := middleware.GetUserID(ctx); err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	users, err := mc.messageService.Contacts(ctx.Request.Context(), middleware.GetRole(ctx))
	if err != nil {
		apperrors.Respond(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"contacts": users})
}
