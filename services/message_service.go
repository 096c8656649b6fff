package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yashrajoria/farm-marketplace/apperrors"
	"github.com/yashrajoria/farm-marketplace/models"
	"github.com/yashrajoria/farm-marketplace/repository"
)

// MessageService implements the conversation thread model. A thread is a
// derived view over the flat message table, grouped by the unordered
// participant pair.
type MessageService struct {
	messages repository.MessageRepository
	users    repository.UserRepository
	log      *zap.Logger
}

func NewMessageService(messages repository.MessageRepository, users repository.UserRepository, log *zap.Logger) *MessageService {
	return &MessageService{messages: messages, users: users, log: log}
}

// Send delivers a message. Farmers and buyers may only message admins; a
// reply must reference a message of the same thread.
func (s *MessageService) Send(ctx context.Context, senderID uuid.UUID, senderRole string, req *models.SendMessageRequest) (*models.Message, error) {
	if req.Body == "" {
		return nil, apperrors.Wrap(apperrors.ErrValidation, "message body is required")
	}
	if req.ReceiverID == senderID {
		return nil, apperrors.Wrap(apperrors.ErrValidation, "cannot message yourself")
	}

	receiver, err := s.users.FindByID(ctx, req.ReceiverID)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, apperrors.Wrap(apperrors.ErrNotFound, "receiver not found")
		}
		return nil, err
	}
	if !receiver.IsActive {
		return nil, apperrors.Wrap(apperrors.ErrValidation, "receiver account is inactive")
	}
	if senderRole != models.RoleAdmin && receiver.Role != models.RoleAdmin {
		return nil, apperrors.Wrap(apperrors.ErrForbidden, "you can only send messages to admin")
	}

	threadID := models.ThreadIDFor(senderID, req.ReceiverID)

	if req.ParentMessageID != nil {
		parent, err := s.messages.FindByID(ctx, *req.ParentMessageID)
		if err != nil {
			if err == repository.ErrNotFound {
				return nil, apperrors.Wrap(apperrors.ErrInvalidThread, "parent message not found")
			}
			return nil, err
		}
		if parent.ThreadID != threadID {
			return nil, apperrors.Wrap(apperrors.ErrInvalidThread, "parent message belongs to a different conversation")
		}
	}

	subject := req.Subject
	if subject == "" {
		subject = "No Subject"
	}

	msg := &models.Message{
		ID:              uuid.New(),
		SenderID:        senderID,
		ReceiverID:      req.ReceiverID,
		Subject:         subject,
		Body:            req.Body,
		ThreadID:        threadID,
		ParentMessageID: req.ParentMessageID,
		CreatedAt:       time.Now(),
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, err
	}

	s.log.Info("Message sent",
		zap.String("thread_id", threadID),
		zap.String("sender_id", senderID.String()),
		zap.String("receiver_id", req.ReceiverID.String()),
	)
	return msg, nil
}

// ListConversations returns one summary per counterparty, ordered by the
// recency of the last message.
func (s *MessageService) ListConversations(ctx context.Context, userID uuid.UUID) ([]models.ThreadSummary, error) {
	msgs, err := s.messages.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	// msgs arrive newest first, so the first message seen per thread is
	// its latest.
	summaries := make([]models.ThreadSummary, 0)
	seen := make(map[string]int)
	for _, msg := range msgs {
		if i, ok := seen[msg.ThreadID]; ok {
			if msg.ReceiverID == userID && !msg.IsRead {
				summaries[i].UnreadCount++
			}
			continue
		}

		otherID := msg.SenderID
		if otherID == userID {
			otherID = msg.ReceiverID
		}

		summary := models.ThreadSummary{
			ThreadID:        msg.ThreadID,
			OtherUserID:     otherID,
			LastMessage:     msg,
			LastMessageTime: msg.CreatedAt,
		}
		// a counterparty deleted since the exchange just loses its name;
		// anything else is a store failure and the listing is wrong without it
		other, err := s.users.FindByID(ctx, otherID)
		if err != nil && err != repository.ErrNotFound {
			return nil, err
		}
		if err == nil {
			summary.OtherUserName = other.FullName
			summary.OtherUserRole = other.Role
		}
		if msg.ReceiverID == userID && !msg.IsRead {
			summary.UnreadCount = 1
		}

		seen[msg.ThreadID] = len(summaries)
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// OpenThread returns the thread in creation order and marks every message
// addressed to the caller as read. Reopening an already-read thread changes
// nothing.
func (s *MessageService) OpenThread(ctx context.Context, userID uuid.UUID, threadID string) ([]models.Message, error) {
	msgs, err := s.messages.ListThread(ctx, threadID)
	if err != nil {
		return nil, err
	}
	if len(msgs) == 0 {
		return nil, apperrors.ErrNotFound
	}
	if msgs[0].SenderID != userID && msgs[0].ReceiverID != userID {
		return nil, apperrors.ErrNotFound
	}

	now := time.Now()
	if err := s.messages.MarkThreadRead(ctx, threadID, userID, now); err != nil {
		return nil, err
	}
	for i := range msgs {
		if msgs[i].ReceiverID == userID && !msgs[i].IsRead {
			msgs[i].IsRead = true
			msgs[i].ReadAt = &now
		}
	}
	return msgs, nil
}

// UnreadCount counts unread messages addressed to the user across all
// threads. Dashboards poll this.
func (s *MessageService) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.messages.CountUnread(ctx, userID)
}

// Contacts lists the users a sender may start a conversation with: admins
// see everyone active, others see admins.
func (s *MessageService) Contacts(ctx context.Context, senderRole string) ([]models.User, error) {
	if senderRole == models.RoleAdmin {
		farmers, err := s.users.ListByRole(ctx, models.RoleFarmer)
		if err != nil {
			return nil, err
		}
		buyers, err := s.users.ListByRole(ctx, models.RoleBuyer)
		if err != nil {
			return nil, err
		}
		return append(farmers, buyers...), nil
	}
	return s.users.ListByRole(ctx, models.RoleAdmin)
}
