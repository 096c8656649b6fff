package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Message is one entry in a two-participant conversation. Threads are a
// derived view: ThreadID is computed from the unordered participant pair, so
// grouping by it reconstructs the conversation without a stored Thread row.
type Message struct {
	ID              uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	SenderID        uuid.UUID  `gorm:"type:uuid;not null;index" json:"sender_id"`
	ReceiverID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"receiver_id"`
	Subject         string     `gorm:"type:varchar(200);not null" json:"subject"`
	Body            string     `gorm:"type:text;not null" json:"body"`
	ThreadID        string     `gorm:"type:varchar(100);not null;index" json:"thread_id"`
	ParentMessageID *uuid.UUID `gorm:"type:uuid" json:"parent_message_id,omitempty"`
	IsRead          bool       `gorm:"not null;default:false;index" json:"is_read"`
	ReadAt          *time.Time `json:"read_at,omitempty"`
	CreatedAt       time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
}

// ThreadIDFor derives the deterministic thread id for two users. The lower
// uuid always comes first so both directions map to the same thread.
func ThreadIDFor(a, b uuid.UUID) string {
	lo, hi := a.String(), b.String()
	if lo > hi {
		lo, hi = hi, lo
	}
	return fmt.Sprintf("thread-%s-%s", lo, hi)
}

type SendMessageRequest struct {
	ReceiverID      uuid.UUID  `json:"receiver_id" binding:"required"`
	Subject         string     `json:"subject"`
	Body            string     `json:"body" binding:"required"`
	ParentMessageID *uuid.UUID `json:"parent_message_id"`
}

// ThreadSummary is one conversation in a user's inbox listing.
type ThreadSummary struct {
	ThreadID        string    `json:"thread_id"`
	OtherUserID     uuid.UUID `json:"other_user_id"`
	OtherUserName   string    `json:"other_user_name"`
	OtherUserRole   string    `json:"other_user_role"`
	LastMessage     Message   `json:"last_message"`
	UnreadCount     int       `json:"unread_count"`
	LastMessageTime time.Time `json:"last_message_time"`
}
