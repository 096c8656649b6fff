package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Order lifecycle states. Approved and rejected are terminal except for the
// approved -> completed fulfillment marker.
const (
	OrderPending   = "pending"
	OrderApproved  = "approved"
	OrderRejected  = "rejected"
	OrderCompleted = "completed"
)

type Order struct {
	ID          uuid.UUID   `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderNumber string      `gorm:"uniqueIndex;not null" json:"order_number"`
	BuyerID     uuid.UUID   `gorm:"type:uuid;not null;index" json:"buyer_id"`
	Status      string      `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	TotalCents  int64       `gorm:"not null" json:"total_cents"`
	BuyerNote   string      `json:"buyer_note,omitempty"`
	AdminNote   string      `json:"admin_note,omitempty"`
	CreatedAt   time.Time   `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt   time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
	ApprovedAt  *time.Time  `json:"approved_at,omitempty"`
	RejectedAt  *time.Time  `json:"rejected_at,omitempty"`
	CompletedAt *time.Time  `json:"completed_at,omitempty"`
	Items       []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
}

// OrderItem freezes the product name, unit and price at confirmation time.
// Later product edits do not retroactively alter pending orders.
type OrderItem struct {
	ID             uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID        uuid.UUID `gorm:"type:uuid;not null;index" json:"order_id"`
	ProductID      uuid.UUID `gorm:"type:uuid;not null" json:"product_id"`
	FarmerID       uuid.UUID `gorm:"type:uuid;not null;index" json:"farmer_id"`
	ProductName    string    `gorm:"not null" json:"product_name"`
	Unit           string    `gorm:"type:varchar(20);not null" json:"unit"`
	UnitPriceCents int64     `gorm:"not null" json:"unit_price_cents"`
	Quantity       int       `gorm:"not null" json:"quantity"`
	SubtotalCents  int64     `gorm:"not null" json:"subtotal_cents"`
}

// NewOrderNumber builds a unique, human-scannable order number.
func NewOrderNumber(now time.Time, id uuid.UUID) string {
	return fmt.Sprintf("ORD-%s-%s", now.UTC().Format("20060102150405"), id.String()[:8])
}

type ConfirmOrderRequest struct {
	BuyerNote string `json:"buyer_note"`
}

type RejectOrderRequest struct {
	AdminNote string `json:"admin_note"`
}
