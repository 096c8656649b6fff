package models

import (
	"time"

	"github.com/google/uuid"
)

// ActivityLogEntry is an immutable audit record. Rows are only ever inserted.
type ActivityLogEntry struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	Role        string     `gorm:"type:varchar(20);not null" json:"role"`
	Action      string     `gorm:"type:varchar(100);not null;index" json:"action"`
	EntityType  string     `gorm:"type:varchar(50)" json:"entity_type,omitempty"`
	EntityID    *uuid.UUID `gorm:"type:uuid" json:"entity_id,omitempty"`
	Description string     `gorm:"type:text;not null" json:"description"`
	CreatedAt   time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
}

// DashboardStats is the admin overview projection.
type DashboardStats struct {
	TotalFarmers      int64 `json:"total_farmers"`
	ActiveFarmers     int64 `json:"active_farmers"`
	TotalBuyers       int64 `json:"total_buyers"`
	ActiveBuyers      int64 `json:"active_buyers"`
	TotalProducts     int64 `json:"total_products"`
	ApprovedProducts  int64 `json:"approved_products"`
	PendingProducts   int64 `json:"pending_products"`
	TotalOrders       int64 `json:"total_orders"`
	PendingOrders     int64 `json:"pending_orders"`
	ApprovedOrders    int64 `json:"approved_orders"`
	RejectedOrders    int64 `json:"rejected_orders"`
	TotalRevenueCents int64 `json:"total_revenue_cents"`
}
