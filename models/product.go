package models

import (
	"time"

	"github.com/google/uuid"
)

// Product approval states.
const (
	ProductPending  = "pending"
	ProductApproved = "approved"
	ProductRejected = "rejected"
)

// Product is a farmer listing. Quantity is the authoritative stock count and
// may only be mutated through the repository's conditional decrement (order
// approval) and its compensating increment.
type Product struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	FarmerID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"farmer_id"`
	Name        string     `gorm:"not null" json:"name"`
	Description string     `json:"description"`
	PriceCents  int64      `gorm:"not null" json:"price_cents"`
	Unit        string     `gorm:"type:varchar(20);not null" json:"unit"`
	Quantity    int        `gorm:"not null;default:0" json:"quantity"`
	ProductType string     `gorm:"type:varchar(50)" json:"product_type"`
	Status      string     `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	IsActive    bool       `gorm:"not null;default:true" json:"is_active"`
	ViewCount   int        `gorm:"not null;default:0" json:"view_count"`
	CreatedAt   time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	ApprovedAt  *time.Time `json:"approved_at,omitempty"`
	RejectedAt  *time.Time `json:"rejected_at,omitempty"`
}

// SubmitProductRequest is a farmer's new listing submission.
type SubmitProductRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	PriceCents  int64  `json:"price_cents" binding:"required,gte=0"`
	Unit        string `json:"unit" binding:"required"`
	Quantity    int    `json:"quantity" binding:"gte=0"`
	ProductType string `json:"product_type"`
}

// ListProductsQuery captures the public browse filters.
type ListProductsQuery struct {
	Search            string `form:"search"`
	ProductType       string `form:"product_type"`
	MinPriceCents     *int64 `form:"min_price_cents"`
	MaxPriceCents     *int64 `form:"max_price_cents"`
	SortBy            string `form:"sort_by"` // created_at, price_asc, price_desc, views
	IncludeOutOfStock bool   `form:"include_out_of_stock"`
	Page              int    `form:"page,default=1"`
	Limit             int    `form:"limit,default=20"`
}
