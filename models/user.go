package models

import (
	"time"

	"github.com/google/uuid"
)

// Role values shared by orders, products and messaging.
const (
	RoleAdmin  = "admin"
	RoleFarmer = "farmer"
	RoleBuyer  = "buyer"
)

type User struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	Role      string    `gorm:"type:varchar(20);not null;index" json:"role"`
	FullName  string    `gorm:"not null" json:"full_name"`
	IsActive  bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
