package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleUser       = "user"
	RoleConsultant = "consultant"
	RoleAdmin      = "admin"
)

// User is the directory entry for both clients and consultants. Accounts are
// managed elsewhere; this service only reads them.
type User struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Username    string    `json:"username" gorm:"not null"`
	Email       string    `json:"email" gorm:"not null;uniqueIndex"`
	PhoneNumber string    `json:"phone_number,omitempty"`
	UserRole    string    `json:"user_role" gorm:"not null;default:user"`
	Expertise   string    `json:"expertise,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (User) TableName() string { return "users" }
