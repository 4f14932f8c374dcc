package models

import (
	"time"

	"github.com/google/uuid"
)

type ServicePrice struct {
	ID    uint   `json:"id" gorm:"primaryKey"`
	Title string `json:"title" gorm:"not null;uniqueIndex"`
	Price int64  `json:"price" gorm:"not null"`
}

func (ServicePrice) TableName() string { return "service_prices" }

type ExtensionPrice struct {
	ID      uint  `json:"id" gorm:"primaryKey"`
	Minutes int   `json:"minutes" gorm:"not null;uniqueIndex"`
	Price   int64 `json:"price" gorm:"not null"`
}

func (ExtensionPrice) TableName() string { return "extension_prices" }

const NotificationNewOrder = "new_order"

type AdminNotification struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Type      string    `json:"type" gorm:"not null"`
	OrderID   string    `json:"order_id" gorm:"size:11;not null;index"`
	Title     string    `json:"title" gorm:"not null"`
	Read      bool      `json:"read" gorm:"not null;default:false"`
	CreatedAt time.Time `json:"created_at"`
}

func (AdminNotification) TableName() string { return "admin_notifications" }
