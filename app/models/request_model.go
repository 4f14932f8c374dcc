package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	RequestPending   = "pending"
	RequestOngoing   = "ongoing"
	RequestCompleted = "completed"
	RequestCancelled = "cancelled"
)

// Request is the durable booking. Chat requests carry a time window; the
// Use* fields stage a continuation until its payment is confirmed.
type Request struct {
	ID            uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	OrderID       string     `json:"orderId" gorm:"size:11;not null;uniqueIndex"`
	UserID        uuid.UUID  `json:"userId" gorm:"type:uuid;not null;index"`
	Type          string     `json:"type" gorm:"not null;index"`
	NameOfService string     `json:"nameofservice" gorm:"column:nameofservice;not null"`
	Status        string     `json:"stattusof" gorm:"column:stattusof;not null;index"`
	Expertise     string     `json:"expertise"`
	Episodes      int        `json:"episodes"`
	ShowType      string     `json:"showtype" gorm:"column:showtype"`
	Budget        string     `json:"budget"`
	Description   string     `json:"description"`
	Files         []string   `json:"files" gorm:"serializer:json;type:text"`
	RequestedTime *time.Time `json:"time,omitempty" gorm:"column:requested_time"`
	BookTime      *time.Time `json:"booktime,omitempty" gorm:"column:booktime"`
	BookDay       string     `json:"bookday,omitempty" gorm:"column:bookday"`
	EndTime       *time.Time `json:"endTime,omitempty" gorm:"column:end_time;index"`
	Continued     bool       `json:"continued" gorm:"not null;default:false"`
	ContinueCount int        `json:"continueCount" gorm:"column:continue_count;not null;default:0"`
	UseBookTimed  *time.Time `json:"usebooktimed,omitempty" gorm:"column:usebooktimed"`
	UseEndTimed   *time.Time `json:"useendTimed,omitempty" gorm:"column:useendtimed"`
	UseBookDay    string     `json:"usebookday,omitempty" gorm:"column:usebookday"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

func (Request) TableName() string { return "requests" }
