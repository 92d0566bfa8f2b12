package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// 审核状态
const (
	StatusApproved = "approved"
	StatusPending  = "pending"
	StatusRejected = "rejected"
)

type Resource struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title       string    `gorm:"not null" json:"title"`
	Description *string   `gorm:"type:text" json:"description"`
	Category    Category  `gorm:"type:varchar(32);not null;index" json:"category"`
	Subject     string    `gorm:"not null" json:"subject"`
	FileName    string    `gorm:"not null" json:"file_name"`
	FileSize    string    `gorm:"type:varchar(32)" json:"file_size"`
	FileType    string    `gorm:"type:varchar(16)" json:"file_type"`
	UploadedBy  string    `gorm:"not null;index" json:"uploaded_by"`
	UploadDate  time.Time `gorm:"not null;index" json:"upload_date"`
	Downloads   int64     `gorm:"not null;default:0" json:"downloads"`
	Views       int64     `gorm:"not null;default:0" json:"views"`
	Status      string    `gorm:"type:varchar(16);not null;default:'approved';index" json:"status"`
	StorageKey  string    `json:"-"`
	UpdatedAt   time.Time `json:"-"`
}

func (Resource) TableName() string {
	return "resources"
}

func (r *Resource) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.UploadDate.IsZero() {
		r.UploadDate = time.Now().UTC()
	}
	if r.Status == "" {
		r.Status = StatusApproved
	}
	return nil
}

// StatusColor covers both resource moderation and account statuses.
func StatusColor(status string) string {
	switch status {
	case "approved", "active":
		return "bg-green-100 text-green-800"
	case "pending":
		return "bg-yellow-100 text-yellow-800"
	case "rejected", "suspended":
		return "bg-red-100 text-red-800"
	default:
		return "bg-gray-100 text-gray-800"
	}
}

func ValidStatus(status string) bool {
	return status == StatusApproved || status == StatusPending || status == StatusRejected
}
