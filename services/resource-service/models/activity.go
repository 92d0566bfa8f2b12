package models

import (
	"github.com/RigelNana/edumarket/pkg/repository"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Activity is one line of a dashboard's recent activity feed.
type Activity struct {
	repository.Base
	Owner         string         `gorm:"type:varchar(255);not null;index" json:"owner"`
	Actor         string         `gorm:"type:varchar(255);not null" json:"actor"`
	ResourceID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"resource_id"`
	ResourceTitle string         `gorm:"type:varchar(255)" json:"resource_title"`
	Kind          string         `gorm:"type:varchar(32);not null" json:"kind"`
	Metadata      datatypes.JSON `json:"metadata,omitempty"`
}

func (Activity) TableName() string {
	return "activities"
}

// 活动类型常量
const (
	ActivityUploaded   = "uploaded"
	ActivityDownloaded = "downloaded"
	ActivityDeleted    = "deleted"
	ActivityModerated  = "moderated"
)
