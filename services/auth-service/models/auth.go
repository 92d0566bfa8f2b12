package models

import (
	"github.com/RigelNana/edumarket/pkg/repository"
	"github.com/google/uuid"
)

// Auth 仅存储与认证相关的敏感数据，用户资料在 user-service
type Auth struct {
	repository.Base
	UserID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	Password string    `gorm:"not null"` // bcrypt hash
}

func (Auth) TableName() string {
	return "credentials"
}
