package models

import "github.com/RigelNana/edumarket/pkg/repository"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"

	StatusActive    = "active"
	StatusSuspended = "suspended"
)

type User struct {
	repository.Base
	Name   string `gorm:"type:varchar(255)" json:"name"`
	Email  string `gorm:"uniqueIndex;not null" json:"email"`
	Role   string `gorm:"type:varchar(16);not null;default:'user'" json:"role"`
	Status string `gorm:"type:varchar(16);not null;default:'active'" json:"status"`
}

func (User) TableName() string {
	return "users"
}

func ValidStatus(status string) bool {
	return status == StatusActive || status == StatusSuspended
}
