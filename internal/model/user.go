package model

import (
	"time"
)

type UserRole string

const (
	Kid    UserRole = "kid"
	Parent UserRole = "parent"
	Admin  UserRole = "admin"
)

// swagger:model User
type User struct {
	BaseModel
	Name           string    `gorm:"size:100;not null" json:"name"`
	Email          string    `gorm:"size:100;unique" json:"email"`
	Password       string    `gorm:"size:100;not null" json:"-"` // bcrypt hash of the password (parents) or PIN (kids)
	Role           UserRole  `gorm:"type:enum('kid','parent','admin');default:'kid'" json:"role"`
	ParentID       *uint     `gorm:"index;type:bigint unsigned" json:"parentId,omitempty"`
	AllTimeCorrect int64     `gorm:"default:0" json:"allTimeCorrect"`
	Avatar         string    `gorm:"size:255" json:"avatar"`
	Disabled       bool      `gorm:"default:false" json:"disabled"`
	LastLogin      time.Time `gorm:"default:CURRENT_TIMESTAMP(3)" json:"lastLogin"`
}

func (User) TableName() string {
	return "users"
}
