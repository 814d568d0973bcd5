package models

import "time"

const UserTable = "fs_users"

type User struct {
	ID           string     `gorm:"type:uuid;primaryKey" json:"id"`
	OrgID        *string    `gorm:"type:uuid;index" json:"orgId,omitempty"`
	Username     string     `gorm:"size:120;uniqueIndex;not null" json:"username"`
	DisplayName  string     `gorm:"size:200" json:"displayName"`
	PasswordHash string     `gorm:"size:120" json:"-"`
	IsAdmin      bool       `gorm:"not null;default:false" json:"isAdmin"`
	IsTechnician bool       `gorm:"not null;default:false" json:"isTechnician"`
	Active       bool       `gorm:"not null;default:true" json:"active"`
	LastLoginAt  *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

func (User) TableName() string { return UserTable }
