package models

import (
	"time"
)

// User represents an account. Role decides what the account may see and do.
type User struct {
	ID           uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	Username     string    `json:"username" gorm:"type:varchar(100);uniqueIndex;not null"`
	Email        string    `json:"email" gorm:"type:varchar(255);not null"`
	PasswordHash string    `json:"-" gorm:"type:varchar(255);not null"` // bcrypt
	Role         Role      `json:"role" gorm:"type:varchar(20);not null"`
	Version      uint      `json:"version" gorm:"not null;default:1"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Session tracks an issued token by its jti so it can be revoked before expiry.
type Session struct {
	UUID      string    `json:"uuid" gorm:"type:varchar(36);primaryKey"`
	UserID    uint      `json:"userId" gorm:"not null;index"`
	User      User      `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	UserAgent string    `json:"userAgent" gorm:"type:text"`
	IP        string    `json:"ip" gorm:"type:varchar(45)"`
	Expires   time.Time `json:"expires" gorm:"not null;index"`
	CreatedAt time.Time `json:"createdAt"`
}
