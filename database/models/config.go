package models

import "time"

// Config stores site-wide settings. There is only one row, ID 1.
type Config struct {
	ID                uint      `json:"id,omitempty" gorm:"primaryKey;autoIncrement"`
	Sitename          string    `json:"sitename" gorm:"type:varchar(100);not null;default:'Errando'"`
	AllowRegistration bool      `json:"allowRegistration" gorm:"not null;default:true"`
	AllowCors         bool      `json:"allowCors" gorm:"column:allow_cors;not null;default:false"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}
