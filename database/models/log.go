package models

import "time"

// Log is an audit log entry for a mutating action.
type Log struct {
	ID      uint      `json:"id,omitempty" gorm:"primaryKey;autoIncrement"`
	IP      string    `json:"ip" gorm:"type:varchar(45);"` // IPv4 or IPv6
	UserID  uint      `json:"userId" gorm:"index"`
	Message string    `json:"message" gorm:"type:text;not null"`
	MsgType string    `json:"msgType" gorm:"type:varchar(20);not null"`
	Time    time.Time `json:"time" gorm:"autoCreateTime;not null;index"`
}
