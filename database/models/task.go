package models

import "time"

const (
	StatusPending   = "Pending"
	StatusCompleted = "Completed"
)

// Task is a unit of work owned by a client and optionally claimed by a runner.
type Task struct {
	ID            uint       `json:"id" gorm:"primaryKey;autoIncrement"`
	Title         string     `json:"title" gorm:"type:varchar(200);not null"`
	Description   string     `json:"description" gorm:"type:text"`
	ScheduledTime time.Time  `json:"scheduledTime"`
	Status        string     `json:"status" gorm:"type:varchar(50);not null;default:'Pending'"`
	ClientID      uint       `json:"clientId" gorm:"not null;index"`
	Client        *User      `json:"-" gorm:"foreignKey:ClientID;constraint:OnDelete:RESTRICT"`
	RunnerID      *uint      `json:"runnerId" gorm:"index"`
	Runner        *User      `json:"-" gorm:"foreignKey:RunnerID;constraint:OnDelete:SET NULL"`
	TaskItems     []TaskItem `json:"-" gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE"`
	Version       uint       `json:"version" gorm:"not null;default:1"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// Claimed reports whether a runner is assigned.
func (t *Task) Claimed() bool {
	return t.RunnerID != nil
}

// TaskItem is a sub-unit of work within a Task.
type TaskItem struct {
	ID          uint        `json:"id" gorm:"primaryKey;autoIncrement"`
	TaskID      uint        `json:"taskId" gorm:"not null;index"`
	Description string      `json:"description" gorm:"type:text;not null"`
	Status      string      `json:"status" gorm:"type:varchar(50);not null;default:'Pending'"`
	IsCompleted bool        `json:"isCompleted" gorm:"not null;default:false"`
	StatusLogs  []StatusLog `json:"-" gorm:"foreignKey:TaskItemID;constraint:OnDelete:CASCADE"`
	Version     uint        `json:"version" gorm:"not null;default:1"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// StatusLog is an audit trail entry written against a TaskItem.
type StatusLog struct {
	ID         uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	TaskItemID uint      `json:"taskItemId" gorm:"not null;index"`
	RunnerID   *uint     `json:"runnerId" gorm:"index"`
	Runner     *User     `json:"-" gorm:"foreignKey:RunnerID;constraint:OnDelete:SET NULL"`
	Status     string    `json:"status" gorm:"type:varchar(50)"`
	Comment    string    `json:"comment" gorm:"type:text"`
	Timestamp  time.Time `json:"timestamp" gorm:"not null;index"`
	Version    uint      `json:"version" gorm:"not null;default:1"`
}
