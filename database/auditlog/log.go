package auditlog

import (
	"log"
	"time"

	"github.com/redasGoluenko/Errando/database/dbcore"
	"github.com/redasGoluenko/Errando/database/models"
)

// Log records a mutating action. userID is 0 for system events.
// Failures are logged and otherwise ignored.
func Log(ip string, userID uint, message, msgType string) {
	db := dbcore.GetDBInstance()
	logEntry := &models.Log{
		IP:      ip,
		UserID:  userID,
		Message: message,
		MsgType: msgType,
		Time:    time.Now().UTC(),
	}
	if err := db.Create(logEntry).Error; err != nil {
		log.Println("Failed to write audit log:", err)
	}
}

func EventLog(eventType, message string) {
	Log("", 0, message, eventType)
}

// List returns one page of entries, newest first, and the total count.
func List(page, limit int) ([]models.Log, int64, error) {
	db := dbcore.GetDBInstance()
	var total int64
	if err := db.Model(&models.Log{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	logs := []models.Log{}
	offset := (page - 1) * limit
	if err := db.Order("time desc").Order("id desc").Limit(limit).Offset(offset).Find(&logs).Error; err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}

// Delete logs older than 30 days
func RemoveOldLogs() {
	db := dbcore.GetDBInstance()
	threshold := time.Now().UTC().AddDate(0, 0, -30)
	if err := db.Where("time < ?", threshold).Delete(&models.Log{}).Error; err != nil {
		log.Println("Failed to remove old logs:", err)
	}
}
