package accounts

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/redasGoluenko/Errando/common"
	"github.com/redasGoluenko/Errando/database/dbcore"
	"github.com/redasGoluenko/Errando/database/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrSessionExpired is returned for a session past its expiry.
var ErrSessionExpired = errors.New("session expired")

// sessionCache keeps recently seen sessions so that every request does not
// hit the sessions table.
var sessionCache = cache.New(5*time.Minute, 10*time.Minute)

// GetAllSessions 获取所有会话
func GetAllSessions() (sessions []models.Session, err error) {
	return listSessions(dbcore.GetDBInstance())
}

// GetUserSessions returns the sessions of userID, newest first.
func GetUserSessions(userID uint) ([]models.Session, error) {
	return listSessions(dbcore.GetDBInstance().Where("user_id = ?", userID))
}

func listSessions(db *gorm.DB) ([]models.Session, error) {
	sessions := []models.Session{}
	if err := db.Order("created_at desc").Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

// CreateSession records a new session for userID and returns its id, which
// doubles as the token id.
func CreateSession(userID uint, expires time.Time, userAgent, ip string) (string, error) {
	db := dbcore.GetDBInstance()
	sessionRecord := models.Session{
		UUID:      uuid.New().String(),
		UserID:    userID,
		UserAgent: userAgent,
		IP:        ip,
		Expires:   expires.UTC(),
	}
	if err := db.Omit(clause.Associations).Create(&sessionRecord).Error; err != nil {
		return "", dbcore.Translate(err, "session")
	}
	sessionCache.Set(sessionRecord.UUID, sessionRecord, cache.DefaultExpiration)
	return sessionRecord.UUID, nil
}

// GetSession returns a live session by id. Expired sessions are deleted.
func GetSession(session string) (models.Session, error) {
	var sessionRecord models.Session
	if cached, ok := sessionCache.Get(session); ok {
		sessionRecord = cached.(models.Session)
	} else {
		db := dbcore.GetDBInstance()
		err := db.Where("uuid = ?", session).First(&sessionRecord).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Session{}, fmt.Errorf("%w: session", common.ErrNotFound)
		}
		if err != nil {
			return models.Session{}, err
		}
		sessionCache.Set(session, sessionRecord, cache.DefaultExpiration)
	}

	if time.Now().After(sessionRecord.Expires) {
		// 会话已过期，删除它
		_ = DeleteSession(session)
		return models.Session{}, ErrSessionExpired
	}
	return sessionRecord, nil
}

// DeleteSession 删除指定会话
//
// A session that does not exist is common.ErrNotFound.
func DeleteSession(session string) error {
	sessionCache.Delete(session)
	result := dbcore.GetDBInstance().Where("uuid = ?", session).Delete(&models.Session{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: session", common.ErrNotFound)
	}
	return nil
}

// DeleteUserSessions revokes every session belonging to userID.
func DeleteUserSessions(userID uint) error {
	db := dbcore.GetDBInstance()
	if err := db.Where("user_id = ?", userID).Delete(&models.Session{}).Error; err != nil {
		return err
	}
	for id, item := range sessionCache.Items() {
		if s, ok := item.Object.(models.Session); ok && s.UserID == userID {
			sessionCache.Delete(id)
		}
	}
	return nil
}

// DeleteAllSessions revokes every session.
func DeleteAllSessions() error {
	db := dbcore.GetDBInstance()
	sessionCache.Flush()
	return db.Where("1 = 1").Delete(&models.Session{}).Error
}

// DeleteSessionsExcept revokes every session but keep and reports how many
// were removed.
func DeleteSessionsExcept(keep string) (int64, error) {
	result := dbcore.GetDBInstance().Where("uuid <> ?", keep).Delete(&models.Session{})
	if result.Error != nil {
		return 0, result.Error
	}
	for id := range sessionCache.Items() {
		if id != keep {
			sessionCache.Delete(id)
		}
	}
	return result.RowsAffected, nil
}

// DeleteExpiredSessions removes sessions past their expiry.
func DeleteExpiredSessions(now time.Time) (int64, error) {
	result := dbcore.GetDBInstance().Where("expires < ?", now.UTC()).Delete(&models.Session{})
	return result.RowsAffected, result.Error
}
