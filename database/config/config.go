package config

import (
	"fmt"
	"strings"

	"github.com/redasGoluenko/Errando/common"
	"github.com/redasGoluenko/Errando/database/dbcore"
	"github.com/redasGoluenko/Errando/database/models"
)

// Patch is a partial settings update. Nil fields are left untouched.
type Patch struct {
	Sitename          *string `json:"sitename"`
	AllowRegistration *bool   `json:"allowRegistration"`
	AllowCors         *bool   `json:"allowCors"`
}

func defaults() models.Config {
	return models.Config{
		ID:                1,
		Sitename:          "Errando",
		AllowRegistration: true,
	}
}

// Get returns the settings row, creating it with defaults on first use.
func Get() (models.Config, error) {
	db := dbcore.GetDBInstance()
	var cfg models.Config
	if err := db.Where("id = ?", 1).Attrs(defaults()).FirstOrCreate(&cfg).Error; err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Update applies p and returns the new settings. Listeners are told which
// settings changed before Update returns.
func Update(p Patch) (models.Config, error) {
	old, err := Get()
	if err != nil {
		return old, err
	}
	cfg := old
	if p.Sitename != nil {
		name := strings.TrimSpace(*p.Sitename)
		if name == "" || len(name) > 100 {
			return old, fmt.Errorf("%w: sitename must be between 1 and 100 characters", common.ErrValidation)
		}
		cfg.Sitename = name
	}
	if p.AllowRegistration != nil {
		cfg.AllowRegistration = *p.AllowRegistration
	}
	if p.AllowCors != nil {
		cfg.AllowCors = *p.AllowCors
	}
	if err := Save(cfg); err != nil {
		return old, err
	}
	saved, err := Get()
	if err != nil {
		return old, err
	}
	publish(old, saved)
	return saved, nil
}

// Save overwrites every setting, zero values included.
func Save(cst models.Config) error {
	if _, err := Get(); err != nil {
		return err
	}
	db := dbcore.GetDBInstance()
	// Only one record
	cst.ID = 1
	return db.Model(&models.Config{ID: 1}).
		Select("sitename", "allow_registration", "allow_cors").
		Updates(&cst).Error
}
