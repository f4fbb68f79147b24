package dbcore

import (
	"errors"
	"fmt"

	"github.com/redasGoluenko/Errando/common"
	"gorm.io/gorm"
)

// CompareAndSwap applies updates to the row of model with the given id only if
// its version column still equals version, bumping the version by one.
// A row that exists with another version yields common.ErrStaleVersion,
// a missing row common.ErrNotFound.
func CompareAndSwap(db *gorm.DB, model interface{}, id, version uint, updates map[string]interface{}) error {
	values := make(map[string]interface{}, len(updates)+1)
	for k, v := range updates {
		values[k] = v
	}
	values["version"] = gorm.Expr("version + ?", 1)

	result := db.Model(model).Where("id = ? AND version = ?", id, version).Updates(values)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := db.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("%w: row %d", common.ErrNotFound, id)
	}
	return fmt.Errorf("%w: row %d changed since version %d", common.ErrStaleVersion, id, version)
}

// RetryOnStale runs apply, and once more if it reports a stale version.
// apply must re-read the row and re-check authorization on every call.
func RetryOnStale(apply func() error) error {
	err := apply()
	if errors.Is(err, common.ErrStaleVersion) {
		err = apply()
	}
	return err
}
