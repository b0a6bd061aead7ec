package data

import (
	"sync"

	"gorm.io/gorm"

	"github.com/factcheck-ai/factcheck/src/api/types"
)

var (
	settingsCache map[string]string
	settingsMu    sync.RWMutex
)

// LoadSettings loads all active settings from the database into cache
func LoadSettings(db *gorm.DB) error {
	var settings []types.Setting
	if err := db.Where("active = ?", 1).Find(&settings).Error; err != nil {
		return err
	}

	settingsMu.Lock()
	defer settingsMu.Unlock()

	settingsCache = make(map[string]string)
	for _, s := range settings {
		settingsCache[s.Name] = s.Value
	}

	return nil
}

// GetSetting retrieves a setting value from cache (call LoadSettings first)
func GetSetting(name string) string {
	settingsMu.RLock()
	defer settingsMu.RUnlock()
	return settingsCache[name]
}

// SetSetting writes a setting through to the database and cache.
func SetSetting(db *gorm.DB, name, value string) error {
	var s types.Setting
	err := db.Where("name = ?", name).First(&s).Error
	switch {
	case err == gorm.ErrRecordNotFound:
		s = types.Setting{Name: name, Value: value, Active: 1}
		err = db.Create(&s).Error
	case err == nil:
		err = db.Model(&s).Updates(map[string]interface{}{"value": value, "active": 1}).Error
	}
	if err != nil {
		return err
	}

	settingsMu.Lock()
	if settingsCache == nil {
		settingsCache = make(map[string]string)
	}
	settingsCache[name] = value
	settingsMu.Unlock()
	return nil
}
