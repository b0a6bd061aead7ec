package data

import (
	"fmt"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/factcheck-ai/factcheck/src/api/types"
	"github.com/factcheck-ai/factcheck/src/factcheck/credibility"
)

type sourceEntry struct {
	Domain string  `mapstructure:"domain"`
	Score  float64 `mapstructure:"score"`
}

// SeedSources inserts credibility sources missing from the database, reading
// the YAML config first and the built-in table when the file is unavailable.
// Existing rows keep their scores so admin tuning survives restarts.
func SeedSources(db *gorm.DB, path string, log *zap.Logger) error {
	entries, err := readSourceConfig(path)
	if err != nil {
		log.Warn("sources config unavailable, seeding built-in table",
			zap.String("path", path), zap.Error(err))
		for domain, score := range credibility.DefaultSources() {
			entries = append(entries, sourceEntry{Domain: domain, Score: score})
		}
	}
	for _, e := range entries {
		if e.Domain == "" || e.Score <= 0 {
			continue
		}
		src := types.Source{Domain: e.Domain, Score: e.Score, Active: true}
		if err := db.Where(types.Source{Domain: e.Domain}).FirstOrCreate(&src).Error; err != nil {
			return fmt.Errorf("seed source %s: %w", e.Domain, err)
		}
	}
	return nil
}

// ReseedSources reapplies the YAML config over existing rows, overwriting
// scores and reactivating entries. Rows absent from the file are left alone.
func ReseedSources(db *gorm.DB, path string, log *zap.Logger) error {
	entries, err := readSourceConfig(path)
	if err != nil {
		return fmt.Errorf("reseed sources: %w", err)
	}
	applied := 0
	for _, e := range entries {
		if e.Domain == "" || e.Score <= 0 {
			continue
		}
		src := types.Source{Domain: e.Domain, Score: e.Score, Active: true}
		err := db.Where(types.Source{Domain: e.Domain}).
			Assign(map[string]interface{}{"score": e.Score, "active": true}).
			FirstOrCreate(&src).Error
		if err != nil {
			return fmt.Errorf("reseed source %s: %w", e.Domain, err)
		}
		applied++
	}
	log.Info("sources reseeded", zap.String("path", path), zap.Int("entries", applied))
	return nil
}

func readSourceConfig(path string) ([]sourceEntry, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}
	var entries []sourceEntry
	if err := v.UnmarshalKey("sources", &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// SourceScores returns the active credibility table keyed by domain.
func SourceScores(db *gorm.DB) (map[string]float64, error) {
	var sources []types.Source
	if err := db.Where("active = ?", true).Find(&sources).Error; err != nil {
		return nil, err
	}
	scores := make(map[string]float64, len(sources))
	for _, s := range sources {
		scores[s.Domain] = s.Score
	}
	return scores, nil
}
