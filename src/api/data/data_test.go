package data

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/factcheck-ai/factcheck/src/api/types"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&types.Source{}, &types.Setting{}))
	return db
}

func TestSettingsRoundTrip(t *testing.T) {
	db := testDB(t)

	require.NoError(t, LoadSettings(db))
	assert.Empty(t, GetSetting("ai_provider"))

	require.NoError(t, SetSetting(db, "ai_provider", "gemini"))
	assert.Equal(t, "gemini", GetSetting("ai_provider"), "writes update the cache immediately")

	require.NoError(t, SetSetting(db, "ai_provider", "openai"))
	assert.Equal(t, "openai", GetSetting("ai_provider"))

	var rows []types.Setting
	require.NoError(t, db.Where("name = ?", "ai_provider").Find(&rows).Error)
	require.Len(t, rows, 1, "updates reuse the existing row")
	assert.Equal(t, "openai", rows[0].Value)

	require.NoError(t, LoadSettings(db))
	assert.Equal(t, "openai", GetSetting("ai_provider"), "reload picks the stored value up")
}

func TestSeedSourcesFromConfig(t *testing.T) {
	db := testDB(t)

	path := filepath.Join(t.TempDir(), "sources.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`sources:
  - domain: reuters.com
    score: 0.95
  - domain: example-news.com
    score: 0.7
  - domain: ""
    score: 0.5
`), 0o644))

	require.NoError(t, SeedSources(db, path, zap.NewNop()))

	var rows []types.Source
	require.NoError(t, db.Order("domain ASC").Find(&rows).Error)
	require.Len(t, rows, 2, "entries without a domain are skipped")
	assert.Equal(t, "example-news.com", rows[0].Domain)
	assert.InDelta(t, 0.7, rows[0].Score, 1e-9)
	assert.True(t, rows[0].Active)
}

func TestSeedSourcesKeepsExistingScores(t *testing.T) {
	db := testDB(t)
	require.NoError(t, db.Create(&types.Source{Domain: "reuters.com", Score: 0.5, Active: true}).Error)

	path := filepath.Join(t.TempDir(), "sources.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`sources:
  - domain: reuters.com
    score: 0.95
`), 0o644))

	require.NoError(t, SeedSources(db, path, zap.NewNop()))

	var row types.Source
	require.NoError(t, db.First(&row, "domain = ?", "reuters.com").Error)
	assert.InDelta(t, 0.5, row.Score, 1e-9, "admin tuning survives reseeding")
}

func TestReseedSourcesOverwritesScores(t *testing.T) {
	db := testDB(t)
	require.NoError(t, db.Create(&types.Source{Domain: "reuters.com", Score: 0.5, Active: true}).Error)
	require.NoError(t, db.Model(&types.Source{}).Where("domain = ?", "reuters.com").UpdateColumn("active", false).Error)
	require.NoError(t, db.Create(&types.Source{Domain: "example.org", Score: 0.4, Active: true}).Error)

	path := filepath.Join(t.TempDir(), "sources.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`sources:
  - domain: reuters.com
    score: 0.95
  - domain: ap.org
    score: 0.95
`), 0o644))

	require.NoError(t, ReseedSources(db, path, zap.NewNop()))

	var reuters types.Source
	require.NoError(t, db.First(&reuters, "domain = ?", "reuters.com").Error)
	assert.InDelta(t, 0.95, reuters.Score, 1e-9)
	assert.True(t, reuters.Active)

	var ap types.Source
	require.NoError(t, db.First(&ap, "domain = ?", "ap.org").Error)
	assert.InDelta(t, 0.95, ap.Score, 1e-9)

	var untouched types.Source
	require.NoError(t, db.First(&untouched, "domain = ?", "example.org").Error)
	assert.InDelta(t, 0.4, untouched.Score, 1e-9)
}

func TestReseedSourcesRequiresConfig(t *testing.T) {
	db := testDB(t)
	err := ReseedSources(db, filepath.Join(t.TempDir(), "missing.yaml"), zap.NewNop())
	require.Error(t, err)
}

func TestSeedSourcesFallsBackToBuiltins(t *testing.T) {
	db := testDB(t)

	require.NoError(t, SeedSources(db, "/does/not/exist.yaml", zap.NewNop()))

	var count int64
	require.NoError(t, db.Model(&types.Source{}).Count(&count).Error)
	assert.Greater(t, count, int64(10), "built-in table seeds when the file is missing")

	var row types.Source
	require.NoError(t, db.First(&row, "domain = ?", "reuters.com").Error)
	assert.InDelta(t, 0.95, row.Score, 1e-9)
}

func TestSourceScoresActiveOnly(t *testing.T) {
	db := testDB(t)
	require.NoError(t, db.Create(&types.Source{Domain: "reuters.com", Score: 0.95, Active: true}).Error)
	require.NoError(t, db.Create(&types.Source{Domain: "banned.example", Score: 0.2, Active: true}).Error)
	require.NoError(t, db.Model(&types.Source{}).Where("domain = ?", "banned.example").
		UpdateColumn("active", false).Error)

	scores, err := SourceScores(db)
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"reuters.com": 0.95}, scores)
}
