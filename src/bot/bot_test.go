package main

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/factcheck-ai/factcheck/src/api/types"
	"github.com/factcheck-ai/factcheck/src/factcheck"
	"github.com/factcheck-ai/factcheck/src/factcheck/tokens"
	"github.com/factcheck-ai/factcheck/src/factcheck/verdict"
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

	require.NoError(t, db.AutoMigrate(&types.Account{}, &types.Check{}))
	return db
}

func TestUserRateLimiterCanUse(t *testing.T) {
	rl := NewUserRateLimiter(50 * time.Millisecond)

	assert.True(t, rl.CanUse("alice"))
	assert.False(t, rl.CanUse("alice"))
	assert.True(t, rl.CanUse("bob"))

	time.Sleep(60 * time.Millisecond)
	assert.True(t, rl.CanUse("alice"))
}

func TestUserRateLimiterTimeUntilNext(t *testing.T) {
	rl := NewUserRateLimiter(50 * time.Millisecond)

	assert.Zero(t, rl.TimeUntilNext("alice"))

	require.True(t, rl.CanUse("alice"))
	wait := rl.TimeUntilNext("alice")
	assert.Greater(t, wait, time.Duration(0))
	assert.LessOrEqual(t, wait, 50*time.Millisecond)

	time.Sleep(60 * time.Millisecond)
	assert.Zero(t, rl.TimeUntilNext("alice"))
}

func TestBuildVerdictEmbed(t *testing.T) {
	published := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	res := &factcheck.Result{
		Claim:  "Liquid water was found on Mars",
		Region: "US",
		Verdict: verdict.Result{
			Verdict: verdict.Verdict{
				Label:      verdict.LikelyTrue,
				Confidence: 0.85,
				Rationale:  []string{"Multiple agencies reported the finding.", "Coverage is consistent across outlets."},
			},
			Engine:   verdict.EngineModel,
			Provider: "openai",
		},
		Sources: []factcheck.SourceReport{
			{Title: "Alpha", URL: "https://a.example/1", Credibility: 0.95, Published: &published},
			{Title: "Beta", URL: "https://b.example/2", Credibility: 0.8},
			{Title: "Gamma", URL: "https://c.example/3", Credibility: 0.6},
			{Title: "Delta", URL: "https://d.example/4", Credibility: 0.4},
		},
	}

	embed := buildVerdictEmbed(res)

	assert.Equal(t, "Fact Check", embed.Title)
	assert.Equal(t, res.Claim, embed.Description)
	assert.Equal(t, 0x2e8b57, embed.Color)
	assert.NotEmpty(t, embed.Timestamp)

	require.Len(t, embed.Fields, 4)

	assert.Equal(t, "Verdict", embed.Fields[0].Name)
	assert.Equal(t, verdict.LikelyTrue, embed.Fields[0].Value)
	assert.True(t, embed.Fields[0].Inline)

	assert.Equal(t, "Confidence", embed.Fields[1].Name)
	assert.Equal(t, "85%", embed.Fields[1].Value)
	assert.True(t, embed.Fields[1].Inline)

	assert.Equal(t, "Rationale", embed.Fields[2].Name)
	assert.Equal(t, "- Multiple agencies reported the finding.\n- Coverage is consistent across outlets.\n", embed.Fields[2].Value)

	assert.Equal(t, "Top Sources", embed.Fields[3].Name)
	assert.Contains(t, embed.Fields[3].Value, "[Alpha](https://a.example/1) (95%)")
	assert.Contains(t, embed.Fields[3].Value, "[Gamma](https://c.example/3) (60%)")
	assert.NotContains(t, embed.Fields[3].Value, "Delta")

	require.NotNil(t, embed.Footer)
	assert.Equal(t, "FactCheckAI | engine: model", embed.Footer.Text)
}

func TestBuildVerdictEmbedColors(t *testing.T) {
	cases := []struct {
		label string
		color int
	}{
		{verdict.LikelyTrue, 0x2e8b57},
		{verdict.LikelyFalse, 0xdc143c},
		{verdict.Uncertain, 0xff8c00},
		{"", 0xff8c00},
	}
	for _, tc := range cases {
		res := &factcheck.Result{
			Claim:   "test",
			Verdict: verdict.Result{Verdict: verdict.Verdict{Label: tc.label}},
		}
		assert.Equal(t, tc.color, buildVerdictEmbed(res).Color, "label %q", tc.label)
	}
}

func TestBuildVerdictEmbedDegradedFooter(t *testing.T) {
	res := &factcheck.Result{
		Claim: "test",
		Verdict: verdict.Result{
			Verdict:  verdict.Verdict{Label: verdict.Uncertain},
			Engine:   verdict.EngineHeuristic,
			Provider: "",
		},
		Degraded: true,
	}

	embed := buildVerdictEmbed(res)

	require.Len(t, embed.Fields, 2)
	require.NotNil(t, embed.Footer)
	assert.Equal(t, "FactCheckAI | engine: heuristic | evidence retrieval degraded", embed.Footer.Text)
}

func TestEnsureAccount(t *testing.T) {
	b := &DiscordBot{db: testDB(t), log: zap.NewNop()}

	acct, err := b.ensureAccount("12345")
	require.NoError(t, err)
	assert.Equal(t, "discord:12345", acct.ID)
	assert.Equal(t, tokens.Starting, acct.Tokens)
	assert.Equal(t, string(tokens.PlanFree), acct.Plan)

	require.NoError(t, b.db.Model(&types.Account{}).Where("id = ?", acct.ID).UpdateColumn("tokens", 7).Error)

	again, err := b.ensureAccount("12345")
	require.NoError(t, err)
	assert.Equal(t, 7, again.Tokens)

	var count int64
	require.NoError(t, b.db.Model(&types.Account{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestPersistCheck(t *testing.T) {
	b := &DiscordBot{db: testDB(t), log: zap.NewNop()}

	res := &factcheck.Result{
		Claim:  "Liquid water was found on Mars",
		Region: "GB",
		Verdict: verdict.Result{
			Verdict:  verdict.Verdict{Label: verdict.LikelyTrue, Confidence: 0.85},
			Engine:   verdict.EngineModel,
			Provider: "openai",
		},
		Sources:  []factcheck.SourceReport{{Title: "Alpha", URL: "https://a.example/1"}},
		Degraded: true,
	}

	b.persistCheck("discord:12345", res)

	var row types.Check
	require.NoError(t, b.db.First(&row).Error)
	assert.NotEmpty(t, row.ID)
	assert.Equal(t, "discord:12345", row.AccountID)
	assert.Equal(t, res.Claim, row.Claim)
	assert.Equal(t, "GB", row.Region)
	assert.Equal(t, verdict.LikelyTrue, row.Verdict)
	assert.InDelta(t, 0.85, row.Confidence, 1e-9)
	assert.Equal(t, verdict.EngineModel, row.Engine)
	assert.Equal(t, "openai", row.Provider)
	assert.Equal(t, 1, row.Sources)
	assert.True(t, row.Degraded)

	var stored factcheck.Result
	require.NoError(t, json.Unmarshal([]byte(row.Payload), &stored))
	assert.Equal(t, res.Claim, stored.Claim)
}
