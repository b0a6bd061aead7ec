package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	aicore "github.com/factcheck-ai/factcheck/src/ai/core"
	_ "github.com/factcheck-ai/factcheck/src/ai/providers"
	"github.com/factcheck-ai/factcheck/src/api/data"
	"github.com/factcheck-ai/factcheck/src/api/types"
	appcfg "github.com/factcheck-ai/factcheck/src/config"
	"github.com/factcheck-ai/factcheck/src/factcheck"
	"github.com/factcheck-ai/factcheck/src/factcheck/credibility"
	"github.com/factcheck-ai/factcheck/src/factcheck/tokens"
	"github.com/factcheck-ai/factcheck/src/factcheck/verdict"
	"github.com/factcheck-ai/factcheck/src/logging"
)

const (
	commandCheck   = "!factcheck"
	commandSources = "!sources"
	commandTokens  = "!tokens"
	commandHelp    = "!helpcheck"

	checkTimeout = 5 * time.Minute
	userCooldown = 30 * time.Second
)

type DiscordBot struct {
	session     *discordgo.Session
	db          *gorm.DB
	rdb         *redis.Client
	checker     *factcheck.Checker
	roleID      string
	guildID     string
	announceCh  string
	rateLimiter *UserRateLimiter
	log         *zap.Logger
}

type UserRateLimiter struct {
	users map[string]time.Time
	mu    sync.Mutex
	limit time.Duration
}

func NewUserRateLimiter(limit time.Duration) *UserRateLimiter {
	return &UserRateLimiter{
		users: make(map[string]time.Time),
		limit: limit,
	}
}

func (rl *UserRateLimiter) CanUse(userID string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	lastUse, exists := rl.users[userID]
	if !exists || time.Since(lastUse) >= rl.limit {
		rl.users[userID] = time.Now()
		return true
	}
	return false
}

func (rl *UserRateLimiter) TimeUntilNext(userID string) time.Duration {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	lastUse, exists := rl.users[userID]
	if !exists {
		return 0
	}

	elapsed := time.Since(lastUse)
	if elapsed >= rl.limit {
		return 0
	}
	return rl.limit - elapsed
}

func NewDiscordBot(token, roleID, guildID, announceCh string, db *gorm.DB, rdb *redis.Client, checker *factcheck.Checker, log *zap.Logger) (*DiscordBot, error) {
	dg, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, err
	}

	bot := &DiscordBot{
		session:     dg,
		db:          db,
		rdb:         rdb,
		checker:     checker,
		roleID:      roleID,
		guildID:     guildID,
		announceCh:  announceCh,
		rateLimiter: NewUserRateLimiter(userCooldown),
		log:         log,
	}

	dg.AddHandler(bot.handleMessageCreate)
	dg.AddHandler(bot.handleReady)

	dg.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentsMessageContent | discordgo.IntentsGuilds

	return bot, nil
}

func (b *DiscordBot) Start() error {
	return b.session.Open()
}

func (b *DiscordBot) Stop() error {
	return b.session.Close()
}

func (b *DiscordBot) handleReady(s *discordgo.Session, event *discordgo.Ready) {
	b.log.Info("Discord bot logged in", zap.String("user", event.User.Username))

	if b.announceCh != "" {
		go b.announceChecks(context.Background())
	}
}

func (b *DiscordBot) handleMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author.ID == s.State.User.ID {
		return
	}

	switch {
	case strings.HasPrefix(m.Content, commandCheck):
		b.handleFactCheck(s, m)
	case strings.HasPrefix(m.Content, commandSources):
		b.handleSources(s, m)
	case strings.HasPrefix(m.Content, commandTokens):
		b.handleTokens(s, m)
	case strings.HasPrefix(m.Content, commandHelp):
		b.handleHelp(s, m)
	}
}

func (b *DiscordBot) handleFactCheck(s *discordgo.Session, m *discordgo.MessageCreate) {
	if !b.memberAllowed(s, m) {
		s.ChannelMessageSend(m.ChannelID, "You don't have permission to use this command.")
		return
	}

	if !b.rateLimiter.CanUse(m.Author.ID) {
		wait := b.rateLimiter.TimeUntilNext(m.Author.ID)
		s.ChannelMessageSend(m.ChannelID,
			fmt.Sprintf("Please wait %d seconds before checking another claim.", int(wait.Seconds())+1))
		return
	}

	claim := strings.TrimSpace(strings.TrimPrefix(m.Content, commandCheck))
	if claim == "" {
		s.ChannelMessageSend(m.ChannelID, "Usage: !factcheck <claim to verify>")
		return
	}

	acct, err := b.ensureAccount(m.Author.ID)
	if err != nil {
		b.log.Error("account lookup failed", zap.String("user", m.Author.ID), zap.Error(err))
		s.ChannelMessageSend(m.ChannelID, "Something went wrong. Please try again.")
		return
	}
	plan := tokens.Plan(acct.Plan)
	if !tokens.CanCheck(acct.Tokens, plan) {
		s.ChannelMessageSend(m.ChannelID,
			"You are out of fact-check tokens. Visit the FactCheckAI site to buy a pack or subscribe.")
		return
	}

	_ = s.ChannelTyping(m.ChannelID)

	ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
	defer cancel()

	res, err := b.checker.Check(ctx, factcheck.Request{Claim: claim})
	if err != nil {
		s.ChannelMessageSend(m.ChannelID, fmt.Sprintf("Could not check that claim: %v", err))
		return
	}

	if _, spent := tokens.Spend(acct.Tokens, plan); spent {
		if err := b.db.Model(&types.Account{}).Where("id = ? AND tokens > 0", acct.ID).
			UpdateColumn("tokens", gorm.Expr("tokens - 1")).Error; err != nil {
			b.log.Warn("token debit failed", zap.String("account", acct.ID), zap.Error(err))
		}
	}
	b.persistCheck(acct.ID, res)

	s.ChannelMessageSendEmbed(m.ChannelID, buildVerdictEmbed(res))

	b.log.Info("claim checked",
		zap.String("user", m.Author.Username),
		zap.String("verdict", res.Verdict.Label),
		zap.Int("sources", len(res.Sources)))
}

func (b *DiscordBot) handleSources(s *discordgo.Session, m *discordgo.MessageCreate) {
	var rows []types.Source
	if err := b.db.Where("active = ?", true).Order("score DESC, domain ASC").Limit(15).Find(&rows).Error; err != nil {
		s.ChannelMessageSend(m.ChannelID, "Could not load the source list.")
		return
	}

	var sb strings.Builder
	for _, r := range rows {
		fmt.Fprintf(&sb, "%.2f  %s (%s)\n", r.Score, r.Domain, credibility.Label(r.Score))
	}
	embed := &discordgo.MessageEmbed{
		Title:       "Source Credibility Rankings",
		Description: sb.String(),
		Color:       0x1f77b4,
		Footer:      &discordgo.MessageEmbedFooter{Text: "FactCheckAI"},
	}
	s.ChannelMessageSendEmbed(m.ChannelID, embed)
}

func (b *DiscordBot) handleTokens(s *discordgo.Session, m *discordgo.MessageCreate) {
	acct, err := b.ensureAccount(m.Author.ID)
	if err != nil {
		s.ChannelMessageSend(m.ChannelID, "Something went wrong. Please try again.")
		return
	}
	if tokens.Plan(acct.Plan).Subscribed() {
		s.ChannelMessageSend(m.ChannelID,
			fmt.Sprintf("You are on the %s plan with unlimited fact-checks.", acct.Plan))
		return
	}
	s.ChannelMessageSend(m.ChannelID, fmt.Sprintf("You have %d fact-check tokens remaining.", acct.Tokens))
}

func (b *DiscordBot) handleHelp(s *discordgo.Session, m *discordgo.MessageCreate) {
	help := "**FactCheckAI commands**\n" +
		"`!factcheck <claim>` - verify a claim against recent news coverage\n" +
		"`!sources` - show the source credibility rankings\n" +
		"`!tokens` - show your remaining fact-check tokens\n" +
		"`!helpcheck` - this message"
	s.ChannelMessageSend(m.ChannelID, help)
}

// memberAllowed enforces the optional role gate. With no role configured
// everyone may use the bot.
func (b *DiscordBot) memberAllowed(s *discordgo.Session, m *discordgo.MessageCreate) bool {
	if b.roleID == "" || b.guildID == "" {
		return true
	}
	member, err := s.GuildMember(b.guildID, m.Author.ID)
	if err != nil {
		b.log.Warn("guild member lookup failed", zap.String("user", m.Author.ID), zap.Error(err))
		return false
	}
	for _, roleID := range member.Roles {
		if roleID == b.roleID {
			return true
		}
	}
	return false
}

// ensureAccount maps a Discord user onto the shared account table so
// token balances carry across the bot and the API.
func (b *DiscordBot) ensureAccount(userID string) (types.Account, error) {
	acct := types.Account{
		ID:     "discord:" + userID,
		Tokens: tokens.Starting,
		Plan:   string(tokens.PlanFree),
	}
	err := b.db.Where("id = ?", acct.ID).FirstOrCreate(&acct).Error
	return acct, err
}

func (b *DiscordBot) persistCheck(accountID string, res *factcheck.Result) {
	payload, err := json.Marshal(res)
	if err != nil {
		return
	}
	row := types.Check{
		ID:         uuid.NewString(),
		AccountID:  accountID,
		Claim:      res.Claim,
		Region:     res.Region,
		Verdict:    res.Verdict.Label,
		Confidence: res.Verdict.Confidence,
		Engine:     res.Verdict.Engine,
		Provider:   res.Verdict.Provider,
		Sources:    len(res.Sources),
		Degraded:   res.Degraded,
		Payload:    string(payload),
	}
	if err := b.db.Create(&row).Error; err != nil {
		b.log.Warn("check persist failed", zap.Error(err))
	}
}

func buildVerdictEmbed(res *factcheck.Result) *discordgo.MessageEmbed {
	color := 0xff8c00
	switch res.Verdict.Label {
	case "Likely True":
		color = 0x2e8b57
	case "Likely False":
		color = 0xdc143c
	}

	var rationale strings.Builder
	for _, point := range res.Verdict.Rationale {
		fmt.Fprintf(&rationale, "- %s\n", point)
	}

	fields := []*discordgo.MessageEmbedField{
		{Name: "Verdict", Value: res.Verdict.Label, Inline: true},
		{Name: "Confidence", Value: fmt.Sprintf("%.0f%%", res.Verdict.Confidence*100), Inline: true},
	}
	if rationale.Len() > 0 {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "Rationale", Value: rationale.String()})
	}

	if len(res.Sources) > 0 {
		var sources strings.Builder
		for i, src := range res.Sources {
			if i == 3 {
				break
			}
			fmt.Fprintf(&sources, "[%s](%s) (%.0f%%)\n", src.Title, src.URL, src.Credibility*100)
		}
		fields = append(fields, &discordgo.MessageEmbedField{Name: "Top Sources", Value: sources.String()})
	}

	footer := fmt.Sprintf("FactCheckAI | engine: %s", res.Verdict.Engine)
	if res.Degraded {
		footer += " | evidence retrieval degraded"
	}

	return &discordgo.MessageEmbed{
		Title:       "Fact Check",
		Description: res.Claim,
		Color:       color,
		Fields:      fields,
		Footer:      &discordgo.MessageEmbedFooter{Text: footer},
		Timestamp:   time.Now().Format(time.RFC3339),
	}
}

// announceChecks mirrors API-submitted checks into the announcement
// channel so a server can follow what is being verified.
func (b *DiscordBot) announceChecks(ctx context.Context) {
	lastID := "$"

	for {
		select {
		case <-ctx.Done():
			return
		default:
			streams, err := b.rdb.XRead(ctx, &redis.XReadArgs{
				Streams: []string{"factcheck.checks", lastID},
				Count:   10,
				Block:   5 * time.Second,
			}).Result()

			if err != nil {
				if err != redis.Nil && ctx.Err() == nil {
					b.log.Warn("stream read failed", zap.Error(err))
					time.Sleep(time.Second)
				}
				continue
			}

			for _, stream := range streams {
				for _, msg := range stream.Messages {
					lastID = msg.ID

					claim, _ := msg.Values["claim"].(string)
					verdictLabel, _ := msg.Values["verdict"].(string)
					if claim == "" {
						continue
					}

					text := fmt.Sprintf("New fact check: %q\nVerdict: %s", claim, verdictLabel)
					if _, err := b.session.ChannelMessageSend(b.announceCh, text); err != nil {
						b.log.Warn("announce failed", zap.Error(err))
					}
				}
			}
		}
	}
}

// settingOrEnv prefers a DB setting, falling back to the environment.
func settingOrEnv(name, envKey string) string {
	if v := data.GetSetting(name); v != "" {
		return v
	}
	return os.Getenv(envKey)
}

func main() {
	log := logging.New("bot")
	defer func() { _ = log.Sync() }()

	mysqlDSN := os.Getenv("MYSQL_DSN")
	if mysqlDSN == "" {
		mysqlDSN = "factcheck:factcheck@tcp(127.0.0.1:3306)/factcheck?parseTime=true"
	}
	db := data.MustMySQL(mysqlDSN)

	if err := data.LoadSettings(db); err != nil {
		log.Warn("settings load failed", zap.Error(err))
	}

	token := settingOrEnv("discord_token", "DISCORD_TOKEN")
	if token == "" {
		log.Fatal("DISCORD_TOKEN not set in database or environment")
	}
	roleID := settingOrEnv("factcheck_role_id", "FACTCHECK_ROLE_ID")
	guildID := settingOrEnv("guild_id", "GUILD_ID")
	announceCh := settingOrEnv("factcheck_channel_id", "FACTCHECK_CHANNEL_ID")

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://127.0.0.1:6379/0"
	}
	rdb := data.MustRedis(redisURL)

	cache := factcheck.NewRedisCache(rdb, log)

	scores, err := data.SourceScores(db)
	if err != nil {
		log.Warn("source scores unavailable, using defaults", zap.Error(err))
	}
	scorer := credibility.NewScorer(scores)

	ai := appcfg.LoadAIFromEnv()
	if v := data.GetSetting("ai_provider"); v != "" {
		ai.Provider = v
		ai.Model = ""
	}
	if v := data.GetSetting("ai_model"); v != "" {
		ai.Model = v
	}
	client, err := aicore.NewClient(aicore.FactoryConfig{
		Provider:            ai.Provider,
		Model:               ai.Model,
		SystemPrompt:        ai.SystemPrompt,
		Temperature:         ai.Temperature,
		MaxCompletionTokens: ai.MaxTokens,
		OpenAIKey:           ai.OpenAIKey,
		ClaudeKey:           ai.ClaudeKey,
		GeminiKey:           ai.GeminiKey,
		Extra:               map[string]string{"panel_members": ai.PanelMembers},
	})
	if err != nil {
		log.Warn("AI client unavailable, verdicts fall back to heuristics", zap.Error(err))
		client = nil
	}
	engine := verdict.NewEngine(client, ai.Provider, ai.Model, log)

	checker := factcheck.New(factcheck.Config{
		Scorer: scorer,
		Engine: engine,
		Cache:  cache,
		Log:    log,
	})

	bot, err := NewDiscordBot(token, roleID, guildID, announceCh, db, rdb, checker, log)
	if err != nil {
		log.Fatal("create bot", zap.Error(err))
	}

	if err := bot.Start(); err != nil {
		log.Fatal("start bot", zap.Error(err))
	}
	log.Info("Discord bot is running, press CTRL-C to exit")

	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	_ = bot.Stop()
	log.Info("Discord bot stopped")
}
