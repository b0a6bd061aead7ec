package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	aicore "github.com/factcheck-ai/factcheck/src/ai/core"
	_ "github.com/factcheck-ai/factcheck/src/ai/providers"
	"github.com/factcheck-ai/factcheck/src/api/config"
	"github.com/factcheck-ai/factcheck/src/api/data"
	"github.com/factcheck-ai/factcheck/src/api/types"
	"github.com/factcheck-ai/factcheck/src/api/webserver"
	"github.com/factcheck-ai/factcheck/src/factcheck"
	"github.com/factcheck-ai/factcheck/src/factcheck/credibility"
	"github.com/factcheck-ai/factcheck/src/factcheck/verdict"
	"github.com/factcheck-ai/factcheck/src/logging"
)

var allModels = []interface{}{
	&types.Source{}, &types.Account{},
	&types.Check{}, &types.Question{},
	&types.Setting{},
}

func migrate(db *gorm.DB, log *zap.Logger) {
	err := db.AutoMigrate(allModels...)

	if err == nil {
		return
	}

	log.Warn("auto-migrate failed, dropping and recreating schema", zap.Error(err))
	_ = db.Migrator().DropTable(
		"questions", "checks", "accounts", "sources", "settings",
	)
	if err := db.AutoMigrate(allModels...); err != nil {
		log.Fatal("migrate after drop", zap.Error(err))
	}
}

// buildChecker assembles the pipeline shared by the API and its pages.
func buildChecker(cfg config.Config, db *gorm.DB, cache factcheck.Cache, log *zap.Logger) (*factcheck.Checker, *credibility.Scorer) {
	scores, err := data.SourceScores(db)
	if err != nil {
		log.Warn("source scores unavailable, using defaults", zap.Error(err))
	}
	scorer := credibility.NewScorer(scores)

	ai := cfg.AI
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
	return checker, scorer
}

func main() {
	reseed := flag.Bool("reseed", false, "reapply the sources config over existing rows")
	flag.Parse()

	cfg := config.Load()
	log := logging.New("api")
	defer func() { _ = log.Sync() }()

	db := data.MustMySQL(cfg.MySQLDSN)
	migrate(db, log)
	if *reseed {
		if err := data.ReseedSources(db, cfg.SourcesFile, log); err != nil {
			log.Fatal("source reseed failed", zap.Error(err))
		}
	} else if err := data.SeedSources(db, cfg.SourcesFile, log); err != nil {
		log.Warn("source seeding failed", zap.Error(err))
	}
	if err := data.LoadSettings(db); err != nil {
		log.Warn("settings load failed", zap.Error(err))
	}

	// DB settings override env for the model choice so admins can switch
	// providers without redeploying.
	if v := data.GetSetting("ai_provider"); v != "" {
		cfg.AI.Provider = v
		cfg.AI.Model = ""
	}
	if v := data.GetSetting("ai_model"); v != "" {
		cfg.AI.Model = v
	}

	rdb := data.MustRedis(cfg.RedisURL)
	cache := factcheck.NewRedisCache(rdb, log)

	checker, scorer := buildChecker(cfg, db, cache, log)

	router := webserver.New(cfg, db, rdb, checker, scorer, log)
	httpSrv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		var err error
		if cfg.TLSCert != "" && cfg.TLSKey != "" {
			reloader, rerr := webserver.NewTLSReloader(cfg.TLSCert, cfg.TLSKey, log)
			if rerr != nil {
				log.Fatal("tls setup", zap.Error(rerr))
			}
			httpSrv.TLSConfig = reloader.GetConfig()
			err = httpSrv.ListenAndServeTLS("", "")
		} else {
			err = httpSrv.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			log.Fatal("http server", zap.Error(err))
		}
	}()
	log.Info("FactCheckAI API listening", zap.String("port", cfg.Port))

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	shutCtx, cancelShut := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShut()
	_ = httpSrv.Shutdown(shutCtx)
}
