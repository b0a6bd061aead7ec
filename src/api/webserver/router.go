package webserver

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/factcheck-ai/factcheck/src/api/config"
	"github.com/factcheck-ai/factcheck/src/factcheck"
	"github.com/factcheck-ai/factcheck/src/factcheck/credibility"
)

func New(cfg config.Config, db *gorm.DB, rdb *redis.Client, checker *factcheck.Checker, scorer *credibility.Scorer, log *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(log))

	r.Static("/static", "./static")
	r.LoadHTMLGlob("templates/*.tmpl")

	attachRoutes(r, cfg, db, rdb, checker, scorer, log)
	return r
}

func attachRoutes(r *gin.Engine, cfg config.Config, db *gorm.DB, rdb *redis.Client, checker *factcheck.Checker, scorer *credibility.Scorer, log *zap.Logger) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://localhost:8080"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-API-Key"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
	}))

	pagesH := NewPages(db, checker, log)
	sessH := NewSessions(db, []byte(cfg.JWTSecret), log)
	checksH := NewChecks(db, rdb, checker, cfg, log)
	sourcesH := NewSources(db, scorer, log)
	adminH := NewAdmin(db, log)

	limiter := NewRateLimiter(cfg.CheckRate, time.Minute)

	r.GET("/", pagesH.Home)
	r.POST("/check", RateLimitMiddleware(limiter), pagesH.Check)
	r.GET("/health", health(db, rdb))

	v1 := r.Group("/v1")
	{
		v1.POST("/session", sessH.Create)
		v1.GET("/sources", sourcesH.List)

		secured := v1.Use(SessionMiddleware(db, []byte(cfg.JWTSecret)))
		secured.GET("/session", sessH.Get)
		secured.POST("/session/subscribe", sessH.Subscribe)
		secured.POST("/session/tokens", sessH.BuyTokens)
		secured.POST("/checks", RateLimitMiddleware(limiter), checksH.Create)
		secured.GET("/checks/:id", checksH.Get)
		secured.GET("/checks/:id/report", checksH.Report)
		secured.POST("/checks/:id/question", checksH.Question)
		secured.GET("/history", checksH.History)
	}

	admin := v1.Group("/admin")
	admin.Use(AdminMiddleware(db))
	{
		admin.POST("/sources", sourcesH.Upsert)
		admin.PUT("/sources", sourcesH.Upsert)
		admin.POST("/settings", adminH.SetSetting)
	}
}

func health(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := http.StatusOK
		out := gin.H{"status": "ok"}
		if sqlDB, err := db.DB(); err != nil || sqlDB.Ping() != nil {
			status = http.StatusServiceUnavailable
			out["status"] = "degraded"
			out["mysql"] = "down"
		}
		if rdb != nil {
			if err := rdb.Ping(c.Request.Context()).Err(); err != nil {
				out["redis"] = "down"
			}
		}
		c.JSON(status, out)
	}
}

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("took", time.Since(start)))
	}
}
