package webserver

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/factcheck-ai/factcheck/src/api/data"
	"github.com/factcheck-ai/factcheck/src/api/types"
	"github.com/factcheck-ai/factcheck/src/factcheck/credibility"
)

type Sources struct {
	db     *gorm.DB
	scorer *credibility.Scorer
	log    *zap.Logger
}

func NewSources(db *gorm.DB, scorer *credibility.Scorer, log *zap.Logger) Sources {
	return Sources{db: db, scorer: scorer, log: log}
}

// List returns the active trust table, highest score first.
func (s Sources) List(c *gin.Context) {
	var rows []types.Source
	if err := s.db.Where("active = ?", true).Order("score DESC, domain ASC").Find(&rows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	out := make([]gin.H, 0, len(rows))
	for _, r := range rows {
		out = append(out, gin.H{
			"domain": r.Domain,
			"score":  r.Score,
			"label":  credibility.Label(r.Score),
		})
	}
	c.JSON(http.StatusOK, gin.H{"sources": out})
}

// Upsert writes one trust table row and reloads the live scorer.
func (s Sources) Upsert(c *gin.Context) {
	var req struct {
		Domain string   `json:"domain" binding:"required,max=128"`
		Score  *float64 `json:"score" binding:"required"`
		Active *bool    `json:"active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}
	domain := strings.ToLower(strings.TrimSpace(req.Domain))
	if domain == "" {
		c.JSON(http.StatusBadRequest, gin.H{"err": "domain is required"})
		return
	}
	if *req.Score < 0 || *req.Score > 1 {
		c.JSON(http.StatusBadRequest, gin.H{"err": "score must be between 0 and 1"})
		return
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}

	var row types.Source
	err := s.db.Where("domain = ?", domain).First(&row).Error
	switch {
	case err == gorm.ErrRecordNotFound:
		row = types.Source{Domain: domain, Score: *req.Score, Active: active}
		err = s.db.Create(&row).Error
	case err == nil:
		err = s.db.Model(&row).Updates(map[string]interface{}{
			"score":  *req.Score,
			"active": active,
		}).Error
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}

	scores, err := data.SourceScores(s.db)
	if err != nil {
		s.log.Warn("scorer reload failed", zap.Error(err))
	} else if s.scorer != nil {
		s.scorer.Reload(scores)
	}

	s.log.Info("source updated",
		zap.String("domain", domain), zap.Float64("score", *req.Score), zap.Bool("active", active))
	c.JSON(http.StatusOK, gin.H{"domain": domain, "score": *req.Score, "active": active})
}
