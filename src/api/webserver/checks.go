package webserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/factcheck-ai/factcheck/src/api/config"
	"github.com/factcheck-ai/factcheck/src/api/data"
	"github.com/factcheck-ai/factcheck/src/api/types"
	"github.com/factcheck-ai/factcheck/src/factcheck"
	"github.com/factcheck-ai/factcheck/src/factcheck/report"
	"github.com/factcheck-ai/factcheck/src/factcheck/tokens"
	"github.com/factcheck-ai/factcheck/src/factcheck/verdict"
)

const submitWindow = 2 * time.Second

type Checks struct {
	db        *gorm.DB
	rdb       *redis.Client
	checker   *factcheck.Checker
	cfg       config.Config
	log       *zap.Logger
	sanitizer *bluemonday.Policy
}

func NewChecks(db *gorm.DB, rdb *redis.Client, checker *factcheck.Checker, cfg config.Config, log *zap.Logger) Checks {
	return Checks{
		db:        db,
		rdb:       rdb,
		checker:   checker,
		cfg:       cfg,
		log:       log,
		sanitizer: bluemonday.StrictPolicy(),
	}
}

// Create runs the full pipeline for a claim and stores the outcome.
func (h Checks) Create(c *gin.Context) {
	var req struct {
		Claim          string `json:"claim" binding:"required"`
		Region         string `json:"region"`
		MaxArticles    int    `json:"max_articles"`
		FreshnessHours int    `json:"freshness_hours"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}
	if !utf8.ValidString(req.Claim) {
		c.JSON(http.StatusBadRequest, gin.H{"err": "claim contains invalid characters"})
		return
	}
	req.Claim = h.sanitizer.Sanitize(req.Claim)

	sid := c.GetString("sid")
	var acct types.Account
	if err := h.db.First(&acct, "id = ?", sid).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"err": "session not found"})
		return
	}

	plan := tokens.Plan(acct.Plan)
	if !tokens.CanCheck(acct.Tokens, plan) {
		c.JSON(http.StatusPaymentRequired, gin.H{
			"err":    "no tokens remaining",
			"tokens": acct.Tokens,
			"packs":  tokens.Packs(),
			"plans":  tokens.Plans(),
		})
		return
	}

	if !data.StampSession(c.Request.Context(), h.rdb, sid, submitWindow) {
		c.JSON(http.StatusTooManyRequests, gin.H{"err": "please wait a moment between checks"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.cfg.CheckTimeout)
	defer cancel()

	res, err := h.checker.Check(ctx, factcheck.Request{
		Claim:          req.Claim,
		Region:         req.Region,
		MaxArticles:    req.MaxArticles,
		FreshnessHours: req.FreshnessHours,
	})
	if err != nil {
		if errors.Is(err, factcheck.ErrEmptyClaim) || errors.Is(err, factcheck.ErrClaimTooLong) {
			c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}

	balance, spent := tokens.Spend(acct.Tokens, plan)
	if spent {
		if err := h.db.Model(&types.Account{}).Where("id = ? AND tokens > 0", sid).
			UpdateColumn("tokens", gorm.Expr("tokens - 1")).Error; err != nil {
			h.log.Warn("token debit failed", zap.String("session", sid), zap.Error(err))
		}
	}

	payload, err := json.Marshal(res)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	row := types.Check{
		ID:         uuid.NewString(),
		AccountID:  sid,
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
	if err := h.db.Create(&row).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}

	if err := data.PublishCheck(c.Request.Context(), h.rdb, map[string]interface{}{
		"id":      row.ID,
		"session": sid,
		"claim":   row.Claim,
		"verdict": row.Verdict,
	}); err != nil {
		h.log.Warn("stream publish failed", zap.Error(err))
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":     row.ID,
		"tokens": balance,
		"result": res,
		"share":  shareLinks(res.Claim, res.Verdict.Label),
	})
}

// Get returns a stored check owned by the session.
func (h Checks) Get(c *gin.Context) {
	row, res, ok := h.ownedCheck(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":         row.ID,
		"created_at": row.CreatedAt,
		"result":     res,
		"share":      shareLinks(res.Claim, res.Verdict.Label),
	})
}

// Report renders a stored check as a downloadable text or PDF report.
func (h Checks) Report(c *gin.Context) {
	row, res, ok := h.ownedCheck(c)
	if !ok {
		return
	}

	if c.Query("format") == "pdf" {
		docs := make([]verdict.EvidenceDoc, 0, len(res.Sources))
		for _, s := range res.Sources {
			docs = append(docs, verdict.EvidenceDoc{
				Title:       s.Title,
				URL:         s.URL,
				Source:      s.Source,
				Credibility: s.Credibility,
			})
		}
		var buf bytes.Buffer
		if err := report.RenderPDF(&buf, res.Claim, res.Verdict, docs, row.CreatedAt); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.PDFFileName(row.CreatedAt)))
		c.Data(http.StatusOK, "application/pdf", buf.Bytes())
		return
	}

	text := report.Render(res.Claim, res.Verdict.Verdict, len(res.Sources), row.CreatedAt)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.FileName(row.CreatedAt)))
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(text))
}

// Question answers a follow-up about a stored check. Requires a plan.
func (h Checks) Question(c *gin.Context) {
	plan := tokens.Plan(c.GetString("plan"))
	if !plan.Subscribed() {
		c.JSON(http.StatusPaymentRequired, gin.H{
			"err":   "follow-up questions require an active plan",
			"plans": tokens.Plans(),
		})
		return
	}

	var req struct {
		Question string `json:"question" binding:"required,max=500"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}
	req.Question = h.sanitizer.Sanitize(req.Question)

	row, res, ok := h.ownedCheck(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.cfg.CheckTimeout)
	defer cancel()

	answer, err := h.checker.Answer(ctx, res, req.Question)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"err": err.Error()})
		return
	}

	q := types.Question{CheckID: row.ID, Body: req.Question, Answer: answer}
	if err := h.db.Create(&q).Error; err != nil {
		h.log.Warn("question persist failed", zap.String("check", row.ID), zap.Error(err))
	}
	c.JSON(http.StatusOK, gin.H{"answer": answer})
}

// History lists the session's recent checks, newest first.
func (h Checks) History(c *gin.Context) {
	limit := 5
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"err": "invalid limit"})
			return
		}
		if n > 20 {
			n = 20
		}
		limit = n
	}

	var rows []types.Check
	if err := h.db.Where("account_id = ?", c.GetString("sid")).
		Order("created_at DESC").Limit(limit).Find(&rows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}

	out := make([]gin.H, 0, len(rows))
	for _, r := range rows {
		out = append(out, gin.H{
			"id":         r.ID,
			"claim":      r.Claim,
			"verdict":    r.Verdict,
			"confidence": r.Confidence,
			"engine":     r.Engine,
			"sources":    r.Sources,
			"degraded":   r.Degraded,
			"created_at": r.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"checks": out})
}

// ownedCheck loads the :id check, enforcing session ownership, and
// decodes its stored result. On failure it writes the response itself.
func (h Checks) ownedCheck(c *gin.Context) (types.Check, *factcheck.Result, bool) {
	var row types.Check
	err := h.db.First(&row, "id = ? AND account_id = ?", c.Param("id"), c.GetString("sid")).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"err": "check not found"})
		return types.Check{}, nil, false
	}
	var res factcheck.Result
	if err := json.Unmarshal([]byte(row.Payload), &res); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return types.Check{}, nil, false
	}
	return row, &res, true
}

func shareLinks(claim, label string) gin.H {
	text := report.ShareText(claim, label)
	return gin.H{
		"text":     text,
		"twitter":  report.TweetURL(text),
		"whatsapp": report.WhatsAppURL(text),
	}
}
