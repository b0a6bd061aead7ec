package webserver

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/factcheck-ai/factcheck/src/api/types"
	"github.com/factcheck-ai/factcheck/src/factcheck/tokens"
)

type Sessions struct {
	db        *gorm.DB
	jwtSecret []byte
	log       *zap.Logger
}

func NewSessions(db *gorm.DB, secret []byte, log *zap.Logger) Sessions {
	return Sessions{db: db, jwtSecret: secret, log: log}
}

// Create opens an anonymous session with the starting token grant.
func (s Sessions) Create(c *gin.Context) {
	acct := types.Account{
		ID:     uuid.NewString(),
		Tokens: tokens.Starting,
		Plan:   string(tokens.PlanFree),
	}
	if err := s.db.Create(&acct).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	token, err := issueSessionJWT(acct.ID, s.jwtSecret)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	s.log.Info("session created", zap.String("session", acct.ID))
	c.JSON(http.StatusCreated, gin.H{
		"token":   token,
		"session": acct.ID,
		"tokens":  acct.Tokens,
		"plan":    acct.Plan,
	})
}

// Get returns the session's balance and plan.
func (s Sessions) Get(c *gin.Context) {
	var acct types.Account
	if err := s.db.First(&acct, "id = ?", c.GetString("sid")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"err": "session not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"session":    acct.ID,
		"tokens":     acct.Tokens,
		"plan":       acct.Plan,
		"subscribed": tokens.Plan(acct.Plan).Subscribed(),
	})
}

// Subscribe activates a plan. Enterprise issues an API key, returned once.
func (s Sessions) Subscribe(c *gin.Context) {
	var req struct {
		Plan string `json:"plan" binding:"required,oneof=basic pro enterprise"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}
	plan, ok := tokens.ParsePlan(req.Plan)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"err": "unknown plan"})
		return
	}

	sid := c.GetString("sid")
	updates := map[string]interface{}{"plan": string(plan)}
	resp := gin.H{"plan": string(plan), "subscribed": plan.Subscribed()}
	if plan.APIAccess() {
		secret := strings.ReplaceAll(uuid.NewString(), "-", "")
		hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
			return
		}
		updates["api_key_hash"] = string(hash)
		resp["api_key"] = makeAPIKey(sid, secret)
	}

	if err := s.db.Model(&types.Account{}).Where("id = ?", sid).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	s.log.Info("plan activated", zap.String("session", sid), zap.String("plan", string(plan)))
	c.JSON(http.StatusOK, resp)
}

// BuyTokens credits one of the fixed token packs.
func (s Sessions) BuyTokens(c *gin.Context) {
	var req struct {
		Tokens int `json:"tokens" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}
	if !tokens.ValidPack(req.Tokens) {
		c.JSON(http.StatusBadRequest, gin.H{"err": "unknown token pack"})
		return
	}

	sid := c.GetString("sid")
	if err := s.db.Model(&types.Account{}).Where("id = ?", sid).
		UpdateColumn("tokens", gorm.Expr("tokens + ?", req.Tokens)).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}

	var acct types.Account
	if err := s.db.First(&acct, "id = ?", sid).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"tokens": acct.Tokens})
}
