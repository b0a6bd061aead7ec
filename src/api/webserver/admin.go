package webserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/factcheck-ai/factcheck/src/api/data"
)

type Admin struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewAdmin(db *gorm.DB, log *zap.Logger) Admin {
	return Admin{db: db, log: log}
}

// SetSetting writes one runtime setting and refreshes the cache.
func (a Admin) SetSetting(c *gin.Context) {
	var req struct {
		Name  string `json:"name" binding:"required,min=1,max=32"`
		Value string `json:"value" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	if err := data.SetSetting(a.db, req.Name, req.Value); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}

	a.log.Info("setting updated",
		zap.String("admin", c.GetString("sid")), zap.String("name", req.Name))
	c.JSON(http.StatusOK, gin.H{"name": req.Name, "value": req.Value})
}
