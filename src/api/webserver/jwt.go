package webserver

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/factcheck-ai/factcheck/src/api/types"
)

const sessionTTL = 24 * time.Hour

func issueSessionJWT(sessionID string, secret []byte) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sid": sessionID,
		"exp": time.Now().Add(sessionTTL).Unix(),
	})
	return token.SignedString(secret)
}

// SessionMiddleware authenticates either a Bearer session token or an
// enterprise X-API-Key and loads the account behind it.
func SessionMiddleware(db *gorm.DB, secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		if key := c.GetHeader("X-API-Key"); key != "" {
			acct, err := accountForAPIKey(db, key)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"err": "invalid api key"})
				return
			}
			setAccount(c, acct)
			return
		}

		h := c.GetHeader("Authorization")
		if !strings.HasPrefix(h, "Bearer ") {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		tok, err := jwt.Parse(h[7:], func(t *jwt.Token) (interface{}, error) { return secret, nil })
		if err != nil || !tok.Valid {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		sid, _ := tok.Claims.(jwt.MapClaims)["sid"].(string)
		if sid == "" {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		var acct types.Account
		if err := db.First(&acct, "id = ?", sid).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"err": "unknown session"})
			return
		}
		setAccount(c, acct)
	}
}

func setAccount(c *gin.Context, acct types.Account) {
	c.Set("sid", acct.ID)
	c.Set("plan", acct.Plan)
	c.Next()
}

// API keys look like fc_<session id>_<secret>; only the bcrypt hash of the
// secret part is stored.
func makeAPIKey(sessionID, secret string) string {
	return fmt.Sprintf("fc_%s_%s", sessionID, secret)
}

func accountForAPIKey(db *gorm.DB, key string) (types.Account, error) {
	parts := strings.SplitN(key, "_", 3)
	if len(parts) != 3 || parts[0] != "fc" {
		return types.Account{}, fmt.Errorf("malformed key")
	}
	var acct types.Account
	if err := db.First(&acct, "id = ?", parts[1]).Error; err != nil {
		return types.Account{}, err
	}
	if acct.APIKeyHash == "" {
		return types.Account{}, fmt.Errorf("no key issued")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acct.APIKeyHash), []byte(parts[2])); err != nil {
		return types.Account{}, err
	}
	return acct, nil
}

// AdminMiddleware allows only accounts with the admin flag set.
func AdminMiddleware(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var acct types.Account
		if err := db.First(&acct, "id = ?", c.GetString("sid")).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"err": "admin access required"})
			return
		}
		if !acct.Admin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"err": "admin access required"})
			return
		}
		c.Next()
	}
}
