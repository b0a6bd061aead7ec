package webserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/factcheck-ai/factcheck/src/api/config"
	"github.com/factcheck-ai/factcheck/src/api/types"
	"github.com/factcheck-ai/factcheck/src/factcheck"
	"github.com/factcheck-ai/factcheck/src/factcheck/credibility"
	"github.com/factcheck-ai/factcheck/src/factcheck/newsfetch"
)

// stubCache serves every feed lookup from memory with zero items, so checks
// run the whole pipeline without touching the network.
type stubCache struct {
	results map[string]*factcheck.Result
}

func newStubCache() *stubCache {
	return &stubCache{results: map[string]*factcheck.Result{}}
}

func (s *stubCache) GetFeed(context.Context, string, string) ([]newsfetch.Item, string, bool) {
	return nil, "https://news.google.com/rss/search?q=stub", true
}

func (s *stubCache) PutFeed(context.Context, string, string, []newsfetch.Item, string) {}

func (s *stubCache) GetArticle(context.Context, string) (string, bool) { return "", false }

func (s *stubCache) PutArticle(context.Context, string, string) {}

func (s *stubCache) GetResult(_ context.Context, key string) (*factcheck.Result, bool) {
	res, ok := s.results[key]
	return res, ok
}

func (s *stubCache) PutResult(_ context.Context, key string, res *factcheck.Result) {
	s.results[key] = res
}

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&types.Source{}, &types.Account{}, &types.Check{}, &types.Question{}, &types.Setting{},
	))
	return db
}

type testAPI struct {
	router *gin.Engine
	db     *gorm.DB
	scorer *credibility.Scorer
}

func setupAPI(t *testing.T) testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testDB(t)
	scorer := credibility.NewScorer(nil)
	checker := factcheck.New(factcheck.Config{Cache: newStubCache(), Scorer: scorer})

	cfg := config.Config{
		JWTSecret:    "test-secret",
		CheckTimeout: 5 * time.Second,
		CheckRate:    100,
	}

	r := gin.New()
	attachRoutes(r, cfg, db, nil, checker, scorer, zap.NewNop())
	return testAPI{router: r, db: db, scorer: scorer}
}

func (a testAPI) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a testAPI) doReq(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), "body: %s", w.Body.String())
	return out
}

// createSession opens a session and returns its bearer token and id.
func (a testAPI) createSession(t *testing.T) (token, sid string) {
	t.Helper()
	w := a.do(t, http.MethodPost, "/v1/session", "", nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := decodeBody(t, w)
	token, _ = body["token"].(string)
	sid, _ = body["session"].(string)
	require.NotEmpty(t, token)
	require.NotEmpty(t, sid)
	return token, sid
}

func TestHealth(t *testing.T) {
	api := setupAPI(t)
	w := api.do(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "ok", decodeBody(t, w)["status"])
}
