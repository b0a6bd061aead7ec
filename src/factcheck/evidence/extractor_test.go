package evidence

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/factcheck-ai/factcheck/src/factcheck/newsfetch"
)

const articlePage = `<!DOCTYPE html>
<html><head><title>Mars water</title><script>var tracker = "beacon-junk";</script></head>
<body>
<nav>Home About Contact</nav>
<article>
<h1>Water detected on Mars</h1>
<p>Researchers at the observatory said the spacecraft measured narrow streaks of
hydrated salts along the crater slopes. The team concluded that briny water still
flows there during the warmest seasons of the Martian year. Independent reviewers
called the measurements convincing and asked for follow-up observations from the
next orbiter mission. The agency plans to publish the full measurement series
later this year.</p>
</article>
<footer>Copyright</footer>
</body></html>`

func TestExtract(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(articlePage))
	}))
	defer srv.Close()

	e := NewExtractor(nil)
	doc := e.Extract(context.Background(), newsfetch.Item{Title: "Mars", URL: srv.URL + "/article"})

	assert.True(t, doc.Extracted)
	assert.Greater(t, doc.Words, minBodyWords)
	assert.Contains(t, doc.Text, "hydrated salts")
	assert.NotContains(t, doc.Text, "beacon-junk", "script content is stripped")
}

func TestExtractFetchFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	e := NewExtractor(nil)
	doc := e.Extract(context.Background(), newsfetch.Item{URL: srv.URL + "/gone"})

	assert.False(t, doc.Extracted)
	assert.Empty(t, doc.Text)
}

func TestExtractEmptyPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><body></body></html>`))
	}))
	defer srv.Close()

	e := NewExtractor(nil)
	doc := e.Extract(context.Background(), newsfetch.Item{URL: srv.URL})

	assert.False(t, doc.Extracted)
}

func TestCapText(t *testing.T) {
	assert.Equal(t, "short", capText("short", 100))

	long := strings.Repeat("word ", 50)
	got := capText(long, 23)
	assert.LessOrEqual(t, len(got), 23)
	assert.Equal(t, "word word word word", got)
}

func TestCollapseWhitespace(t *testing.T) {
	assert.Equal(t, "a b c", collapseWhitespace("  a\n\tb   c\n"))
}
