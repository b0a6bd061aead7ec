// Package evidence turns feed items into scored article bodies.
package evidence

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/factcheck-ai/factcheck/src/factcheck/newsfetch"
	"github.com/go-resty/resty/v2"
	readability "github.com/go-shiori/go-readability"
	"go.uber.org/zap"
)

const (
	httpTimeout = 8 * time.Second

	// Bodies shorter than this are treated as boilerplate, not article text.
	minBodyWords = 50

	maxBodyChars = 16000
)

// Content selectors tried in order when readability yields nothing usable.
var contentSelectors = []string{
	"article",
	"main",
	"[itemprop='articleBody']",
	".article-content",
	".post-content",
	".story-content",
}

// Document is a feed item plus its extracted body. Extracted is false when
// the fetch or every extraction strategy failed; the item still counts as
// evidence, just without text.
type Document struct {
	Item      newsfetch.Item
	Text      string
	Words     int
	Extracted bool
}

// Extractor fetches article pages and pulls readable text out of them.
type Extractor struct {
	http *resty.Client
	log  *zap.Logger
}

func NewExtractor(log *zap.Logger) *Extractor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Extractor{
		http: resty.New().
			SetTimeout(httpTimeout).
			SetHeader("User-Agent", newsfetch.UserAgent),
		log: log,
	}
}

// Extract fetches the item URL and runs the extraction ladder:
// readability first, CSS content selectors second, whole-page text last.
func (e *Extractor) Extract(ctx context.Context, item newsfetch.Item) Document {
	doc := Document{Item: item}

	html, err := e.fetchHTML(ctx, item.URL)
	if err != nil {
		e.log.Debug("article fetch failed", zap.String("url", item.URL), zap.Error(err))
		return doc
	}

	text := extractFromHTML(html, item.URL)
	if text == "" {
		return doc
	}

	doc.Text = capText(text, maxBodyChars)
	doc.Words = len(strings.Fields(doc.Text))
	doc.Extracted = true
	return doc
}

func (e *Extractor) fetchHTML(ctx context.Context, pageURL string) ([]byte, error) {
	resp, err := e.http.R().SetContext(ctx).Get(pageURL)
	if err != nil {
		return nil, fmt.Errorf("fetch article: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("fetch article: status %d", resp.StatusCode())
	}
	return resp.Body(), nil
}

func extractFromHTML(html []byte, pageURL string) string {
	parsedURL, err := url.Parse(pageURL)
	if err != nil {
		parsedURL = &url.URL{}
	}

	if article, err := readability.FromReader(bytes.NewReader(html), parsedURL); err == nil {
		if text := collapseWhitespace(article.TextContent); wordCount(text) > minBodyWords {
			return text
		}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return ""
	}
	doc.Find("script, style, noscript").Remove()

	for _, selector := range contentSelectors {
		if node := doc.Find(selector).First(); node.Length() > 0 {
			if text := collapseWhitespace(node.Text()); wordCount(text) > minBodyWords {
				return text
			}
		}
	}

	return collapseWhitespace(doc.Find("body").Text())
}

func wordCount(text string) int {
	return len(strings.Fields(text))
}

func collapseWhitespace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

func capText(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	cut := text[:limit]
	if idx := strings.LastIndex(cut, " "); idx > 0 {
		cut = cut[:idx]
	}
	return cut
}
