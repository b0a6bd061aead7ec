// Package newsfetch retrieves claim-related articles from Google News RSS.
package newsfetch

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/mmcdole/gofeed"
	"go.uber.org/zap"
)

const (
	// UserAgent identifies the service to upstream hosts.
	UserAgent = "Mozilla/5.0 (compatible; FactCheckBot/1.0; +https://github.com/factcheck-ai/factcheck)"

	searchURLTemplate   = "https://news.google.com/rss/search?q=%s&hl=en-%s&gl=%s&ceid=%s:en"
	fallbackURLTemplate = "https://news.google.com/rss/search?q=%s"

	fetchTimeout = 10 * time.Second
)

// Regions lists the supported Google News edition codes.
var Regions = []string{"US", "GB", "IN", "AU", "CA", "DE", "FR", "SG"}

// Item is one feed entry: metadata only, the body is fetched later.
type Item struct {
	Title     string
	URL       string
	Source    string
	Published *time.Time
}

// NormalizeRegion maps arbitrary input onto a supported region code.
func NormalizeRegion(region string) string {
	region = strings.ToUpper(strings.TrimSpace(region))
	for _, r := range Regions {
		if r == region {
			return r
		}
	}
	return "US"
}

// BuildSearchURL renders the region-scoped search feed URL.
func BuildSearchURL(claim, region string) string {
	region = NormalizeRegion(region)
	q := url.QueryEscape(claim)
	return fmt.Sprintf(searchURLTemplate, q, region, region, region)
}

// BuildFallbackURL renders the region-less search feed URL used when the
// scoped feed yields nothing.
func BuildFallbackURL(claim string) string {
	return fmt.Sprintf(fallbackURLTemplate, url.QueryEscape(claim))
}

// Client fetches and parses Google News search feeds.
type Client struct {
	http   *resty.Client
	parser *gofeed.Parser
	log    *zap.Logger
}

func New(log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	httpClient := resty.New().
		SetTimeout(fetchTimeout).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		SetHeader("User-Agent", UserAgent)

	return &Client{
		http:   httpClient,
		parser: gofeed.NewParser(),
		log:    log,
	}
}

// Search queries the scoped feed first and the region-less feed second.
// It returns the parsed items together with the feed URL that produced them.
func (c *Client) Search(ctx context.Context, claim, region string) ([]Item, string, error) {
	primary := BuildSearchURL(claim, region)
	items, err := c.fetch(ctx, primary)
	if err == nil && len(items) > 0 {
		return items, primary, nil
	}
	if err != nil {
		c.log.Warn("primary news feed failed", zap.String("url", primary), zap.Error(err))
	}

	fallback := BuildFallbackURL(claim)
	fbItems, fbErr := c.fetch(ctx, fallback)
	if fbErr != nil {
		if err != nil {
			return nil, primary, fmt.Errorf("news search failed: %w", err)
		}
		return nil, fallback, fmt.Errorf("news search fallback failed: %w", fbErr)
	}
	return fbItems, fallback, nil
}

func (c *Client) fetch(ctx context.Context, feedURL string) ([]Item, error) {
	resp, err := c.http.R().SetContext(ctx).Get(feedURL)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("fetch feed: status %d", resp.StatusCode())
	}

	feed, err := c.parser.ParseString(string(resp.Body()))
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	items := make([]Item, 0, len(feed.Items))
	for _, entry := range feed.Items {
		if strings.TrimSpace(entry.Link) == "" {
			continue
		}

		var published *time.Time
		if entry.PublishedParsed != nil {
			published = entry.PublishedParsed
		} else if entry.UpdatedParsed != nil {
			published = entry.UpdatedParsed
		}

		source := ""
		if entry.Custom != nil {
			source = entry.Custom["source"]
		}
		if source == "" {
			source = sourceFromTitle(entry.Title)
		}

		items = append(items, Item{
			Title:     strings.TrimSpace(entry.Title),
			URL:       entry.Link,
			Source:    source,
			Published: published,
		})
	}
	return items, nil
}

// Google News titles arrive as "Headline - Publisher".
func sourceFromTitle(title string) string {
	idx := strings.LastIndex(title, " - ")
	if idx < 0 {
		return ""
	}
	return strings.TrimSpace(title[idx+3:])
}

// FilterFresh drops items older than the window. Undated items are kept.
func FilterFresh(items []Item, window time.Duration, now time.Time) []Item {
	cutoff := now.Add(-window)
	out := make([]Item, 0, len(items))
	for _, item := range items {
		if item.Published != nil && item.Published.Before(cutoff) {
			continue
		}
		out = append(out, item)
	}
	return out
}

// Dedupe removes repeated stories by normalized URL and title.
func Dedupe(items []Item) []Item {
	seen := make(map[string]struct{}, len(items))
	out := make([]Item, 0, len(items))
	for _, item := range items {
		key := normalizeURL(item.URL) + "|" + normalizeTitle(item.Title)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, item)
	}
	return out
}

// Cap truncates the list to at most max items.
func Cap(items []Item, max int) []Item {
	if max <= 0 || len(items) <= max {
		return items
	}
	return items[:max]
}

func normalizeTitle(t string) string {
	return strings.Join(strings.Fields(strings.ToLower(t)), " ")
}

func normalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return strings.ToLower(raw)
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""

	q := u.Query()
	for k := range q {
		lk := strings.ToLower(k)
		if strings.HasPrefix(lk, "utm_") || lk == "fbclid" || lk == "gclid" {
			q.Del(k)
		}
	}
	u.RawQuery = q.Encode()

	out := u.String()
	return strings.TrimRight(out, "/")
}
