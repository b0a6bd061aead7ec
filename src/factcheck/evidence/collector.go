package evidence

import (
	"context"
	"sync"
	"time"

	"github.com/factcheck-ai/factcheck/src/factcheck/newsfetch"
	"go.uber.org/zap"
)

const (
	defaultWorkers = 3
	perItemBudget  = 12 * time.Second
)

// Cache lets the collector reuse article bodies across checks. A nil Cache
// disables reuse.
type Cache interface {
	GetArticle(ctx context.Context, url string) (string, bool)
	PutArticle(ctx context.Context, url string, text string)
}

// Collector runs extraction across items with bounded parallelism.
type Collector struct {
	extractor *Extractor
	cache     Cache
	workers   int
	log       *zap.Logger
}

func NewCollector(extractor *Extractor, cache Cache, log *zap.Logger) *Collector {
	if log == nil {
		log = zap.NewNop()
	}
	return &Collector{
		extractor: extractor,
		cache:     cache,
		workers:   defaultWorkers,
		log:       log,
	}
}

// Collect extracts article bodies for every item, preserving input order.
// Items whose fetch fails or times out come back with empty text.
func (c *Collector) Collect(ctx context.Context, items []newsfetch.Item) []Document {
	docs := make([]Document, len(items))
	for i, item := range items {
		docs[i] = Document{Item: item}
	}

	sem := make(chan struct{}, c.workers)
	var wg sync.WaitGroup

	for i := range items {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				return
			}
			docs[idx] = c.collectOne(ctx, items[idx])
		}(i)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		<-done
	}
	return docs
}

func (c *Collector) collectOne(ctx context.Context, item newsfetch.Item) Document {
	if c.cache != nil {
		if text, ok := c.cache.GetArticle(ctx, item.URL); ok {
			doc := Document{Item: item, Text: text, Extracted: true}
			doc.Words = wordCount(text)
			return doc
		}
	}

	itemCtx, cancel := context.WithTimeout(ctx, perItemBudget)
	defer cancel()

	doc := c.extractor.Extract(itemCtx, item)
	if doc.Extracted && c.cache != nil {
		c.cache.PutArticle(ctx, item.URL, doc.Text)
	}
	return doc
}
