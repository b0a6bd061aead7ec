package factcheck

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/factcheck-ai/factcheck/src/factcheck/credibility"
	"github.com/factcheck-ai/factcheck/src/factcheck/evidence"
	"github.com/factcheck-ai/factcheck/src/factcheck/newsfetch"
	"github.com/factcheck-ai/factcheck/src/factcheck/verdict"
)

// Config wires the pipeline stages. Nil fields fall back to defaults; a nil
// Cache disables caching and a nil Engine judges heuristically.
type Config struct {
	News      *newsfetch.Client
	Collector *evidence.Collector
	Scorer    *credibility.Scorer
	Engine    *verdict.Engine
	Cache     Cache
	Log       *zap.Logger
}

// Checker runs claims through retrieval, extraction, scoring, and judgment.
type Checker struct {
	news      *newsfetch.Client
	collector *evidence.Collector
	scorer    *credibility.Scorer
	engine    *verdict.Engine
	cache     Cache
	log       *zap.Logger
}

func New(cfg Config) *Checker {
	log := cfg.Log
	if log == nil {
		log = zap.NewNop()
	}
	news := cfg.News
	if news == nil {
		news = newsfetch.New(log)
	}
	collector := cfg.Collector
	if collector == nil {
		var articles evidence.Cache
		if cfg.Cache != nil {
			articles = cfg.Cache
		}
		collector = evidence.NewCollector(evidence.NewExtractor(log), articles, log)
	}
	scorer := cfg.Scorer
	if scorer == nil {
		scorer = credibility.NewScorer(nil)
	}
	engine := cfg.Engine
	if engine == nil {
		engine = verdict.NewEngine(nil, "", "", log)
	}
	return &Checker{
		news:      news,
		collector: collector,
		scorer:    scorer,
		engine:    engine,
		cache:     cfg.Cache,
		log:       log,
	}
}

// Check runs the full pipeline for one claim. Retrieval failures degrade to
// zero evidence instead of failing the check.
func (c *Checker) Check(ctx context.Context, req Request) (*Result, error) {
	if err := req.Normalize(); err != nil {
		return nil, err
	}
	start := time.Now()

	if c.cache != nil {
		if cached, ok := c.cache.GetResult(ctx, req.Key()); ok {
			cached.Cached = true
			c.log.Debug("result cache hit", zap.String("region", req.Region))
			return cached, nil
		}
	}

	retrievalStart := time.Now()
	items, feedURL, degraded := c.retrieve(ctx, req)
	items = newsfetch.FilterFresh(items, time.Duration(req.FreshnessHours)*time.Hour, time.Now())
	items = newsfetch.Dedupe(items)
	items = newsfetch.Cap(items, req.MaxArticles)
	retrievalMS := time.Since(retrievalStart).Milliseconds()

	extractionStart := time.Now()
	docs := c.collector.Collect(ctx, items)
	extractionMS := time.Since(extractionStart).Milliseconds()

	evidenceDocs, sources := c.score(docs)

	judgmentStart := time.Now()
	judged := c.engine.Judge(ctx, req.Claim, evidenceDocs)
	judgmentMS := time.Since(judgmentStart).Milliseconds()

	result := &Result{
		Claim:    req.Claim,
		Region:   req.Region,
		FeedURL:  feedURL,
		Verdict:  judged,
		Sources:  sources,
		Degraded: degraded,
		Timings: Timings{
			RetrievalMS:  retrievalMS,
			ExtractionMS: extractionMS,
			JudgmentMS:   judgmentMS,
			TotalMS:      time.Since(start).Milliseconds(),
		},
		CheckedAt: time.Now().UTC(),
	}

	c.log.Info("check complete",
		zap.String("verdict", judged.Label),
		zap.Float64("confidence", judged.Confidence),
		zap.String("engine", judged.Engine),
		zap.Int("sources", len(sources)),
		zap.Bool("degraded", degraded),
		zap.Int64("total_ms", result.Timings.TotalMS))

	if c.cache != nil {
		c.cache.PutResult(ctx, req.Key(), result)
	}
	return result, nil
}

// Answer responds to a follow-up question about a finished check.
func (c *Checker) Answer(ctx context.Context, res *Result, question string) (string, error) {
	return c.engine.Answer(ctx, res.EvidenceText(), question)
}

func (c *Checker) retrieve(ctx context.Context, req Request) ([]newsfetch.Item, string, bool) {
	if c.cache != nil {
		if items, feedURL, ok := c.cache.GetFeed(ctx, req.Claim, req.Region); ok {
			return items, feedURL, false
		}
	}
	items, feedURL, err := c.news.Search(ctx, req.Claim, req.Region)
	if err != nil {
		c.log.Warn("news retrieval failed", zap.String("region", req.Region), zap.Error(err))
		return nil, feedURL, true
	}
	if c.cache != nil {
		c.cache.PutFeed(ctx, req.Claim, req.Region, items, feedURL)
	}
	return items, feedURL, false
}

func (c *Checker) score(docs []evidence.Document) ([]verdict.EvidenceDoc, []SourceReport) {
	evidenceDocs := make([]verdict.EvidenceDoc, 0, len(docs))
	sources := make([]SourceReport, 0, len(docs))
	for _, doc := range docs {
		score := c.scorer.Score(doc.Item.URL, doc.Text)
		published := ""
		if doc.Item.Published != nil {
			published = doc.Item.Published.Format("2006-01-02")
		}
		evidenceDocs = append(evidenceDocs, verdict.EvidenceDoc{
			Title:       doc.Item.Title,
			URL:         doc.Item.URL,
			Source:      doc.Item.Source,
			Published:   published,
			Text:        doc.Text,
			Credibility: score,
		})
		sources = append(sources, SourceReport{
			Title:            doc.Item.Title,
			URL:              doc.Item.URL,
			Source:           doc.Item.Source,
			Published:        doc.Item.Published,
			Credibility:      score,
			CredibilityLabel: credibility.Label(score),
			Excerpt:          verdict.TrimSnippet(doc.Text, 2000),
			Extracted:        doc.Extracted,
		})
	}
	return evidenceDocs, sources
}
