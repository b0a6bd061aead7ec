package webserver

import (
	"context"
	"errors"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/factcheck-ai/factcheck/src/factcheck"
	"github.com/factcheck-ai/factcheck/src/factcheck/newsfetch"
	"github.com/factcheck-ai/factcheck/src/factcheck/report"
	"github.com/factcheck-ai/factcheck/src/factcheck/tokens"
)

var exampleClaims = []string{
	"NASA discovered water on Mars",
	"Eating chocolate improves memory",
	"The Great Wall of China is visible from space",
	"COVID-19 vaccines contain microchips",
	"Shark attacks are more common than lightning strikes",
}

var factCheckingTips = []string{
	"Always verify information with multiple reliable sources before sharing",
	"Check the publication date - older information may be outdated or inaccurate",
	"Government (.gov) and educational (.edu) sources tend to be more reliable",
	"Look for original research and primary sources rather than interpretations",
	"Be wary of breaking news - initial reports often contain errors",
	"Consider the source's reputation and potential biases",
	"Check if other reputable news organizations are reporting the same information",
	"Look for supporting evidence like data, studies, or expert opinions",
}

type homeView struct {
	Tip            string
	Error          string
	Claim          string
	Examples       []string
	Regions        []string
	Region         string
	MaxArticles    int
	FreshnessHours int
	Plans          []tokens.PlanInfo
	Packs          []tokens.Pack
}

type sourceView struct {
	Title          string
	URL            string
	Source         string
	Published      string
	CredibilityPct int
	Label          string
	Excerpt        string
}

type citedView struct {
	Index int
	Quote string
	Title string
	URL   string
}

type resultView struct {
	Claim         string
	Verdict       string
	VerdictClass  string
	ConfidencePct int
	BarColor      string
	Rationale     []string
	Cited         []citedView
	Sources       []sourceView
	Degraded      bool
	Cached        bool
	Engine        string
	FeedURL       string
	ShareText     string
	TweetURL      string
	WhatsAppURL   string
	Report        string
	Tip           string
}

type Pages struct {
	db        *gorm.DB
	checker   *factcheck.Checker
	log       *zap.Logger
	sanitizer *bluemonday.Policy
}

func NewPages(db *gorm.DB, checker *factcheck.Checker, log *zap.Logger) Pages {
	return Pages{db: db, checker: checker, log: log, sanitizer: bluemonday.StrictPolicy()}
}

// Home renders the claim form with example claims and a rotating tip.
func (p Pages) Home(c *gin.Context) {
	c.HTML(http.StatusOK, "index.tmpl", p.homeView("", ""))
}

// Check runs the pipeline for a form-submitted claim and renders the result.
func (p Pages) Check(c *gin.Context) {
	var form struct {
		Claim          string `form:"claim"`
		Region         string `form:"region"`
		MaxArticles    int    `form:"max_articles"`
		FreshnessHours int    `form:"freshness_hours"`
	}
	if err := c.ShouldBind(&form); err != nil {
		c.HTML(http.StatusBadRequest, "index.tmpl", p.homeView(err.Error(), ""))
		return
	}
	form.Claim = p.sanitizer.Sanitize(form.Claim)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Minute)
	defer cancel()

	res, err := p.checker.Check(ctx, factcheck.Request{
		Claim:          form.Claim,
		Region:         form.Region,
		MaxArticles:    form.MaxArticles,
		FreshnessHours: form.FreshnessHours,
	})
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, factcheck.ErrEmptyClaim) || errors.Is(err, factcheck.ErrClaimTooLong) {
			status = http.StatusBadRequest
		}
		c.HTML(status, "index.tmpl", p.homeView(err.Error(), form.Claim))
		return
	}

	c.HTML(http.StatusOK, "result.tmpl", buildResultView(res))
}

func (p Pages) homeView(errMsg, claim string) homeView {
	return homeView{
		Tip:            factCheckingTips[rand.IntN(len(factCheckingTips))],
		Error:          errMsg,
		Claim:          claim,
		Examples:       exampleClaims,
		Regions:        newsfetch.Regions,
		Region:         "US",
		MaxArticles:    factcheck.DefaultArticles,
		FreshnessHours: factcheck.DefaultFreshnessHours,
		Plans:          tokens.Plans(),
		Packs:          tokens.Packs(),
	}
}

func buildResultView(res *factcheck.Result) resultView {
	v := resultView{
		Claim:         res.Claim,
		Verdict:       res.Verdict.Label,
		ConfidencePct: int(res.Verdict.Confidence*100 + 0.5),
		Rationale:     res.Verdict.Rationale,
		Degraded:      res.Degraded,
		Cached:        res.Cached,
		Engine:        res.Verdict.Engine,
		FeedURL:       res.FeedURL,
		Tip:           factCheckingTips[rand.IntN(len(factCheckingTips))],
		Report:        report.Render(res.Claim, res.Verdict.Verdict, len(res.Sources), res.CheckedAt),
	}

	switch res.Verdict.Label {
	case "Likely True":
		v.VerdictClass = "verdict-true"
	case "Likely False":
		v.VerdictClass = "verdict-false"
	default:
		v.VerdictClass = "verdict-uncertain"
	}
	switch {
	case res.Verdict.Confidence > 0.7:
		v.BarColor = "#2e8b57"
	case res.Verdict.Confidence > 0.4:
		v.BarColor = "#ff8c00"
	default:
		v.BarColor = "#dc143c"
	}

	for _, cs := range res.Verdict.Cited {
		cv := citedView{Index: cs.Index, Quote: cs.Excerpt}
		if cs.Index >= 1 && cs.Index <= len(res.Sources) {
			cv.Title = res.Sources[cs.Index-1].Title
			cv.URL = res.Sources[cs.Index-1].URL
		}
		v.Cited = append(v.Cited, cv)
	}

	for _, s := range res.Sources {
		sv := sourceView{
			Title:          s.Title,
			URL:            s.URL,
			Source:         s.Source,
			CredibilityPct: int(s.Credibility*100 + 0.5),
			Label:          s.CredibilityLabel,
			Excerpt:        s.Excerpt,
		}
		if s.Published != nil {
			sv.Published = s.Published.Format("2006-01-02")
		}
		v.Sources = append(v.Sources, sv)
	}

	shareText := report.ShareText(res.Claim, res.Verdict.Label)
	v.ShareText = shareText
	v.TweetURL = report.TweetURL(shareText)
	v.WhatsAppURL = report.WhatsAppURL(shareText)
	return v
}
