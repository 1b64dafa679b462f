package digest

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc"

	"tagdigest/metrics"
	"tagdigest/models"
)

// PipelineConfig holds everything a run needs besides the instance client
type PipelineConfig struct {
	Calendar        Calendar
	Weights         Weights
	IgnoredAccounts []string
	PageSize        int
	TopN            int
	// BaseURL of the instance, used for post permalinks
	BaseURL string
}

// Result is the outcome of one pipeline run
type Result struct {
	Day Day
	// Fetched is every post of the day returned by the timeline
	Fetched []*models.Status
	// Ranked holds the scored posts, highest relevance first
	Ranked []ScoredPost
	// Kept are the ranked posts that passed every filter
	Kept      []ScoredPost
	History   []models.TagHistory
	TotalUses int64
	Text      string
	HasDigest bool
}

// Pipeline fetches, scores, filters and composes a digest. It never prompts
// or publishes; that is left to the caller.
type Pipeline struct {
	calendar Calendar
	timeline *TimelineFetcher
	usage    *UsageFetcher
	scorer   Scorer
	ignored  *IgnoredAccountsFilter
	composer *Composer
}

func NewPipeline(source Source, cfg PipelineConfig) *Pipeline {
	return &Pipeline{
		calendar: cfg.Calendar,
		timeline: NewTimelineFetcher(source, cfg.PageSize),
		usage:    NewUsageFetcher(source),
		scorer:   Scorer{Weights: cfg.Weights},
		ignored:  NewIgnoredAccountsFilter(cfg.IgnoredAccounts),
		composer: NewComposer(cfg.BaseURL, cfg.TopN),
	}
}

// Usage exposes the usage fetcher for callers that only need tag statistics
func (p *Pipeline) Usage() *UsageFetcher {
	return p.usage
}

// Resolve returns the day a run started at now would report on
func (p *Pipeline) Resolve(now time.Time) Day {
	return p.calendar.Resolve(now)
}

// Build runs the pipeline for the day containing now. The timeline walk and
// the usage lookup run concurrently and are joined before composing. Only a
// failed timeline fetch is returned as an error.
func (p *Pipeline) Build(ctx context.Context, now time.Time) (*Result, error) {
	day := p.calendar.Resolve(now)
	logger := log.WithFields(log.Fields{
		"tag": day.Hashtag,
		"day": day.Key,
	})

	result := &Result{Day: day}
	if day.Hashtag == "" {
		logger.Warn("No hashtag configured for today")
		return result, nil
	}

	logger.WithField("stage", "fetching").Info("Building digest")

	var (
		wg       conc.WaitGroup
		fetched  []*models.Status
		fetchErr error
		history  []models.TagHistory
	)
	wg.Go(func() {
		fetched, fetchErr = p.timeline.Fetch(ctx, day)
	})
	wg.Go(func() {
		history = p.usage.Fetch(ctx, day.Hashtag)
	})
	wg.Wait()

	if fetchErr != nil {
		return nil, fmt.Errorf("failed to fetch posts for #%s: %w", day.Hashtag, fetchErr)
	}
	result.Fetched = fetched

	logger.WithFields(log.Fields{
		"stage": "scoring",
		"posts": len(fetched),
	}).Info("Scoring posts")
	result.Ranked = Rank(p.scorer.ScoreAll(fetched))

	logger.WithField("stage", "filtering").Info("Filtering posts")
	result.Kept = ApplyFilters(result.Ranked, p.ignored, &DayFilter{Day: day})

	logger.WithField("stage", "aggregating").Info("Summing tag usage")
	result.History = history
	result.TotalUses = SumRecentUses(history)

	logger.WithFields(log.Fields{
		"stage": "composing",
		"kept":  len(result.Kept),
		"uses":  result.TotalUses,
	}).Info("Composing digest")
	result.Text, result.HasDigest = p.composer.Compose(day.Hashtag, Today(history), result.Kept, result.TotalUses)
	if result.HasDigest {
		metrics.DigestsComposed.Inc()
	}

	return result, nil
}
