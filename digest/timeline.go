package digest

import (
	"context"
	"errors"
	"fmt"

	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"

	"tagdigest/mastodon"
	"tagdigest/metrics"
	"tagdigest/models"
)

// DefaultPageSize is the largest page the tag timeline endpoint serves
const DefaultPageSize = 40

// TimelineFetcher collects the posts of one day from a hashtag timeline
type TimelineFetcher struct {
	client   TimelineClient
	pageSize int
}

func NewTimelineFetcher(client TimelineClient, pageSize int) *TimelineFetcher {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &TimelineFetcher{client: client, pageSize: pageSize}
}

// Fetch pages backwards through the timeline of day.Hashtag until it reaches
// posts older than day.Start. Pages are requested one after another because
// each cursor is the id of the previous page's last post.
//
// A page that is not a list ends the walk early and the posts gathered so far
// are returned without an error. Any other failure is returned.
func (f *TimelineFetcher) Fetch(ctx context.Context, day Day) ([]*models.Status, error) {
	logger := log.WithField("tag", day.Hashtag)
	logger.Infof("Fetching posts for #%s", day.Hashtag)

	var (
		posts []*models.Status
		maxID string
		page  int
	)

	for {
		page++
		batch, err := f.client.GetTagTimeline(ctx, day.Hashtag, f.pageSize, maxID)
		if errors.Is(err, mastodon.ErrMalformedResponse) {
			logger.WithFields(log.Fields{
				"page":  page,
				"error": err,
			}).Warn("Unexpected timeline page, keeping posts fetched so far")
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to fetch page %d of #%s: %w", page, day.Hashtag, err)
		}

		metrics.TimelinePages.WithLabelValues(day.Hashtag).Inc()

		current := lo.Filter(batch, func(status *models.Status, _ int) bool {
			return status != nil && day.Started(status.CreatedAt)
		})
		posts = append(posts, current...)

		logger.WithFields(log.Fields{
			"page":    page,
			"fetched": len(current),
			"total":   len(posts),
		}).Info("Fetched timeline page")

		if len(batch) < f.pageSize || len(current) < f.pageSize {
			break
		}

		next := current[len(current)-1].ID
		if next == "" || next == maxID {
			logger.WithField("page", page).Warn("Timeline cursor did not advance, stopping")
			break
		}
		maxID = next
	}

	metrics.PostsFetched.WithLabelValues(day.Hashtag).Add(float64(len(posts)))
	logger.WithField("total", len(posts)).Infof("Fetched %d posts", len(posts))

	return posts, nil
}
