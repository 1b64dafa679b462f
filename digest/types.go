// Package digest builds the daily hashtag digest: it fetches the day's posts,
// scores and filters them, and renders the summary text.
package digest

import (
	"context"

	"tagdigest/models"
)

// TimelineClient pages through a hashtag timeline
type TimelineClient interface {
	GetTagTimeline(ctx context.Context, tag string, limit int, maxID string) ([]*models.Status, error)
}

// TagClient looks up a hashtag and its usage history
type TagClient interface {
	GetTag(ctx context.Context, tag string) (*models.Tag, error)
}

// StatusPoster creates a new status
type StatusPoster interface {
	PostStatus(ctx context.Context, toot *models.Toot) (*models.Status, error)
}

// Source is everything the pipeline reads from the instance
type Source interface {
	TimelineClient
	TagClient
}

// ScoredPost is a status with its relevance score. It is built once by the
// Scorer and never changed afterwards.
type ScoredPost struct {
	*models.Status
	RelevanceScore float64
}

// Username of the author. Scored posts always carry an account.
func (p ScoredPost) Username() string {
	return p.Account.Username
}
