package digest

import (
	"github.com/samber/lo"

	"tagdigest/metrics"
)

// Filter decides whether a scored post stays in the digest
type Filter interface {
	Name() string
	Keep(post ScoredPost) bool
}

// ApplyFilters keeps the posts every filter accepts, preserving their order
func ApplyFilters(posts []ScoredPost, filters ...Filter) []ScoredPost {
	for _, filter := range filters {
		before := len(posts)
		posts = lo.Filter(posts, func(post ScoredPost, _ int) bool {
			return filter.Keep(post)
		})
		metrics.PostsFiltered.WithLabelValues(filter.Name()).Add(float64(before - len(posts)))
	}
	return posts
}

// IgnoredAccountsFilter drops posts from aggregator and trend accounts
type IgnoredAccountsFilter struct {
	usernames map[string]struct{}
}

// DefaultIgnoredAccounts repost trending tags and would otherwise top every digest
var DefaultIgnoredAccounts = []string{"TagsBR", "TrendsBR", "trending"}

func NewIgnoredAccountsFilter(usernames []string) *IgnoredAccountsFilter {
	return &IgnoredAccountsFilter{
		usernames: lo.Associate(usernames, func(username string) (string, struct{}) {
			return username, struct{}{}
		}),
	}
}

func (f *IgnoredAccountsFilter) Name() string {
	return "ignored_accounts"
}

func (f *IgnoredAccountsFilter) Keep(post ScoredPost) bool {
	_, ignored := f.usernames[post.Username()]
	return !ignored
}

// DayFilter keeps posts created on the given day
type DayFilter struct {
	Day Day
}

func (f *DayFilter) Name() string {
	return "day"
}

func (f *DayFilter) Keep(post ScoredPost) bool {
	return f.Day.Contains(post.CreatedAt)
}

var _ Filter = (*IgnoredAccountsFilter)(nil)
var _ Filter = (*DayFilter)(nil)
