package digest_test

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"

	"tagdigest/digest"
	"tagdigest/metrics"
)

func ids(posts []digest.ScoredPost) []string {
	return lo.Map(posts, func(p digest.ScoredPost, _ int) string { return p.ID })
}

func TestIgnoredAccountsFilter(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	posts := []digest.ScoredPost{
		{Status: newStatus("1", now, "alice", 0, 0, 0)},
		{Status: newStatus("2", now, "TagsBR", 0, 0, 0)},
		{Status: newStatus("3", now, "bob", 0, 0, 0)},
		{Status: newStatus("4", now, "trending", 0, 0, 0)},
		{Status: newStatus("5", now, "tagsbr", 0, 0, 0)},
	}
	filter := digest.NewIgnoredAccountsFilter(digest.DefaultIgnoredAccounts)

	before := testutil.ToFloat64(metrics.PostsFiltered.WithLabelValues("ignored_accounts"))
	once := digest.ApplyFilters(posts, filter)

	assert.Equal(t, []string{"1", "3", "5"}, ids(once))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.PostsFiltered.WithLabelValues("ignored_accounts"))-before)

	twice := digest.ApplyFilters(once, filter)
	assert.Equal(t, once, twice)
}

func TestDayFilter(t *testing.T) {
	cal := digest.Calendar{Location: saoPaulo(t), Hashtags: weekTags}
	day := cal.Resolve(time.Date(2024, 6, 1, 15, 0, 0, 0, time.UTC))

	posts := []digest.ScoredPost{
		{Status: newStatus("today", day.Start.Add(time.Hour), "a", 0, 0, 0)},
		{Status: newStatus("yesterday", day.Start.Add(-time.Minute), "b", 0, 0, 0)},
		{Status: newStatus("midnight", day.Start, "c", 0, 0, 0)},
		{Status: newStatus("tomorrow", day.End, "d", 0, 0, 0)},
	}

	kept := digest.ApplyFilters(posts, &digest.DayFilter{Day: day})
	assert.Equal(t, []string{"today", "midnight"}, ids(kept))
}

func TestFiltersCompose(t *testing.T) {
	cal := digest.Calendar{Location: saoPaulo(t), Hashtags: weekTags}
	day := cal.Resolve(time.Date(2024, 6, 1, 15, 0, 0, 0, time.UTC))

	posts := []digest.ScoredPost{
		{Status: newStatus("1", day.Start.Add(time.Hour), "alice", 0, 0, 0)},
		{Status: newStatus("2", day.Start.Add(time.Hour), "TrendsBR", 0, 0, 0)},
		{Status: newStatus("3", day.Start.Add(-time.Hour), "bob", 0, 0, 0)},
		{Status: newStatus("4", day.Start.Add(2*time.Hour), "carol", 0, 0, 0)},
	}
	ignored := digest.NewIgnoredAccountsFilter(digest.DefaultIgnoredAccounts)
	byDay := &digest.DayFilter{Day: day}

	assert.Equal(t, []string{"1", "4"}, ids(digest.ApplyFilters(posts, ignored, byDay)))
	assert.Equal(t, []string{"1", "4"}, ids(digest.ApplyFilters(posts, byDay, ignored)))
}

func TestApplyFiltersWithoutFilters(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	posts := []digest.ScoredPost{{Status: newStatus("1", now, "alice", 0, 0, 0)}}

	assert.Equal(t, posts, digest.ApplyFilters(posts))
}
