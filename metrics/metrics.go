// Package metrics holds the Prometheus collectors for a digest run.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Registry is private to tagdigest so pushes only carry our own series
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

var (
	APIRequests = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "tagdigest_api_requests_total",
		Help: "Requests sent to the Mastodon API by endpoint and status code",
	}, []string{"endpoint", "code"})

	APIRequestDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tagdigest_api_request_duration_seconds",
		Help:    "Latency of Mastodon API requests",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms up to ~25s
	}, []string{"endpoint"})

	TimelinePages = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "tagdigest_timeline_pages_total",
		Help: "Tag timeline pages fetched",
	}, []string{"tag"})

	PostsFetched = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "tagdigest_posts_fetched_total",
		Help: "Posts from the current day returned by the tag timeline",
	}, []string{"tag"})

	PostsScored = factory.NewCounter(prometheus.CounterOpts{
		Name: "tagdigest_posts_scored_total",
		Help: "Posts that received a relevance score",
	})

	ScoringFailures = factory.NewCounter(prometheus.CounterOpts{
		Name: "tagdigest_scoring_failures_total",
		Help: "Posts skipped because they could not be scored",
	})

	PostsFiltered = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "tagdigest_posts_filtered_total",
		Help: "Posts removed by each filter",
	}, []string{"filter"})

	UsageFetchFailures = factory.NewCounter(prometheus.CounterOpts{
		Name: "tagdigest_usage_fetch_failures_total",
		Help: "Failed tag usage history lookups",
	})

	DigestsComposed = factory.NewCounter(prometheus.CounterOpts{
		Name: "tagdigest_digests_composed_total",
		Help: "Digests composed",
	})

	Publications = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "tagdigest_publications_total",
		Help: "Outcome of the publish decision (published, skipped, failed)",
	}, []string{"result"})
)

// Handler serves the registry in the Prometheus exposition format
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// Push sends the registry to a Pushgateway, replacing the previous run's
// series for the same job and tag.
func Push(url, job, tag string) error {
	return push.New(url, job).
		Gatherer(Registry).
		Grouping("tag", tag).
		Push()
}
