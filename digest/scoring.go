package digest

import (
	"errors"
	"math"
	"sort"

	log "github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc/iter"

	"tagdigest/metrics"
	"tagdigest/models"
)

// ErrMissingAuthor marks a status that came without account information
var ErrMissingAuthor = errors.New("status has no author")

// Weights of the relevance score terms
type Weights struct {
	Favourites float64
	Boosts     float64
	Followers  float64
}

// DefaultWeights favour engagement slightly over the author's reach
var DefaultWeights = Weights{
	Favourites: 0.4,
	Boosts:     0.3,
	Followers:  0.3,
}

// Scorer computes relevance scores
type Scorer struct {
	Weights Weights
}

// Score computes the relevance of a single status, rounded to one decimal:
//
//	w.Favourites*favourites + w.Boosts*reblogs + w.Followers*followers
//
// Missing counters count as zero. A status without an author cannot be
// attributed and is rejected with ErrMissingAuthor.
func (s Scorer) Score(status *models.Status) (ScoredPost, error) {
	if status == nil || status.Account == nil || status.Account.ID == "" {
		return ScoredPost{}, ErrMissingAuthor
	}

	raw := s.Weights.Favourites*float64(status.Favourites()) +
		s.Weights.Boosts*float64(status.Reblogs()) +
		s.Weights.Followers*float64(status.Account.Followers())

	return ScoredPost{
		Status:         status,
		RelevanceScore: round1(raw),
	}, nil
}

type scoreResult struct {
	post ScoredPost
	err  error
}

// ScoreAll scores the statuses concurrently. Results keep the input order;
// statuses that fail to score are logged and left out.
func (s Scorer) ScoreAll(statuses []*models.Status) []ScoredPost {
	results := iter.Map(statuses, func(status **models.Status) scoreResult {
		post, err := s.Score(*status)
		return scoreResult{post: post, err: err}
	})

	scored := make([]ScoredPost, 0, len(results))
	for i, result := range results {
		if result.err != nil {
			metrics.ScoringFailures.Inc()
			id := "unknown"
			if statuses[i] != nil && statuses[i].ID != "" {
				id = statuses[i].ID
			}
			log.WithFields(log.Fields{
				"status": id,
				"error":  result.err,
			}).Warn("Skipping status that could not be scored")
			continue
		}
		scored = append(scored, result.post)
	}

	metrics.PostsScored.Add(float64(len(scored)))
	return scored
}

// Rank returns a copy of posts sorted by descending relevance. Posts with equal
// scores keep their relative order.
func Rank(posts []ScoredPost) []ScoredPost {
	ranked := make([]ScoredPost, len(posts))
	copy(ranked, posts)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].RelevanceScore > ranked[j].RelevanceScore
	})
	return ranked
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}
