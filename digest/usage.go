package digest

import (
	"context"

	log "github.com/sirupsen/logrus"

	"tagdigest/metrics"
	"tagdigest/models"
)

// UsageFetcher reads the recent usage history of a hashtag
type UsageFetcher struct {
	client TagClient
}

func NewUsageFetcher(client TagClient) *UsageFetcher {
	return &UsageFetcher{client: client}
}

// Fetch returns the usage history of tag, most recent day first. The window
// length is chosen by the server. Failures are logged and yield an empty
// history so the digest can still be built.
func (u *UsageFetcher) Fetch(ctx context.Context, tag string) []models.TagHistory {
	result, err := u.client.GetTag(ctx, tag)
	if err != nil {
		metrics.UsageFetchFailures.Inc()
		log.WithFields(log.Fields{
			"tag":   tag,
			"error": err,
		}).Error("Failed to get tag usage history")
		return []models.TagHistory{}
	}
	if result == nil || result.History == nil {
		return []models.TagHistory{}
	}
	return result.History
}

// SumRecentUses adds up the uses of every history entry. Entries with an
// unreadable count are skipped.
func SumRecentUses(history []models.TagHistory) int64 {
	var total int64
	for _, entry := range history {
		if entry.Uses == "" {
			continue
		}
		uses, err := entry.Uses.Int()
		if err != nil {
			log.WithFields(log.Fields{
				"day":  entry.Day,
				"uses": entry.Uses,
			}).Warn("Ignoring history entry with invalid use count")
			continue
		}
		total += uses
	}
	return total
}

// Today returns the most recent history entry, or nil when there is none
func Today(history []models.TagHistory) *models.TagHistory {
	if len(history) == 0 {
		return nil
	}
	entry := history[0]
	return &entry
}
