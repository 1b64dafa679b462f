package digest

import (
	"context"
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"tagdigest/mastodon"
	"tagdigest/models"
)

// ErrEmptyDigest is returned when asked to publish blank text
var ErrEmptyDigest = errors.New("digest text cannot be empty")

// PublishOptions are the fixed attributes of a published digest
type PublishOptions struct {
	Visibility string
	Language   string
	Sensitive  bool
}

// DefaultPublishOptions posts publicly in Portuguese
var DefaultPublishOptions = PublishOptions{
	Visibility: "public",
	Language:   "pt",
}

// Publisher posts digests to the instance
type Publisher struct {
	client  StatusPoster
	options PublishOptions
}

func NewPublisher(client StatusPoster, options PublishOptions) *Publisher {
	return &Publisher{client: client, options: options}
}

// Publish makes a single attempt to post text. Blank text is rejected before
// any request is made. A response without a status id is a failure.
func (p *Publisher) Publish(ctx context.Context, text string) (*models.Status, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyDigest
	}

	log.WithField("length", len(text)).Info("Publishing digest")

	status, err := p.client.PostStatus(ctx, &models.Toot{
		Status:     text,
		Sensitive:  p.options.Sensitive,
		Visibility: p.options.Visibility,
		Language:   p.options.Language,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to publish digest: %w", err)
	}
	if status == nil || status.ID == "" {
		return nil, fmt.Errorf("failed to publish digest: %w", mastodon.ErrMalformedResponse)
	}

	log.WithFields(log.Fields{
		"status": status.ID,
		"url":    status.URL,
	}).Info("Published digest")
	return status, nil
}
