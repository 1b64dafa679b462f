package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/cqroot/prompt"
	log "github.com/sirupsen/logrus"

	"tagdigest/metrics"
	"tagdigest/models"
)

const confirmQuestion = "Do you want to toot? (y/n)"

// Confirmer asks the operator a yes/no question and returns the raw answer
type Confirmer interface {
	Confirm(question string) (string, error)
}

// promptConfirmer asks on the terminal
type promptConfirmer struct{}

func (promptConfirmer) Confirm(question string) (string, error) {
	return prompt.New().Ask(question).Input("")
}

// Affirmative reports whether answer approves publishing. Only "y" counts,
// in any case.
func Affirmative(answer string) bool {
	return strings.EqualFold(strings.TrimSpace(answer), "y")
}

type digestPublisher interface {
	Publish(ctx context.Context, text string) (*models.Status, error)
}

type Decision string

const (
	Published Decision = "published"
	Skipped   Decision = "skipped"
	Failed    Decision = "failed"
)

type decideOptions struct {
	// AssumeYes publishes without asking
	AssumeYes bool
	// DryRun never publishes
	DryRun bool
}

// decide asks for confirmation and publishes text when approved. It makes at
// most one publish attempt.
func decide(ctx context.Context, text string, confirmer Confirmer, publisher digestPublisher, opts decideOptions) (Decision, *models.Status, error) {
	if opts.DryRun {
		log.Info("Dry run, not publishing")
		metrics.Publications.WithLabelValues(string(Skipped)).Inc()
		return Skipped, nil, nil
	}

	if !opts.AssumeYes {
		answer, err := confirmer.Confirm(confirmQuestion)
		if err != nil {
			return Failed, nil, fmt.Errorf("confirmation aborted: %w", err)
		}
		if !Affirmative(answer) {
			log.WithField("answer", answer).Info("Publishing skipped")
			metrics.Publications.WithLabelValues(string(Skipped)).Inc()
			return Skipped, nil, nil
		}
	}

	status, err := publisher.Publish(ctx, text)
	if err != nil {
		metrics.Publications.WithLabelValues(string(Failed)).Inc()
		return Failed, nil, err
	}
	metrics.Publications.WithLabelValues(string(Published)).Inc()
	return Published, status, nil
}
