package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"tagdigest/digest"
	"tagdigest/metrics"
)

func runCmd() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Build today's digest and publish it after confirmation",
		Description: `Fetches today's posts for the hashtag of the day, ranks them and prints
the digest. Asks before posting the digest to the instance.

Use --yes when running from cron, --dry-run to only print the digest.`,
		Flags: append(instanceFlags(),
			&cli.BoolFlag{
				Name:    "yes",
				Aliases: []string{"y"},
				Usage:   "Publish without asking for confirmation",
				EnvVars: []string{"TAGDIGEST_YES"},
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Print the digest but never publish it",
			},
			&cli.StringFlag{
				Name:    "pushgateway",
				Usage:   "Prometheus Pushgateway URL to push run metrics to",
				EnvVars: []string{"TAGDIGEST_PUSHGATEWAY"},
			},
		),
		Action: func(ctx *cli.Context) error {
			s, err := loadSettings(ctx)
			if err != nil {
				return err
			}

			cfg, err := s.pipelineConfig()
			if err != nil {
				return err
			}

			client := s.client()
			pipeline := digest.NewPipeline(client, cfg)

			now := time.Now()
			day := pipeline.Resolve(now)
			fmt.Println("Tag of the day:", day.Hashtag, day.Key)

			defer pushMetrics(ctx.String("pushgateway"), day.Hashtag)

			result, err := pipeline.Build(ctx.Context, now)
			if err != nil {
				return err
			}

			fmt.Printf("Retrieved %d posts, %d kept\n", len(result.Fetched), len(result.Kept))

			_, err = present(ctx.Context, os.Stdout, result, promptConfirmer{},
				digest.NewPublisher(client, s.publishOptions()),
				decideOptions{
					AssumeYes: ctx.Bool("yes"),
					DryRun:    ctx.Bool("dry-run"),
				})
			return err
		},
	}
}

// present writes the digest to out and only then asks whether to publish it,
// so the text survives a failed publish. Without a digest nothing is asked.
func present(ctx context.Context, out io.Writer, result *digest.Result, confirmer Confirmer, publisher digestPublisher, opts decideOptions) (Decision, error) {
	if !result.HasDigest {
		fmt.Fprintln(out, "Nothing to publish today")
		return Skipped, nil
	}

	fmt.Fprintln(out, result.Text)

	decision, status, err := decide(ctx, result.Text, confirmer, publisher, opts)
	if err != nil {
		return decision, err
	}
	if decision == Published {
		fmt.Fprintln(out, "Published digest", status.URL)
	}
	return decision, nil
}

func pushMetrics(url, tag string) {
	if url == "" {
		return
	}
	if err := metrics.Push(url, "tagdigest", tag); err != nil {
		log.WithError(err).Warn("Failed to push metrics")
	}
}
