package cmd

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"tagdigest/config"
)

func RootApp() *cli.App {
	return &cli.App{
		Name:  "tagdigest",
		Usage: "A daily digest of the top posts for a Mastodon hashtag",
		Description: `A Mastodon bot that celebrates the hashtag of the day.

		Each weekday has its own hashtag. tagdigest fetches today's posts for
		that hashtag, ranks them by favourites, boosts and the author's
		followers, and composes a digest of the top posts together with the
		tag's usage statistics. After confirmation the digest is posted back
		to the instance.

		Credentials are read from the environment or a .env file:

		MASTODON_URL, CLIENT_KEY, CLIENT_SECRET, ACCESS_TOKEN

		Other flags can generally be set via environment variables, e.g.:

		--config => TAGDIGEST_CONFIG=bot.toml
		--log-level => TAGDIGEST_LOG_LEVEL=debug
		`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"TAGDIGEST_LOG_LEVEL"},
			},
		},
		Before: func(ctx *cli.Context) error {
			level, err := log.ParseLevel(ctx.String("log-level"))
			if err != nil {
				return err
			}
			log.SetLevel(level)
			log.SetOutput(os.Stderr)
			return nil
		},
		Commands: []*cli.Command{
			runCmd(),
			usageCmd(),
			verifyCmd(),
			serveCmd(),
		},
		Action: func(ctx *cli.Context) error {
			// Show help if no command is specified
			return ctx.App.Run([]string{"", "help"})
		},
	}
}

// Execute loads .env and runs the CLI
func Execute() {
	config.LoadEnv()

	if err := RootApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
