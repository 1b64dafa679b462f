package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"tagdigest/digest"
	"tagdigest/server"
)

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve digest previews over HTTP",
		Description: `Starts an HTTP server that builds today's digest on request without
ever publishing it.

GET /digest       digest text, 204 when there is nothing to publish
GET /digest.json  digest with run statistics
GET /usage/:tag   usage history of a hashtag
GET /metrics      Prometheus metrics`,
		Flags: append(instanceFlags(),
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Value:   3000,
				Usage:   "Port to listen on",
				EnvVars: []string{"TAGDIGEST_PORT"},
			},
			&cli.DurationFlag{
				Name:    "cache",
				Value:   5 * time.Minute,
				Usage:   "How long previews are reused, 0 to disable",
				EnvVars: []string{"TAGDIGEST_CACHE"},
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

			app := server.Server(&server.ServerConfig{
				Pipeline:        digest.NewPipeline(s.client(), cfg),
				CacheExpiration: ctx.Duration("cache"),
			})

			// Graceful shutdown
			c := make(chan os.Signal, 1)
			signal.Notify(c, os.Interrupt)
			go func() {
				<-c
				fmt.Println("Gracefully shutting down...")
				if err := app.ShutdownWithTimeout(60 * time.Second); err != nil {
					log.WithError(err).Error("Error shutting down server")
				}
			}()

			fmt.Println("Starting server...")
			return app.Listen(fmt.Sprintf(":%d", ctx.Int("port")))
		},
	}
}
