package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"tagdigest/config"
	"tagdigest/digest"
	"tagdigest/mastodon"
)

// Flags shared by every command that talks to the instance
func instanceFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to the bot configuration file, built-in defaults when empty",
			EnvVars: []string{"TAGDIGEST_CONFIG"},
		},
		&cli.StringFlag{
			Name:    "mastodon-url",
			Usage:   "Base URL of the Mastodon instance",
			EnvVars: []string{"MASTODON_URL"},
		},
		&cli.StringFlag{
			Name:    "client-key",
			Usage:   "Client key of the registered application",
			EnvVars: []string{"CLIENT_KEY"},
		},
		&cli.StringFlag{
			Name:    "client-secret",
			Usage:   "Client secret of the registered application",
			EnvVars: []string{"CLIENT_SECRET"},
		},
		&cli.StringFlag{
			Name:    "access-token",
			Usage:   "Access token of the bot account",
			EnvVars: []string{"ACCESS_TOKEN"},
		},
	}
}

// settings is the validated configuration of a command
type settings struct {
	creds config.Credentials
	bot   *config.Bot
}

func loadSettings(ctx *cli.Context) (*settings, error) {
	creds := config.Credentials{
		URL:          ctx.String("mastodon-url"),
		ClientKey:    ctx.String("client-key"),
		ClientSecret: ctx.String("client-secret"),
		AccessToken:  ctx.String("access-token"),
	}
	if err := config.Validate(&creds); err != nil {
		return nil, fmt.Errorf("missing or invalid credentials: %w", err)
	}

	bot, err := config.LoadConfig(ctx.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return &settings{creds: creds, bot: bot}, nil
}

func (s *settings) client() *mastodon.Client {
	return mastodon.NewClient(s.creds.URL, &mastodon.Credentials{
		ClientKey:    s.creds.ClientKey,
		ClientSecret: s.creds.ClientSecret,
		AccessToken:  s.creds.AccessToken,
	}, s.bot.Timeout())
}

func (s *settings) pipelineConfig() (digest.PipelineConfig, error) {
	loc, err := s.bot.Location()
	if err != nil {
		return digest.PipelineConfig{}, err
	}

	var hashtags [7]string
	copy(hashtags[:], s.bot.Hashtags)

	return digest.PipelineConfig{
		Calendar: digest.Calendar{
			Location: loc,
			Hashtags: hashtags,
		},
		Weights: digest.Weights{
			Favourites: s.bot.Weights.Favourites,
			Boosts:     s.bot.Weights.Boosts,
			Followers:  s.bot.Weights.Followers,
		},
		IgnoredAccounts: s.bot.IgnoredAccounts,
		PageSize:        s.bot.PageSize,
		TopN:            s.bot.TopN,
		BaseURL:         s.creds.URL,
	}, nil
}

func (s *settings) publishOptions() digest.PublishOptions {
	return digest.PublishOptions{
		Visibility: s.bot.Visibility,
		Language:   s.bot.Language,
		Sensitive:  s.bot.Sensitive,
	}
}
