package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// ErrInvalidConfig wraps every validation failure
var ErrInvalidConfig = errors.New("invalid configuration")

// Credentials identify the bot on its Mastodon instance. They come from the
// environment (MASTODON_URL, CLIENT_KEY, CLIENT_SECRET, ACCESS_TOKEN).
type Credentials struct {
	URL          string `validate:"required,url"`
	ClientKey    string `validate:"required"`
	ClientSecret string `validate:"required"`
	AccessToken  string `validate:"required"`
}

// TomlWeights are the relevance score weights
type TomlWeights struct {
	Favourites float64 `toml:"favourites" validate:"gte=0"`
	Boosts     float64 `toml:"boosts" validate:"gte=0"`
	Followers  float64 `toml:"followers" validate:"gte=0"`
}

// Bot holds the digest settings read from TOML
type Bot struct {
	Timezone string `toml:"timezone" validate:"required"`
	// Hashtags indexed by weekday, Sunday first. An empty entry skips that day.
	Hashtags        []string    `toml:"hashtags" validate:"len=7"`
	IgnoredAccounts []string    `toml:"ignored_accounts"`
	Weights         TomlWeights `toml:"weights"`
	PageSize        int         `toml:"page_size" validate:"min=1,max=40"`
	TopN            int         `toml:"top_n" validate:"min=1"`
	Visibility      string      `toml:"visibility" validate:"oneof=public unlisted private direct"`
	Language        string      `toml:"language" validate:"required"`
	Sensitive       bool        `toml:"sensitive"`
	TimeoutSeconds  int         `toml:"timeout_seconds" validate:"min=1"`
}

// Default reproduces the settings of the ursal.zone weekly tag calendar
func Default() Bot {
	return Bot{
		Timezone: "America/Sao_Paulo",
		Hashtags: []string{
			"almocodedomingo",
			"segundaficha",
			"tercinema",
			"quartacapa",
			"musiquinta",
			"sextaserie",
			"caturday",
		},
		IgnoredAccounts: []string{"TagsBR", "TrendsBR", "trending"},
		Weights: TomlWeights{
			Favourites: 0.4,
			Boosts:     0.3,
			Followers:  0.3,
		},
		PageSize:       40,
		TopN:           5,
		Visibility:     "public",
		Language:       "pt",
		TimeoutSeconds: 60,
	}
}

// LoadConfig reads bot settings from path on top of the defaults. An empty
// path returns the defaults.
func LoadConfig(path string) (*Bot, error) {
	bot := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		if err := toml.Unmarshal(data, &bot); err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	}

	if err := Validate(&bot); err != nil {
		return nil, err
	}
	if _, err := bot.Location(); err != nil {
		return nil, err
	}
	return &bot, nil
}

// Location loads the configured timezone
func (b *Bot) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(b.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: unknown timezone %q: %v", ErrInvalidConfig, b.Timezone, err)
	}
	return loc, nil
}

// Timeout is the per-request timeout for API calls
func (b *Bot) Timeout() time.Duration {
	return time.Duration(b.TimeoutSeconds) * time.Second
}

// LoadEnv loads .env from the working directory if present. Variables already
// set in the process environment win.
func LoadEnv() {
	if _, err := os.Stat(".env"); err != nil {
		log.Debug("No .env file loaded; relying on process environment")
		return
	}
	if err := godotenv.Load(".env"); err != nil {
		log.WithError(err).Warn("Failed to load .env")
		return
	}
	log.Debug("Loaded .env")
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// Validate checks a settings struct against its validate tags
func Validate(v any) error {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})

	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	problems := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		if fe.Param() != "" {
			problems = append(problems, fmt.Sprintf("%s must satisfy %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		} else {
			problems = append(problems, fmt.Sprintf("%s must satisfy %s", fe.Field(), fe.Tag()))
		}
	}
	return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
}
