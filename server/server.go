package server

import (
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cache"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"tagdigest/digest"
	"tagdigest/metrics"
	"tagdigest/models"
)

type ServerConfig struct {
	// Pipeline builds the digest previews
	Pipeline *digest.Pipeline

	// How long a preview is reused before the instance is queried again.
	// Zero disables caching.
	CacheExpiration time.Duration

	// Now is the clock used to pick the day, time.Now when nil
	Now func() time.Time
}

// DigestResponse is the JSON form of a digest preview
type DigestResponse struct {
	Hashtag   string `json:"hashtag"`
	Day       string `json:"day"`
	Fetched   int    `json:"fetched"`
	Kept      int    `json:"kept"`
	TotalUses int64  `json:"totalUses"`
	Text      string `json:"text"`
}

// UsageResponse is the usage history of a hashtag
type UsageResponse struct {
	Hashtag   string              `json:"hashtag"`
	TotalUses int64               `json:"totalUses"`
	History   []models.TagHistory `json:"history"`
}

// Returns a fiber.App previewing digests without publishing them
func Server(config *ServerConfig) *fiber.App {
	now := config.Now
	if now == nil {
		now = time.Now
	}

	app := fiber.New(fiber.Config{
		JSONEncoder: sonic.Marshal,
		JSONDecoder: sonic.Unmarshal,
	})

	// Middleware to track the latency of each request
	app.Use(func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		log.WithFields(log.Fields{
			"method":  c.Method(),
			"route":   c.Route().Path,
			"status":  c.Response().StatusCode(),
			"latency": time.Since(start),
		}).Info("Request")
		return err
	})

	app.Use(requestid.New(requestid.Config{
		Generator: func() string {
			return uuid.New().String()
		},
	}))

	if config.CacheExpiration > 0 {
		app.Use(cache.New(cache.Config{
			Next: func(c *fiber.Ctx) bool {
				// Only cache previews, never health or metrics
				return c.Method() != fiber.MethodGet ||
					!(strings.HasPrefix(c.Path(), "/digest") || strings.HasPrefix(c.Path(), "/usage"))
			},
			Expiration: config.CacheExpiration,
			KeyGenerator: func(c *fiber.Ctx) string {
				return c.Request().URI().String()
			},
		}))
	}

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	// Today's digest as plain text, 204 when there is nothing to publish
	app.Get("/digest", func(c *fiber.Ctx) error {
		result, err := config.Pipeline.Build(c.UserContext(), now())
		if err != nil {
			log.WithError(err).Error("Error building digest preview")
			return c.Status(fiber.StatusBadGateway).SendString("Error building digest")
		}
		if !result.HasDigest {
			return c.SendStatus(fiber.StatusNoContent)
		}
		return c.SendString(result.Text)
	})

	app.Get("/digest.json", func(c *fiber.Ctx) error {
		result, err := config.Pipeline.Build(c.UserContext(), now())
		if err != nil {
			log.WithError(err).Error("Error building digest preview")
			return c.Status(fiber.StatusBadGateway).SendString("Error building digest")
		}
		return c.JSON(DigestResponse{
			Hashtag:   result.Day.Hashtag,
			Day:       result.Day.Key,
			Fetched:   len(result.Fetched),
			Kept:      len(result.Kept),
			TotalUses: result.TotalUses,
			Text:      result.Text,
		})
	})

	// Usage history of any tag, today's tag when none is given
	app.Get("/usage/:tag?", func(c *fiber.Ctx) error {
		tag := strings.TrimPrefix(c.Params("tag"), "#")
		if tag == "" {
			tag = config.Pipeline.Resolve(now()).Hashtag
		}
		if tag == "" {
			return c.Status(fiber.StatusNotFound).SendString("No hashtag configured for today")
		}

		history := config.Pipeline.Usage().Fetch(c.UserContext(), tag)
		return c.JSON(UsageResponse{
			Hashtag:   tag,
			TotalUses: digest.SumRecentUses(history),
			History:   history,
		})
	})

	return app
}
