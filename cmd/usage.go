package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"tagdigest/digest"
)

func usageCmd() *cli.Command {
	return &cli.Command{
		Name:  "usage",
		Usage: "Show the recent usage history of a hashtag",
		Description: `Prints the daily uses and participants of a hashtag as reported by
the instance, followed by the total over the whole window.

Defaults to the hashtag of the day.`,
		Flags: append(instanceFlags(),
			&cli.StringFlag{
				Name:    "tag",
				Aliases: []string{"t"},
				Usage:   "Hashtag to look up, without the leading #",
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

			tag := strings.TrimPrefix(ctx.String("tag"), "#")
			if tag == "" {
				tag = cfg.Calendar.Resolve(time.Now()).Hashtag
			}
			if tag == "" {
				return fmt.Errorf("no hashtag given and none configured for today")
			}

			history := digest.NewUsageFetcher(s.client()).Fetch(ctx.Context, tag)

			fmt.Printf("Usage of #%s\n", tag)
			for _, entry := range history {
				day := entry.Day
				if t, ok := entry.Date(); ok {
					day = t.Format(digest.DateLayout)
				}
				fmt.Printf("%s  uses: %-6s accounts: %s\n", day, entry.Uses, entry.Accounts)
			}
			fmt.Println("Total:", digest.SumRecentUses(history))
			return nil
		},
	}
}
