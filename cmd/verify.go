package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"
)

func verifyCmd() *cli.Command {
	return &cli.Command{
		Name:        "verify",
		Usage:       "Check the configured credentials",
		Description: `Asks the instance which account the access token belongs to.`,
		Flags:       instanceFlags(),
		Action: func(ctx *cli.Context) error {
			s, err := loadSettings(ctx)
			if err != nil {
				return err
			}

			account, err := s.client().VerifyCredentials(ctx.Context)
			if err != nil {
				return fmt.Errorf("could not verify credentials: %w", err)
			}

			fmt.Printf("Authenticated as @%s (%d followers)\n", account.Acct, account.Followers())
			return nil
		},
	}
}
