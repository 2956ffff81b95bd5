package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cognimosyne/mediatranslator/loginlang"
	"github.com/cognimosyne/mediatranslator/session"
)

const creditUsageRoute = "/dashboard/credit-usage"

func newBalanceCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "balance",
		Short: "Show available credits and mileage",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := newLogger()
			a, err := newApp(cmd.Context(), logger)
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.guard.Require(cmd.Context(), creditUsageRoute); err != nil {
				return err
			}
			target := a.guard.ConsumeRedirectTarget()
			logger.Debug().Str("target", target).Msg("resuming requested destination")

			current := a.client.Current()
			if !current.Authenticated {
				return session.NotAuthenticatedErr
			}
			creds, err := a.broker.Obtain(cmd.Context(), current.IDToken)
			if err != nil {
				return err
			}

			result, err := a.balance.Query(cmd.Context(), current.IDToken, creds)
			if err != nil {
				// Previously shown values stay as they were; only the
				// failure itself is reported.
				return err
			}

			lang, cu := loginlang.ResolveCreditUsage(loginlang.ResolveInitial(a.durable))
			fmt.Println(cu.Title)
			fmt.Printf("%s: %s %s\n", cu.AvailableCreditsLabel, loginlang.FormatAmount(lang, float64(result.Credit)), cu.CreditsUnitLabel)
			fmt.Printf("%s: %s %s\n", cu.AvailableMileageLabel, loginlang.FormatAmount(lang, float64(result.Mileage)), cu.MileageUnitLabel)
			if result.UpdatedAt != nil {
				fmt.Printf("%s: %s\n", cu.LastUpdatedLabel, loginlang.FormatTimestamp(lang, *result.UpdatedAt))
			}
			return nil
		},
	}
}
