package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cognimosyne/mediatranslator/internal/config"
	"github.com/cognimosyne/mediatranslator/signup"
)

func newSignupCommand() *cobra.Command {
	var (
		email string
		phone string
		code  string
	)

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Register a new account",
		Long:  "Register a new account with the user pool. Run once with --email to request a confirmation code, then again with --email and --code to confirm.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := newLogger()
			cfg := config.New()

			api, err := signup.NewUserPoolClient(cmd.Context(), cfg.GetRegion())
			if err != nil {
				return err
			}
			service, err := signup.NewService(api, cfg.GetClientID(), signup.WithLogger(logger))
			if err != nil {
				return err
			}

			if code != "" {
				if err := service.Confirm(cmd.Context(), email, code); err != nil {
					return err
				}
				fmt.Println("Account confirmed. Run `mtdash login` to sign in.")
				return nil
			}

			reg, err := service.Register(cmd.Context(), email, phone)
			if err != nil {
				return err
			}
			fmt.Printf("Account created. Generated password: %s\n", reg.Password)
			if reg.ConfirmationSent {
				fmt.Printf("A confirmation code was sent to %s.\n", reg.CodeDeliveredTo)
				fmt.Println("Confirm with: mtdash signup --email <email> --code <code>")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email address")
	cmd.Flags().StringVar(&phone, "phone", "", "phone number, local Korean numbers get +82")
	cmd.Flags().StringVar(&code, "code", "", "confirmation code from the signup email")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}
