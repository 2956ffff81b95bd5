package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and discard cached credentials",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := newLogger()
			a, err := newApp(cmd.Context(), logger)
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.guard.SignOut(cmd.Context()); err != nil {
				return err
			}
			a.scoped.Clear()

			fmt.Println("Signed out.")
			return nil
		},
	}
}
