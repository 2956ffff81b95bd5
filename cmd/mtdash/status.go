package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cognimosyne/mediatranslator/credentials"
	"github.com/cognimosyne/mediatranslator/loginlang"
)

func newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current session and credential state",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := newLogger()
			a, err := newApp(cmd.Context(), logger)
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.client.Load(cmd.Context()); err != nil {
				return err
			}

			lang := loginlang.ResolveInitial(a.durable)
			current := a.client.Current()
			if !current.Authenticated {
				fmt.Println("Session:     signed out")
				fmt.Printf("Language:    %s\n", lang)
				return nil
			}

			fmt.Printf("Session:     signed in as %s\n", current.Claims.Email)
			fmt.Printf("Expires:     %s\n", loginlang.FormatTimestamp(lang, current.Claims.ExpiresAt))
			fmt.Printf("Language:    %s\n", lang)

			if cached, ok := credentials.Load(a.scoped); ok {
				if cached.Expiration != nil {
					fmt.Printf("Credentials: cached, expire %s\n", loginlang.FormatTimestamp(lang, *cached.Expiration))
				} else {
					fmt.Println("Credentials: cached, no reported expiration")
				}
			} else {
				fmt.Println("Credentials: none cached")
			}
			return nil
		},
	}
}
