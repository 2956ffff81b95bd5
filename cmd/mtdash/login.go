package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/cognimosyne/mediatranslator/loginlang"
)

func newLoginCommand() *cobra.Command {
	var lang string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in through the hosted login page",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := newLogger()
			a, err := newApp(cmd.Context(), logger)
			if err != nil {
				return err
			}
			defer a.close()

			if lang != "" {
				code, ok := loginlang.Normalize(lang)
				if !ok {
					return errors.Errorf("unsupported language %q", lang)
				}
				loginlang.Remember(a.durable, code)
			}

			if err := a.guard.Require(cmd.Context(), ""); err != nil {
				return err
			}

			current := a.client.Current()
			fmt.Printf("Signed in as %s\n", current.Claims.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&lang, "lang", "", "hosted UI language, e.g. ko, de, pt_BR")
	return cmd
}
