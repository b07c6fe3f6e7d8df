package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var accountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "List accounts linked to this session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		sess, err := openSession()
		if err != nil {
			return err
		}
		defer sess.close()

		// Resolve the active account first; the listing is keyed on it.
		user, err := sess.coordinator.CheckSession(cmd.Context())
		if err != nil {
			return err
		}
		if user == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "not logged in")
			return nil
		}

		list, err := sess.coordinator.LoadSavedAccounts(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "* %s (active)\n", user.Email)
		for _, email := range list {
			fmt.Fprintf(out, "  %s\n", email)
		}
		return nil
	},
}
