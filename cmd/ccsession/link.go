package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	ccsession "github.com/Harshit-Bhuju/CultureConnect-sub001"
)

var linkCmd = &cobra.Command{
	Use:   "link <email>",
	Short: "Link another account and switch to it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := openSession()
		if err != nil {
			return err
		}
		defer sess.close()

		if _, err := sess.coordinator.CheckSession(cmd.Context()); err != nil {
			return err
		}

		user, err := sess.coordinator.LinkAccount(cmd.Context(), args[0])
		switch {
		case err == nil:
			fmt.Fprintf(cmd.OutOrStdout(), "linked; now active as %s\n", user.Email)
			return nil
		case errors.Is(err, ccsession.ErrSelfLink):
			return errors.New("that account is already active")
		case errors.Is(err, ccsession.ErrDuplicateLink):
			return errors.New("that account is already linked")
		case errors.Is(err, ccsession.ErrNoActiveAccount):
			return errors.New("log in before linking accounts")
		default:
			return err
		}
	},
}
