package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the account owning the current session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		sess, err := openSession()
		if err != nil {
			return err
		}
		defer sess.close()

		user, err := sess.coordinator.CheckSession(cmd.Context())
		if err != nil {
			return err
		}
		if user == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "not logged in")
			return nil
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "email:  %s\n", user.Email)
		fmt.Fprintf(out, "name:   %s\n", user.Name)
		fmt.Fprintf(out, "role:   %s\n", user.Role)
		if user.IsSeller() {
			fmt.Fprintf(out, "seller: %s\n", user.SellerID)
		}
		if user.IsTeacher() {
			fmt.Fprintf(out, "teacher: %s\n", user.TeacherID)
		}
		if user.Location != "" {
			fmt.Fprintf(out, "location: %s\n", user.Location)
		}
		return nil
	},
}
