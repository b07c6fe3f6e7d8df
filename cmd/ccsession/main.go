// Command ccsession is a terminal client for the CultureConnect session
// coordinator: log in, inspect the current session, link accounts, and
// log out, with the session cookie and user snapshot persisted between
// invocations.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
