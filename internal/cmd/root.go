// Package cmd implements the mysql-initdb command tree.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/astrolox/mysql-initdb/internal/style"
)

var rootCmd = &cobra.Command{
	Use:   "mysql-initdb",
	Short: "One-time bootstrap of a MySQL data directory",
	Long: `mysql-initdb performs first-run initialization of a MySQL data
directory inside a container deployment.

It discovers the engine's configured data directory, initializes it if
empty, starts a temporary unnetworked server, provisions accounts and
databases from MYSQL_* environment variables, runs seed scripts from
/docker-entrypoint-initdb.d, and stops the temporary server so the real
service supervisor can start fresh.

Running against an already-initialized data directory is a no-op. A run
interrupted mid-provisioning leaves a marker file behind that makes every
subsequent run fail until an operator inspects and clears the state.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the command tree and returns the process exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, style.Error("Error:")+" "+err.Error())
		return 1
	}
	return 0
}
