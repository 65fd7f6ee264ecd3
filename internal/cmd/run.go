package cmd

import (
	"github.com/spf13/cobra"

	"github.com/astrolox/mysql-initdb/internal/bootstrap"
)

var runConfigPath string

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Initialize the data directory and provision accounts",
	Long: `Run the full bootstrap sequence.

Provisioning is driven by the MYSQL_* environment variables (see the root
help), optionally layered over a TOML configuration file. An already
initialized data directory makes this a successful no-op.

Exit status is 0 on success or no-op, 1 on any fatal condition.`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVar(&runConfigPath, "config", "", "optional TOML configuration file")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := bootstrap.LoadConfig(runConfigPath)
	if err != nil {
		return err
	}
	return bootstrap.New(cfg).Run()
}
