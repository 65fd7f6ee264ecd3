package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/astrolox/mysql-initdb/internal/bootstrap"
	"github.com/astrolox/mysql-initdb/internal/mysqld"
	"github.com/astrolox/mysql-initdb/internal/style"
)

var statusConfigPath string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report data directory initialization state",
	Long: `Report the discovered data directory, whether it has been
initialized, and whether an incomplete-run marker is present. Modifies
nothing.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

var datadirCmd = &cobra.Command{
	Use:   "datadir",
	Short: "Print the engine's configured data directory",
	Args:  cobra.NoArgs,
	RunE:  runDatadir,
}

func init() {
	statusCmd.Flags().StringVar(&statusConfigPath, "config", "", "optional TOML configuration file")
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(datadirCmd)
}

// resolveEngine builds the engine configuration and fills in the data
// directory, discovering it from the server binary when unset.
func resolveEngine(configPath string) (*mysqld.Config, error) {
	cfg, err := bootstrap.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	engine := cfg.EngineConfig()
	if engine.DataDir == "" {
		dataDir, err := mysqld.DiscoverDataDir(engine)
		if err != nil {
			return nil, err
		}
		engine.DataDir = dataDir
	}
	return engine, nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	engine, err := resolveEngine(statusConfigPath)
	if err != nil {
		return err
	}

	fmt.Printf("data directory: %s\n", engine.DataDir)

	if engine.Initialized() {
		fmt.Println("initialized:    yes")
	} else {
		fmt.Println("initialized:    no")
	}

	if bootstrap.IncompleteMarkerPresent(engine.DataDir) {
		fmt.Println(style.Warn("marker:         present — a prior run crashed mid-provisioning"))
	} else {
		fmt.Println("marker:         absent")
	}
	return nil
}

func runDatadir(cmd *cobra.Command, args []string) error {
	engine, err := resolveEngine("")
	if err != nil {
		return err
	}
	fmt.Println(engine.DataDir)
	return nil
}
