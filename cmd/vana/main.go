package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/sagarc03/vana/config"
)

var version = "dev"

var configFiles []string

var rootCmd = &cobra.Command{
	Version: version,
	Use:     "vana",
	Short:   "Object metadata registry and access broker",
	Long: `Vana tracks object metadata and access control in a database and
brokers time-limited signed URLs against the storage backends that hold
the actual bytes. Clients never receive storage credentials; they receive
URLs that expire.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configFiles, cmd.Flags())
		if err != nil {
			return err
		}
		cmd.SetContext(config.WithContext(cmd.Context(), cfg))
		setupLogging(cfg.Log.Level)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringSliceVar(&configFiles, "config", nil, "config file path(s), later files override earlier ones (default: ./config.yaml)")
	rootCmd.PersistentFlags().String("db-type", "", "database type: sqlite, postgres (default: sqlite, env: VANA_DATABASE_TYPE)")
	rootCmd.PersistentFlags().String("db-dsn", "", "database connection string (default: vana.db, env: VANA_DATABASE_DSN)")
	rootCmd.PersistentFlags().String("messages-file", "", "error message catalog file (env: VANA_MESSAGES_FILE)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
