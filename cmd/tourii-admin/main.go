package main

import (
	"fmt"
	"os"
	"strings"

	"tourii_backend/internal/repository"
	"tourii_backend/pkg/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:           "tourii-admin",
	Short:         "Maintenance commands for the Tourii backend",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return logger.Initialize(viper.GetString("logLevel"))
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "config.yaml", "path to the config file")

	rootCmd.AddCommand(
		newMigrateCmd(),
		newSeedCmd(),
		newGrantAdminCmd(),
	)
}

func initConfig() {
	viper.SetConfigFile(configFile)
	viper.AutomaticEnv()
	viper.SetEnvPrefix("APP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.SetDefault("logLevel", "info")

	if err := viper.ReadInConfig(); err != nil {
		fmt.Fprintln(os.Stderr, "config not loaded:", err)
	}
}

func openRepository() (*repository.Repository, error) {
	var cfg repository.Config
	if err := viper.UnmarshalKey("database", &cfg); err != nil {
		return nil, fmt.Errorf("failed to read database config: %w", err)
	}
	return repository.New(cfg)
}

func main() {
	defer logger.Sync()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
