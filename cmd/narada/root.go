package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	narada "github.com/NaradaAI/narada-go"
	"github.com/NaradaAI/narada-go/internal/config"
	"github.com/NaradaAI/narada-go/internal/observability"
)

var (
	cfgFile     string
	interactive bool
	cdpPort     int

	// loadedConfig is populated by the root PersistentPreRunE before any
	// subcommand runs.
	loadedConfig *config.Config
)

var rootCmd = &cobra.Command{
	Use:           "narada",
	Short:         "Drive the Narada browser automation agent from the command line.",
	Version:       narada.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := initializeConfig()
		if err != nil {
			return fmt.Errorf("failed to initialize configuration: %w", err)
		}
		loadedConfig = cfg
		observability.InitializeLogger(cfg.Logger)
		return nil
	},
}

// Execute runs the CLI with the given context for graceful shutdown.
func Execute(ctx context.Context) error {
	defer observability.Sync()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if ctx.Err() == nil {
			observability.GetLogger().Error("command failed", zap.Error(err))
		}
		return err
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&interactive, "interactive", true, "pause on recoverable handshake failures and wait for the user")
	rootCmd.PersistentFlags().IntVar(&cdpPort, "cdp-port", 0, "remote debugging port of the browser")

	rootCmd.AddCommand(openCmd)
	rootCmd.AddCommand(agentCmd)
	rootCmd.AddCommand(actionCmd)
}

// initializeConfig loads the config file (when present) plus the environment
// into the SDK configuration.
func initializeConfig() (*config.Config, error) {
	v := viper.GetViper()
	config.SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; defaults plus env cover everything.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && cfgFile != "" {
			return nil, err
		}
	}

	return config.Load(v)
}

// newClient builds the SDK client from the loaded configuration.
func newClient() (*narada.Client, error) {
	return narada.New(
		narada.WithConfig(loadedConfig),
		narada.WithLogger(observability.GetLogger()),
	)
}

// browserOptions translates the persistent flags.
func browserOptions() *narada.BrowserOptions {
	return &narada.BrowserOptions{
		CDPPort:     cdpPort,
		Interactive: interactive,
	}
}
