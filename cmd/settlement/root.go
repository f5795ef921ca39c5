package main

import (
	"context"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/yourorg/settlement-switch/internal/config"
)

var rootCMD = &cobra.Command{
	Use:   "settlement",
	Short: "Cross-domain settlement routing engine",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.LoadDotEnv(viper.GetStringSlice("env-file")...); err != nil {
			return err
		}
		setupLogging(loadConfig())
		return nil
	},
	SilenceUsage: true,
}

func init() {
	flags := rootCMD.PersistentFlags()
	flags.StringSlice("env-file", nil, "environment files to load (default .env)")
	flags.String("config", "", "YAML bootstrap file (env SETTLEMENT_CONFIG)")
	flags.String("log-level", "", "log level: debug, info, warn, error (env LOG_LEVEL)")
	flags.String("log-format", "", "log format: text or json (env LOG_FORMAT)")
	for _, name := range []string{"env-file", "config", "log-level", "log-format"} {
		_ = viper.BindPFlag(name, flags.Lookup(name))
	}

	rootCMD.AddCommand(serveCMD, routeCMD, versionCMD)
}

// Execute runs the root command
func Execute() {
	if err := rootCMD.ExecuteContext(context.Background()); err != nil {
		logrus.WithError(err).Error("Command failed")
		os.Exit(1)
	}
}

// loadConfig reads the environment and applies command line overrides
func loadConfig() config.Config {
	cfg := config.Load()
	if v := viper.GetString("config"); v != "" {
		cfg.ConfigFile = v
	}
	if v := viper.GetString("log-level"); v != "" {
		cfg.LogLevel = v
	}
	if v := viper.GetString("log-format"); v != "" {
		cfg.LogFormat = v
	}
	if v := viper.GetString("port"); v != "" {
		cfg.Port = v
	}
	return cfg
}

// setupLogging configures the logging for the application
func setupLogging(cfg config.Config) {
	switch cfg.LogFormat {
	case "json":
		logrus.SetFormatter(&logrus.JSONFormatter{})
	default:
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	switch cfg.LogLevel {
	case "debug":
		logrus.SetLevel(logrus.DebugLevel)
	case "warn", "warning":
		logrus.SetLevel(logrus.WarnLevel)
	case "error":
		logrus.SetLevel(logrus.ErrorLevel)
	default:
		logrus.SetLevel(logrus.InfoLevel)
	}
}
