package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/yourorg/settlement-switch/internal/api"
	"github.com/yourorg/settlement-switch/internal/app"
	"github.com/yourorg/settlement-switch/internal/config"
	"github.com/yourorg/settlement-switch/internal/otel"
)

var serveCMD = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(loadConfig())
	},
}

func init() {
	serveCMD.Flags().String("port", "", "HTTP server port (env PORT)")
	_ = viper.BindPFlag("port", serveCMD.Flags().Lookup("port"))
}

func serve(cfg config.Config) error {
	file, err := config.LoadFile(cfg.ConfigFile)
	if err != nil {
		return err
	}

	shutdown := otel.InitTracer(cfg.OtelEndpoint)
	defer shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, file)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logrus.WithError(err).Warn("Failed to close application")
		}
	}()

	return api.NewServer(a, cfg).Run(ctx)
}
