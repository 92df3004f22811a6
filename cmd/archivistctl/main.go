package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/totegamma/archivist/internal/config"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:          "archivistctl",
	Short:        "Operator tools for archivist",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default $"+config.EnvConfigPath+" or "+config.DefaultConfigPath+")")
}

func loadConfig() (config.Config, error) {
	path := configPath
	if path == "" {
		path = config.Path()
	}
	conf, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	config.SetupLogger(conf.Server)
	return conf, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
