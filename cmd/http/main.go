package main

import (
	"fmt"
	"hospital-service/internal/app/config"
	"hospital-service/internal/app/drivers/logger"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Version and Tag are overridden at build time through -ldflags.
var (
	Version = "develop"
	Tag     = "0.0.1-rc"
)

// runtime holds what every command loads before doing its own work.
type runtime struct {
	internalConfig *config.InternalConfig
	driverConfig   *config.DriverConfig
	bootLog        *logrus.Logger
	log            *zap.Logger
}

func loadRuntime() (*runtime, error) {
	internalConfig, driverConfig, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	bootLog := logger.NewLogrusLogger(driverConfig, internalConfig)

	location, err := time.LoadLocation(internalConfig.App.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %s: %w", internalConfig.App.Timezone, err)
	}
	time.Local = location

	log, err := logger.NewZapLogger(driverConfig, internalConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to build zap logger: %w", err)
	}

	return &runtime{
		internalConfig: internalConfig,
		driverConfig:   driverConfig,
		bootLog:        bootLog,
		log:            log,
	}, nil
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "hospital-service",
		Short:         "Hospital scheduling, billing and payments service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newServeCommand(),
		newMigrateCommand(),
		newNotificationWorkerCommand(),
		newIssueTokenCommand(),
		newVersionCommand(),
	)
	return root
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "Version: %s\nTag: %s\n", Version, Tag)
		},
	}
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
