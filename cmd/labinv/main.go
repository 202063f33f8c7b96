package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"lab-inventory/internal/config"
	"lab-inventory/pkg/logger"

	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var conf *config.Config
	root := &cobra.Command{
		Use:          "labinv",
		Short:        "Laboratory inventory server and client",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			c, err := config.Load()
			if err != nil {
				return err
			}
			conf = c
			logger.Init(logger.Config{
				Service:     "lab-inventory",
				Level:       conf.Log.Level,
				Development: conf.IsDevelopment(),
				FilePath:    conf.Log.Path,
			})
			return nil
		},
		Run: func(cmd *cobra.Command, _ []string) {
			_ = cmd.Help()
		},
	}
	root.SetContext(ctx)

	cfg := func() *config.Config { return conf }
	root.AddCommand(
		newServeCmd(cfg),
		newMigrateCmd(cfg),
		newSeedCmd(cfg),
		newResetPasswordCmd(cfg),
	)
	root.AddCommand(newClientCmds(cfg)...)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
