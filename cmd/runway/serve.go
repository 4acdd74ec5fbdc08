package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/runwayhq/runway/internal/api"
	"github.com/runwayhq/runway/internal/broadcast"
	"github.com/runwayhq/runway/internal/broadcast/discord"
	slackbc "github.com/runwayhq/runway/internal/broadcast/slack"
	"github.com/runwayhq/runway/internal/db"
	"github.com/runwayhq/runway/internal/digest"
	"github.com/runwayhq/runway/internal/pitch"
)

func newServeCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the Runway API server",
		Long: `Runs the JSON API server and, when enabled, the scheduled weekly
digest broadcast. Stops gracefully on SIGINT/SIGTERM.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "runway.yaml", "path to Runway config file")
	return cmd
}

func runServe(cmd *cobra.Command, configPath string) error {
	out := cmd.OutOrStdout()

	cfg, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}
	if err := db.AutoMigrate(gormDB); err != nil {
		return err
	}

	dispatcher := broadcast.NewDispatcher(slackbc.NewPoster(gormDB))
	if cfg.Discord.BotToken != "" {
		dp, err := discord.NewPoster(cfg.Discord)
		if err != nil {
			return err
		}
		dispatcher.Register(dp)
		fmt.Fprintln(out, "Discord broadcasting enabled")
	}

	extractor, err := pitch.NewExtractor(cfg.Extraction)
	if err != nil {
		return err
	}

	server, err := api.New(api.Opts{
		DB:         gormDB,
		Config:     cfg,
		Dispatcher: dispatcher,
		Extractor:  extractor,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Digest.Enabled {
		scheduler, err := digest.NewScheduler(gormDB, dispatcher, cfg.Digest.Cron)
		if err != nil {
			return err
		}
		go scheduler.Run(ctx)
		fmt.Fprintf(out, "Weekly digest scheduled (%s)\n", cfg.Digest.Cron)
	}

	return server.Run(ctx, out)
}
