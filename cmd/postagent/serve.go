package main

import (
	"github.com/spf13/cobra"

	"github.com/easeaico/ai-post-agent/internal/scheduler"
	"github.com/easeaico/ai-post-agent/internal/server"
)

func serveCmd(configFile *string) *cobra.Command {
	var (
		addr     string
		schedule bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Start the HTTP API, optionally with the cron scheduler.

Examples:
  postagent serve --addr :5001
  postagent serve --schedule`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			a, cleanup, err := newApp(ctx, *configFile, true)
			if err != nil {
				return err
			}
			defer cleanup()
			// Background generations finish before the stores close.
			defer a.pipeline.Wait()

			if !cmd.Flags().Changed("addr") {
				addr = a.cfg.Server.Addr
			}

			if schedule || a.cfg.Scheduler.Enabled {
				sched := scheduler.New(a.cfg.Scheduler.Spec, a.pipeline, a.logger)
				if err := sched.Start(ctx); err != nil {
					return err
				}
				defer sched.Stop()
			}

			srv := server.New(ctx, server.Config{
				Posts:     a.posts,
				Generator: a.pipeline,
				Agent:     a.agent,
				Metadata:  a.scraper,
				Logger:    a.logger,
			})
			return srv.Run(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":5001", "listen address")
	cmd.Flags().BoolVar(&schedule, "schedule", false, "run generation cycles on the configured cron schedule")

	return cmd
}
