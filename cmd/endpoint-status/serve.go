package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"endpoint-status/internals/app"
	"endpoint-status/internals/server"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the scheduler loop, the user event consumer and the admin API",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	// ctx is cancelled on SIGINT / SIGTERM
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rt, err := bootstrap(ctx, cmd)
	if err != nil {
		return err
	}
	log := rt.log
	c := rt.container

	workerCtx, cancelWorkers := context.WithCancel(ctx)
	defer cancelWorkers()

	schedulerDone := make(chan struct{})
	go func() {
		defer close(schedulerDone)
		c.Scheduler.Run(workerCtx)
	}()
	app.StartConsumer(workerCtx, c)

	router := app.RegisterRoutes(c)
	srv := server.New(&rt.cfg.HTTP, router, log)
	serveErr := srv.Start()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err = <-serveErr:
	}

	// 1. stop accepting requests
	if err := srv.Shutdown(context.Background()); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}

	// 2. stop background workers; an in-flight drain stops after its current item
	cancelWorkers()
	select {
	case <-schedulerDone:
	case <-time.After(rt.cfg.HTTP.ShutdownTimeout):
		log.Warn().Msg("scheduler did not stop in time")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	rt.close(shutdownCtx)

	log.Info().Msg("graceful shutdown complete")
	return err
}
