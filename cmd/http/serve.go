package main

import (
	"context"
	"errors"
	"hospital-service/internal/app/config"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the background workers",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := loadRuntime()
			if err != nil {
				return err
			}
			return serve(rt)
		},
	}
}

func serve(rt *runtime) error {
	bootstrap := &config.Bootstrap{
		Router:         chi.NewRouter(),
		Logger:         rt.log,
		InternalConfig: rt.internalConfig,
		DriverConfig:   rt.driverConfig,
	}

	repos, svc, err := openDrivers(bootstrap, rt.bootLog)
	if err != nil {
		_ = bootstrap.Shutdown(context.Background())
		return err
	}

	workers := bootstrapingTheApp(bootstrap, repos, svc)
	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()
	for _, w := range workers {
		w.Start(workerCtx)
		bootstrap.WorkerStops = append(bootstrap.WorkerStops, w.Stop)
	}

	server := &http.Server{
		Addr:              rt.internalConfig.App.Port,
		Handler:           bootstrap.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		rt.bootLog.Printf("Server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	select {
	case <-c:
	case err := <-serverErr:
		if err != nil {
			rt.bootLog.Errorf("Server failed to start: %v", err)
			_ = bootstrap.Shutdown(context.Background())
			return err
		}
	}

	rt.bootLog.Println("Waiting for pending requests that already received by server to be processed..")

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Second*time.Duration(rt.internalConfig.App.ShutdownTimeoutInSeconds),
	)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		rt.bootLog.Errorf("Server forced to shutdown: %v", err)
	}

	if err := bootstrap.Shutdown(shutdownCtx); err != nil {
		return err
	}

	rt.bootLog.Println("Server exiting")
	return nil
}
