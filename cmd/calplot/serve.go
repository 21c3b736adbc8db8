package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/janekbaraniewski/calplot/internal/api"
	"github.com/janekbaraniewski/calplot/internal/config"
	"github.com/janekbaraniewski/calplot/internal/source"
)

const shutdownTimeout = 30 * time.Second

func newServeCommand(cfg config.Config) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve stored datasets over HTTP and run scheduled CSV syncs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr != "" {
				cfg.ListenAddr = addr
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServer(ctx, cfg, prometheus.DefaultRegisterer, prometheus.DefaultGatherer, func(a string) {
				fmt.Fprintf(cmd.ErrOrStderr(), "calplot listening on http://%s\n", a)
			})
		},
	}
	cmd.Flags().StringVar(&addr, "listen", "", "listen address (default from config)")
	return cmd
}

func syncJobs(cfg config.Config) []source.SyncJob {
	jobs := make([]source.SyncJob, 0, len(cfg.Sync))
	for _, s := range cfg.Sync {
		jobs = append(jobs, source.SyncJob{
			Dataset:  s.Dataset,
			Path:     s.Path,
			Schedule: s.Schedule,
			CSV: source.CSVOptions{
				DateColumn:  s.DateColumn,
				ValueColumn: s.ValueColumn,
				LabelColumn: s.LabelColumn,
				Format:      cfg.DateFormat,
			},
		})
	}
	return jobs
}

// runServer blocks until ctx is done, then drains the HTTP server and the
// sync scheduler.
func runServer(ctx context.Context, cfg config.Config, reg prometheus.Registerer, gatherer prometheus.Gatherer, ready func(addr string)) error {
	store, err := source.OpenStore(cfg.StorePath)
	if err != nil {
		return err
	}
	defer store.Close()

	metrics := api.NewCollector("calplot", reg)
	handler := api.NewHandler(store, cfg, metrics, gatherer)
	router := mux.NewRouter()
	handler.RegisterRoutes(router)

	syncer := source.NewSyncer(store, func(r source.SyncResult) {
		metrics.RecordSync(r.Dataset, r.Err)
		if r.Err == nil {
			metrics.RecordImport(r.Dataset, r.Rows)
		}
	})
	for _, job := range syncJobs(cfg) {
		if err := syncer.Add(ctx, job); err != nil {
			return err
		}
	}
	syncer.Start(ctx)
	defer syncer.Stop()

	server := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[serve] HTTP server listening on %s", server.Addr)
		if ready != nil {
			ready(server.Addr)
		}
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Printf("[serve] shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}
