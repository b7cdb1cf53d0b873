package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	httpadapter "github.com/PabloGalante/interviewbuddy/internal/adapters/http"
	"github.com/PabloGalante/interviewbuddy/internal/adapters/speech"
	"github.com/PabloGalante/interviewbuddy/internal/app/session"
	"github.com/PabloGalante/interviewbuddy/internal/config"
	"github.com/PabloGalante/interviewbuddy/internal/observability"
)

func newServeCmd() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if port != "" {
				cfg.Port = port
			}
			return runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&port, "port", "", "listen port (overrides IB_PORT)")
	return cmd
}

func runServe(ctx context.Context, cfg *config.Config) error {
	log := observability.Setup(os.Stdout, cfg.LogLevel)

	svc, err := buildServices(ctx, cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	// the browser does the reading aloud; the server only tracks state
	sessions := svc.sessionManager(session.Deps{Speaker: speech.Silent{}})
	defer sessions.CloseAll()

	handler := httpadapter.NewServer(svc.interviews, svc.feedback, sessions, httpadapter.Options{
		Release:        cfg.Mode == config.ModeGCP,
		AllowedOrigins: cfg.AllowedOrigins,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("interviewbuddy API listening", "port", cfg.Port, "mode", cfg.Mode, "storage", cfg.StorageBackend)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
