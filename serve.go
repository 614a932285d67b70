package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/krau/lesionscan/catalog"
	"github.com/krau/lesionscan/server"
	"github.com/spf13/cobra"
)

func newServeCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP prediction server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), *cfgPath)
		},
	}
}

func runServe(ctx context.Context, cfgPath string) error {
	a, err := newApp(cfgPath)
	if err != nil {
		return err
	}
	defer a.close()
	slog.Info("Starting lesionscan")

	// A missing or broken artifact leaves the server up so /predict can
	// answer with the blocking message. A catalog mismatch is a broken
	// deployment and stops startup.
	if err := a.engine.Verify(ctx); err != nil {
		var mappingErr *catalog.LabelMappingError
		if errors.As(err, &mappingErr) {
			return fmt.Errorf("model does not match the lesion catalog: %w", err)
		}
		slog.Error("Model unavailable, predictions are disabled", slog.String("error", err.Error()))
	}

	gin.SetMode(gin.ReleaseMode)
	srv := server.New(a.engine, server.Options{
		Decode:             a.decodeOptions(),
		RateLimitPerMinute: a.cfg.RateLimitPerMinute,
	})
	httpSrv := &http.Server{
		Addr:              a.cfg.Addr(),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Listening on", slog.String("address", httpSrv.Addr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	slog.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}
