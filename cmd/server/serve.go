package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

const shutdownTimeout = 5 * time.Second

// serve runs the API and metrics listeners until ctx is done or the API
// listener fails, then shuts both down. A metrics listener failure is logged
// and does not stop the API.
func serve(ctx context.Context, logger zerolog.Logger, api, metrics *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", api.Addr).Msg("listening")
		if err := api.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("api server: %w", err)
		}
	}()
	go func() {
		logger.Info().Str("addr", metrics.Addr).Msg("metrics listening")
		if err := metrics.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("metrics server")
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errCh:
	}

	shutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := api.Shutdown(shutCtx); err != nil {
		logger.Warn().Err(err).Msg("api shutdown")
	}
	if err := metrics.Shutdown(shutCtx); err != nil {
		logger.Warn().Err(err).Msg("metrics shutdown")
	}
	return runErr
}
