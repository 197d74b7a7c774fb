package servehttp

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"staffing/common"
	"syscall"
	"time"

	"github.com/go-chi/cors"
)

const shutdownTimeout = 3 * time.Second

// WithCors wraps handler with the cross origin policy of the web front.
func WithCors(handler http.Handler, origins []string) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	})(handler)
}

// StartHTTPServer serves until SIGINT or SIGTERM and then drains in-flight requests.
func StartHTTPServer(addr string, handler http.Handler) error {
	srv := &http.Server{Addr: addr, Handler: handler}

	failed := make(chan error, 1)
	go func() {
		common.Log.WithField("addr", addr).Info("http server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			failed <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	// kill -9 can't be caught
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-failed:
		return err
	case s := <-quit:
		common.Log.WithField("signal", s.String()).Info("[QUIT] shutdown signal has been received")
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return err
	}
	common.Log.Info("[QUIT] http server is shutdown gracefully")
	return nil
}
