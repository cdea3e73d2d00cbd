package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"notes-api/api"
	"notes-api/storage"
)

func main() {
	if dbg, err := strconv.ParseBool(os.Getenv("DEBUG")); err == nil && dbg {
		log.SetLevel(log.DebugLevel)
	}
	shutdownTimeout := 10 * time.Second
	if v := os.Getenv("SHUTDOWN_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			log.Fatalf("invalid SHUTDOWN_TIMEOUT: %v", err)
		}
		shutdownTimeout = d
	}
	listenAddr := ":3001"
	if val, ok := os.LookupEnv("PORT"); ok {
		listenAddr = ":" + val
	}

	// No exporter is registered; spans are recorded only so request logs
	// carry usable trace and span ids.
	tp := sdktrace.NewTracerProvider()
	otel.SetTracerProvider(tp)

	store := storage.NewMemory()

	e := echo.New()
	e.Use(middleware.CORSWithConfig(corsConfig()))
	e.Use(echoprometheus.NewMiddleware("notes_api"))
	e.GET("/metrics", echoprometheus.NewHandler())

	logger := log.StandardLogger()
	api.Register(e, store, logger)

	go func() {
		if err := e.Start(listenAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Errorf("shutdown: %v", err)
	}
	if err := tp.Shutdown(shutdownCtx); err != nil {
		log.Errorf("tracer shutdown: %v", err)
	}
}

// corsConfig opens the API to any origin with credentials allowed. Literal
// wildcards are not honored on credentialed responses, so the origin is
// echoed back and the method list is spelled out in full. An empty
// AllowHeaders makes preflights mirror the headers the client asked for.
func corsConfig() middleware.CORSConfig {
	return middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{
			http.MethodGet,
			http.MethodHead,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowCredentials: true,
		UnsafeWildcardOriginWithAllowCredentials: true,
	}
}
