package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/totegamma/archivist/internal/config"
	"github.com/totegamma/archivist/internal/infrastructure/providers"
	"github.com/totegamma/archivist/internal/present/rest"
	restmw "github.com/totegamma/archivist/internal/present/rest/middleware"
	"github.com/totegamma/archivist/internal/service"
)

const serviceName = "archivist"

var version = "unknown"

func setupTraceProvider(ctx context.Context, endpoint string) (func(context.Context) error, error) {
	exporter, err := otlptracehttp.New(
		ctx,
		otlptracehttp.WithEndpoint(endpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	res := resource.NewSchemaless(
		attribute.String("service.name", serviceName),
		attribute.String("service.version", version),
	)

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	return tp.Shutdown, nil
}

func main() {
	conf, err := config.Load(config.Path())
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	config.SetupLogger(conf.Server)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info(
		"starting archivist",
		slog.String("version", version),
		slog.String("listen", conf.Server.Listen),
	)

	e := echo.New()
	e.HideBanner = true

	if conf.Server.EnableTrace {
		shutdown, err := setupTraceProvider(ctx, conf.Server.TraceEndpoint)
		if err != nil {
			slog.Error("failed to setup tracing", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				slog.Error("failed to flush traces", slog.String("error", err.Error()))
			}
		}()

		e.Use(otelecho.Middleware(serviceName, otelecho.WithSkipper(func(c echo.Context) bool {
			return c.Path() == "/metrics" || c.Path() == "/health"
		})))
	}

	db, err := providers.NewDatabase(conf.Server)
	if err != nil {
		slog.Error("failed to connect database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := providers.MigrateDatabase(db); err != nil {
		slog.Error("failed to migrate database", slog.String("error", err.Error()))
		os.Exit(1)
	}

	rdb, err := providers.NewRedis(ctx, conf.Server)
	if err != nil {
		slog.Error("failed to connect redis", slog.String("error", err.Error()))
		os.Exit(1)
	}
	mc := providers.NewMemcache(conf.Server)

	collaborators := providers.Collaborators{
		Projects: providers.NewProjectRepository(db),
		Gateway:  providers.NewManifestGateway(conf.Manifest),
		Locker:   providers.NewLocker(rdb),
		Cache:    providers.NewNodeCache(mc),
	}

	var subscriber rest.Subscriber
	if rdb != nil {
		signalService := service.NewSignalService(rdb)
		collaborators.Publisher = signalService
		subscriber = signalService
	} else {
		slog.Warn("redis is not configured; locks are process local and realtime is disabled")
	}

	u := providers.NewUsecases(db, collaborators)

	handler := rest.NewHandler(
		u.Nodes,
		u.Manifests,
		u.Listing,
		subscriber,
		rest.NewEntityHandler(u.Events),
		rest.NewEntityHandler(u.Interviews),
		rest.NewEntityHandler(u.Items),
		rest.NewEntityHandler(u.People),
	)
	auth := restmw.NewAuthMiddleware(service.NewAuthService(conf.Auth))

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(restmw.Metrics)
	e.Use(auth.IdentifyRequester)

	handler.RegisterRoutes(e)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	go func() {
		if err := e.Start(conf.Server.Listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server stopped", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		slog.Error("failed to shutdown server", slog.String("error", err.Error()))
	}
	slog.Info("archivist stopped")
}
