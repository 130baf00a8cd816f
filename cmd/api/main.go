package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/retail-ledger/internal/application/inventory"
	"github.com/jhoicas/retail-ledger/internal/application/ledger"
	"github.com/jhoicas/retail-ledger/internal/application/readcache"
	"github.com/jhoicas/retail-ledger/internal/application/report"
	"github.com/jhoicas/retail-ledger/internal/application/transaction"
	"github.com/jhoicas/retail-ledger/internal/domain"
	"github.com/jhoicas/retail-ledger/internal/infrastructure/metrics"
	infrapdf "github.com/jhoicas/retail-ledger/internal/infrastructure/pdf"
	httpRouter "github.com/jhoicas/retail-ledger/internal/interfaces/http"
	"github.com/jhoicas/retail-ledger/pkg/config"
	"github.com/jhoicas/retail-ledger/pkg/logger"
	"github.com/jhoicas/retail-ledger/pkg/tracing"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.Log.Level,
		Service: cfg.App.Name,
	})
	if err := cfg.Validate(); err != nil {
		var ce *domain.ConfigurationError
		if errors.As(err, &ce) {
			log.Fatal().Str("key", ce.Key).Err(err).Msg("configuración inválida")
		}
		log.Fatal().Err(err).Msg("configuración inválida")
	}
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.Store.Driver).
		Str("cache", cfg.Cache.Driver).
		Msg("iniciando aplicación")

	tp, err := tracing.InitTracer(tracing.Config{
		ServiceName:    cfg.App.Name,
		ServiceVersion: cfg.App.Version,
		JaegerEndpoint: cfg.Tracing.JaegerEndpoint,
		SampleRatio:    cfg.Tracing.SampleRatio,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar trazas")
	}

	ctx := context.Background()
	be, err := openBackend(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("almacén de registro")
	}

	cacheStore, closeCache, err := openCacheStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("caché de lectura")
	}

	mx := metrics.New("retail_ledger", prometheus.DefaultRegisterer)
	readCache := readcache.New(cacheStore, ttlPolicy(cfg.Cache), mx, log)

	stockLedger := ledger.NewLedger(be.movements, be.txRunner, ledger.Config{
		GlobalHistoryLimit:  cfg.Ledger.GlobalHistoryLimit,
		ProductHistoryLimit: cfg.Ledger.ProductHistoryLimit,
		MaxHistoryLimit:     cfg.Ledger.MaxHistoryLimit,
	})
	processor := transaction.NewProcessor(
		be.branches, be.products, be.transactions,
		stockLedger, be.txRunner, readCache, mx, log,
	)
	aggregator := report.NewAggregator(be.branches, be.transactions, be.expenses)
	reads := inventory.NewReadService(be.branches, be.products, stockLedger, aggregator, readCache)

	loc, _ := cfg.Report.Location() // validado en cfg.Validate

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Retail Ledger API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		pingCtx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := be.ping(pingCtx); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "service": cfg.App.Name})
		}
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	httpRouter.Router(app, httpRouter.RouterDeps{
		Transactions:   processor,
		Reads:          reads,
		ReportRenderer: infrapdf.NewMarotoReportRenderer(cfg.App.Name),
		ReportLocation: loc,
		JWTSecret:      cfg.JWT.Secret,
		RequestTimeout: cfg.HTTP.RequestTimeout,
		HTTPMetrics:    mx,
		WriteLimiter:   httpRouter.NewWriteLimiter(cfg.HTTP.WriteRateLimit, cfg.HTTP.WriteBurst),
		Log:            log,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	if err := readCache.Flush(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("vaciar caché de lectura")
	}
	if err := closeCache(); err != nil {
		log.Error().Err(err).Msg("cerrar cliente de caché")
	}
	be.close()
	if err := tracing.Shutdown(shutdownCtx, tp); err != nil {
		log.Error().Err(err).Msg("cerrar trazas")
	}

	log.Info().Msg("aplicación detenida")
}
