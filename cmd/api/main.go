package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	_ "github.com/roundspecs/hsbs/docs"
	"github.com/roundspecs/hsbs/internal/application/ledger"
	"github.com/roundspecs/hsbs/internal/application/payment"
	"github.com/roundspecs/hsbs/internal/application/usecase"
	"github.com/roundspecs/hsbs/internal/domain/repository"
	"github.com/roundspecs/hsbs/internal/infrastructure/events"
	"github.com/roundspecs/hsbs/internal/infrastructure/memory"
	"github.com/roundspecs/hsbs/internal/infrastructure/observability"
	"github.com/roundspecs/hsbs/internal/infrastructure/postgres"
	httpRouter "github.com/roundspecs/hsbs/internal/interfaces/http"
	"github.com/roundspecs/hsbs/pkg/config"
	"github.com/roundspecs/hsbs/pkg/logger"
)

// @title                       HSBS Ledger API
// @version                     1.0
// @description                 Libro de movimientos de stock (entradas LC / salidas OT) con control de concurrencia.
// @BasePath                    /
// @securityDefinitions.apikey  Bearer
// @in                          header
// @name                        Authorization
// @description                 Bearer <token>
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.Store.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()

	shutdownTracing, err := observability.SetupTracing(ctx, cfg.Otel, cfg.App.Name, cfg.App.Env)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar trazas")
	}

	var (
		txRunner     ledger.TxRunner
		productRepo  repository.ProductRepository
		movementRepo repository.MovementRepository
	)
	switch cfg.Store.Driver {
	case "memory":
		store := memory.New()
		txRunner, productRepo, movementRepo = store, store.Products(), store.Movements()
		log.Warn().Msg("almacén en memoria: los datos se pierden al reiniciar")
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		if cfg.DB.AutoMigrate {
			if err := postgres.Migrate(ctx, pool); err != nil {
				log.Fatal().Err(err).Msg("migración del esquema")
			}
		}
		txRunner = postgres.NewTxRunner(pool)
		productRepo = postgres.NewProductRepository(pool)
		movementRepo = postgres.NewMovementRepository(pool)
	}

	var publisher ledger.EventPublisher = ledger.NopPublisher{}
	if cfg.Kafka.Enabled() {
		kp := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer func() {
			if err := kp.Close(); err != nil {
				log.Error().Err(err).Msg("cerrar productor Kafka")
			}
		}()
		publisher = kp
		log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("publicación de eventos habilitada")
	}

	retryCfg := ledger.RetryConfig{
		MaxAttempts: cfg.Ledger.MaxAttempts,
		BaseDelay:   cfg.Ledger.RetryBaseDelay,
		MaxDelay:    cfg.Ledger.RetryMaxDelay,
	}
	ledgerUC := ledger.NewCommitMovementUseCase(txRunner, publisher, retryCfg, log.Component("ledger"))
	paymentUC := payment.NewPaymentUseCase(movementRepo, log.Component("payment"))
	movementQueryUC := usecase.NewMovementQueryUseCase(movementRepo)
	productUC := usecase.NewProductUseCase(productRepo)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestID())
	app.Use(httpRouter.RequestLogger(log.Component("http")))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "HSBS Ledger API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "store": cfg.Store.Driver})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Ledger:        ledgerUC,
		Payments:      paymentUC,
		MovementQuery: movementQueryUC,
		ProductUC:     productUC,
		JWTSecret:     cfg.JWT.Secret,
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado de trazas")
	}

	log.Info().Msg("aplicación detenida")
}
