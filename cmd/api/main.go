// @title                       Dotación API
// @version                     1.0
// @description                 Libro de stock de equipos y materiales de dotación: catálogo, movimientos, entregas y alertas.
// @BasePath                    /
// @securityDefinitions.apikey  Bearer
// @in                          header
// @name                        Authorization
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
	goredis "github.com/redis/go-redis/v9"

	"github.com/jhoicas/dotacion-api/internal/application/inventory"
	domaininv "github.com/jhoicas/dotacion-api/internal/domain/inventory"
	"github.com/jhoicas/dotacion-api/internal/domain/repository"
	"github.com/jhoicas/dotacion-api/internal/infrastructure/memory"
	"github.com/jhoicas/dotacion-api/internal/infrastructure/metrics"
	"github.com/jhoicas/dotacion-api/internal/infrastructure/postgres"
	infraredis "github.com/jhoicas/dotacion-api/internal/infrastructure/redis"
	httpRouter "github.com/jhoicas/dotacion-api/internal/interfaces/http"
	"github.com/jhoicas/dotacion-api/pkg/config"
	"github.com/jhoicas/dotacion-api/pkg/logger"
)

const swaggerSpecPath = "./docs/swagger.json"

// storage puertos de persistencia según STORAGE_DRIVER.
type storage struct {
	items      repository.ItemRepository
	movements  repository.MovementRepository
	deliveries repository.DeliveryRepository
	txRunner   inventory.TxRunner
	close      func()
}

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
		Str("storage", cfg.DB.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()
	store, err := openStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar almacenamiento")
	}
	defer store.close()

	// Redis opcional: idempotencia compartida y lock del job entre réplicas.
	var (
		idempotency repository.IdempotencyStore = memory.NewIdempotencyStore()
		jobLocker   inventory.JobLocker         = memory.NewJobLocker()
		redisClient *goredis.Client
	)
	if cfg.Redis.Enabled() {
		redisClient, err = infraredis.NewClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("conexión a Redis")
		}
		defer redisClient.Close()
		idempotency = infraredis.NewIdempotencyStore(redisClient, "")
		jobLocker = infraredis.NewJobLocker(redisClient)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("Redis habilitado para idempotencia y lock de jobs")
	}

	loc, err := cfg.Alerts.Location()
	if err != nil {
		log.Fatal().Err(err).Str("timezone", cfg.Alerts.Timezone).Msg("zona horaria de alertas")
	}

	prom := metrics.NewPrometheus()
	ledger := inventory.NewMovementLedger(store.movements, log.Logger)
	mutator := inventory.NewStockMutator(store.txRunner, store.items, ledger, inventory.RetryPolicy{
		MaxAttempts: cfg.Ledger.MaxAttempts,
		BaseBackoff: cfg.Ledger.BackoffBase(),
		MaxBackoff:  cfg.Ledger.BackoffMax(),
	}, prom, nil, log.Logger)
	catalogUC := inventory.NewCatalogUseCase(store.txRunner, store.items, ledger, prom, nil, log.Logger)
	movementUC := inventory.NewMovementUseCase(mutator, ledger, store.items)
	scheduler := inventory.NewDeliveryScheduler(mutator, store.items, store.deliveries, prom, nil, log.Logger)
	alerts := inventory.NewAlertGenerator(store.items, store.deliveries, domaininv.Thresholds{
		WarningDays:  cfg.Alerts.WarningDays,
		CriticalDays: cfg.Alerts.CriticalDays,
	}, loc, prom, nil, log.Logger)
	auditor := inventory.NewIntegrityAuditor(store.items, ledger, prom, log.Logger)

	var alertJob *inventory.AlertJob
	if cfg.Alerts.JobEnabled {
		alertJob = inventory.NewAlertJob(inventory.AlertJobConfig{Interval: cfg.Alerts.JobInterval()}, alerts, jobLocker, log.Logger)
		alertJob.Start(ctx)
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs (generar con `swag init -g cmd/api/main.go`)
	if _, err := os.Stat(swaggerSpecPath); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerSpecPath,
			Path:     "docs",
			Title:    "Dotación API",
		}))
	} else {
		log.Warn().Str("path", swaggerSpecPath).Msg("swagger.json no encontrado, /docs deshabilitado")
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		AppName:        cfg.App.Name,
		CatalogUC:      catalogUC,
		MovementUC:     movementUC,
		Scheduler:      scheduler,
		Alerts:         alerts,
		Auditor:        auditor,
		Idempotency:    idempotency,
		IdempotencyTTL: cfg.Idempotency.TTL(),
		MetricsHandler: prom.Handler(),
		JWTSecret:      cfg.JWT.Secret,
		Log:            log.Logger,
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

	if alertJob != nil {
		alertJob.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

// openStorage abre PostgreSQL (con migraciones opcionales) o el store en memoria.
func openStorage(ctx context.Context, cfg *config.Config, log *logger.Logger) (*storage, error) {
	if cfg.DB.Driver == config.StorageDriverMemory {
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
		s := memory.NewStore()
		return &storage{
			items:      memory.NewItemRepository(s),
			movements:  memory.NewMovementRepository(s),
			deliveries: memory.NewDeliveryRepository(s),
			txRunner:   memory.NewTxRunner(s),
			close:      func() {},
		}, nil
	}

	if cfg.DB.AutoMigrate {
		mg, err := postgres.NewMigrator(cfg.DB.ConnectionString(), log.Logger)
		if err != nil {
			return nil, err
		}
		err = mg.Up()
		if cerr := mg.Close(); cerr != nil {
			log.Warn().Err(cerr).Msg("cerrar migrador")
		}
		if err != nil {
			return nil, err
		}
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	return &storage{
		items:      postgres.NewItemRepository(pool),
		movements:  postgres.NewMovementRepository(pool),
		deliveries: postgres.NewDeliveryRepository(pool),
		txRunner:   postgres.NewTxRunner(pool),
		close:      pool.Close,
	}, nil
}
