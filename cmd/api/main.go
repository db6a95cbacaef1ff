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

	"github.com/jhoicas/erp-core/internal/application/audit"
	"github.com/jhoicas/erp-core/internal/application/finance"
	"github.com/jhoicas/erp-core/internal/application/inventory"
	"github.com/jhoicas/erp-core/internal/application/procurement"
	"github.com/jhoicas/erp-core/internal/application/sales"
	"github.com/jhoicas/erp-core/internal/application/sequence"
	"github.com/jhoicas/erp-core/internal/infrastructure/migration"
	infrapdf "github.com/jhoicas/erp-core/internal/infrastructure/pdf"
	"github.com/jhoicas/erp-core/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/erp-core/internal/interfaces/http"
	"github.com/jhoicas/erp-core/pkg/config"
	"github.com/jhoicas/erp-core/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.Log.Level,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("JWT_SECRET es obligatorio")
	}

	if cfg.Migrations.AutoMigrate {
		m, err := migration.New(cfg.DB.ConnectionString(), log.Named("migrate"))
		if err != nil {
			log.Fatal().Err(err).Msg("inicializar migraciones")
		}
		if err := m.Up(); err != nil {
			log.Fatal().Err(err).Msg("aplicar migraciones")
		}
		if err := m.Close(); err != nil {
			log.Warn().Err(err).Msg("cerrar migrador")
		}
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	txRunner := postgres.NewTxRunner(pool, cfg.DB.LockTimeout)
	auditSink := audit.NewRecorder(postgres.NewAuditRepository(pool), log.Named("audit"))
	ledger := inventory.NewLedger(nil)
	seq := sequence.NewAllocator()

	cashUC := finance.NewCashShiftUseCase(txRunner, auditSink)
	purchaseOrderUC := procurement.NewPurchaseOrderUseCase(txRunner, seq, auditSink)
	receptionUC := procurement.NewReceptionUseCase(txRunner, ledger, seq, auditSink, log.Named("procurement"), procurement.ReceptionOptions{
		AllowOverReceipt: cfg.Procurement.AllowOverReceipt,
	})
	supplierReturnUC := procurement.NewSupplierReturnUseCase(txRunner, ledger, seq, auditSink)
	orderUC := sales.NewOrderUseCase(txRunner, ledger, seq, cashUC, infrapdf.NewMarotoRenderer(cfg.App.Name), auditSink)
	movementUC := inventory.NewMovementUseCase(txRunner, ledger, auditSink)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
		ErrorHandler: httpRouter.ErrorHandler(log),
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log.Named("http")))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "ERP Core API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		if err := pool.Ping(c.UserContext()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "service": cfg.App.Name})
		}
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		PurchaseOrders:  purchaseOrderUC,
		Receptions:      receptionUC,
		SupplierReturns: supplierReturnUC,
		Orders:          orderUC,
		CashShifts:      cashUC,
		Inventory:       movementUC,
		JWTSecret:       cfg.JWT.Secret,
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

	log.Info().Msg("aplicación detenida")
}
