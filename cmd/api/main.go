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

	appauth "github.com/retailm/retailm-api/internal/application/auth"
	"github.com/retailm/retailm-api/internal/application/inventory"
	"github.com/retailm/retailm-api/internal/application/reporting"
	"github.com/retailm/retailm-api/internal/application/sales"
	"github.com/retailm/retailm-api/internal/application/usecase"
	infrapdf "github.com/retailm/retailm-api/internal/infrastructure/pdf"
	"github.com/retailm/retailm-api/internal/infrastructure/postgres"
	"github.com/retailm/retailm-api/internal/infrastructure/redisstore"
	httpRouter "github.com/retailm/retailm-api/internal/interfaces/http"
	"github.com/retailm/retailm-api/pkg/config"
	"github.com/retailm/retailm-api/pkg/logger"
)

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
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	redisClient, err := redisstore.NewClient(ctx, cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a Redis")
	}
	defer redisClient.Close()

	// Repositorios sobre el pool (fuera de transacción)
	branchRepo := postgres.NewBranchRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	vendorRepo := postgres.NewVendorRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	saleRepo := postgres.NewSaleRepository(pool)
	movRepo := postgres.NewStockMovementRepository(pool)
	stockRepo := postgres.NewStockRepository(pool)
	ledgerRepo := postgres.NewLedgerRepository(pool)
	auditRepo := postgres.NewAuditLogRepository(pool)
	reportRepo := postgres.NewReportingRepository(pool)

	txRunner := postgres.NewTxRunner(pool, cfg.Sales.LockTimeoutMS)
	idemStore := redisstore.NewIdempotencyStore(redisClient)

	salesCoord := sales.NewCoordinator(txRunner, idemStore, branchRepo, productRepo, saleRepo, log, sales.Config{
		IdempotencyTTL: time.Duration(cfg.Sales.IdempotencyTTLMin) * time.Minute,
	})
	inventoryUC := inventory.NewUseCase(txRunner, productRepo, branchRepo, vendorRepo, movRepo, log)

	pdfGenerator := infrapdf.NewMarotoLedgerPDF()
	reportUC := reporting.NewUseCase(reportRepo, ledgerRepo, branchRepo, pdfGenerator)

	authUC := appauth.NewAuthUseCase(userRepo, branchRepo, appauth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	branchUC := usecase.NewBranchUseCase(branchRepo, auditRepo)
	productUC := usecase.NewProductUseCase(productRepo, branchRepo, stockRepo, auditRepo)
	vendorUC := usecase.NewVendorUseCase(vendorRepo, auditRepo)
	userUC := usecase.NewUserUseCase(userRepo, auditRepo)
	auditUC := usecase.NewAuditUseCase(auditRepo)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "RetailM API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:      authUC,
		BranchUC:    branchUC,
		ProductUC:   productUC,
		VendorUC:    vendorUC,
		UserUC:      userUC,
		AuditUC:     auditUC,
		SalesCoord:  salesCoord,
		InventoryUC: inventoryUC,
		ReportUC:    reportUC,
		JWTSecret:   cfg.JWT.Secret,
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
