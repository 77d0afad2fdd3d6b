package http

import (
	"github.com/gofiber/fiber/v2"

	appauth "github.com/retailm/retailm-api/internal/application/auth"
	"github.com/retailm/retailm-api/internal/application/inventory"
	"github.com/retailm/retailm-api/internal/application/reporting"
	"github.com/retailm/retailm-api/internal/application/sales"
	"github.com/retailm/retailm-api/internal/application/usecase"
	"github.com/retailm/retailm-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC      *appauth.AuthUseCase
	BranchUC    *usecase.BranchUseCase
	ProductUC   *usecase.ProductUseCase
	VendorUC    *usecase.VendorUseCase
	UserUC      *usecase.UserUseCase
	AuditUC     *usecase.AuditUseCase
	SalesCoord  *sales.Coordinator
	InventoryUC *inventory.UseCase
	ReportUC    *reporting.UseCase
	JWTSecret   string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Branches (protegido)
	branches := protected.Group("/branches")
	branchHandler := NewBranchHandler(deps.BranchUC)
	branches.Post("/", branchHandler.Create)
	branches.Get("/", branchHandler.List)
	branches.Get("/:id", branchHandler.GetByID)
	branches.Put("/:id", branchHandler.Update)
	branches.Delete("/:id", branchHandler.Delete)

	// Products (protegido)
	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Post("/", productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", productHandler.Update)
	products.Delete("/:id", productHandler.Deactivate)

	// Vendors (protegido)
	vendors := protected.Group("/vendors")
	vendorHandler := NewVendorHandler(deps.VendorUC)
	vendors.Post("/", vendorHandler.Create)
	vendors.Get("/", vendorHandler.List)
	vendors.Get("/:id", vendorHandler.GetByID)
	vendors.Put("/:id", vendorHandler.Update)
	vendors.Delete("/:id", vendorHandler.Delete)

	// Sales (protegido)
	salesGroup := protected.Group("/sales")
	saleHandler := NewSaleHandler(deps.SalesCoord)
	salesGroup.Post("/", saleHandler.Create)
	salesGroup.Get("/:id", saleHandler.GetByID)
	salesGroup.Post("/:id/void", saleHandler.Void)

	// Inventory movements (protegido)
	invGroup := protected.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.InventoryUC)
	invGroup.Post("/movements", inventoryHandler.RegisterMovement)
	invGroup.Get("/movements", inventoryHandler.ListMovements)
	invGroup.Post("/rebuild", inventoryHandler.RebuildProjection)

	// Reports (protegido)
	reports := protected.Group("/reports")
	reportHandler := NewReportHandler(deps.ReportUC)
	reports.Get("/low-stock", reportHandler.LowStock)
	reports.Get("/sales-totals", reportHandler.SalesTotals)
	reports.Get("/daily-sales", reportHandler.DailySales)
	reports.Get("/balance", reportHandler.Balance)
	reports.Get("/ledger", reportHandler.ListLedger)
	reports.Get("/ledger/pdf", reportHandler.LedgerPDF)

	// Users (protegido; listado y cambio de rol solo admin)
	users := protected.Group("/users")
	userHandler := NewUserHandler(deps.UserUC)
	users.Get("/", RequireRole(entity.RoleAdmin), userHandler.List)
	users.Get("/:id", userHandler.GetByID)
	users.Put("/:id/role", RequireRole(entity.RoleAdmin), userHandler.SetRole)

	// Audit (protegido, admin o manager)
	auditGroup := protected.Group("/audit", RequireRole(entity.RoleAdmin, entity.RoleManager))
	auditHandler := NewAuditHandler(deps.AuditUC)
	auditGroup.Get("/", auditHandler.List)
}
