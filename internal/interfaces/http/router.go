package http

import (
	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/jhoicas/suministros-api/internal/application/analytics"
	"github.com/jhoicas/suministros-api/internal/application/auth"
	"github.com/jhoicas/suministros-api/internal/application/ledger"
	"github.com/jhoicas/suministros-api/internal/application/usecase"
	"github.com/jhoicas/suministros-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ProductUC      *usecase.ProductUseCase
	CategoryUC     *usecase.CategoryUseCase
	Adjuster       *ledger.StockAdjuster
	Importer       *ledger.BulkImporter
	Exporter       *ledger.ExportUseCase
	DashboardUC    *appanalytics.DashboardUseCase
	ReportUC       *appanalytics.ReportUseCase
	AuthUC         *auth.AuthUseCase
	JWTSecret      string
	ImportMaxBytes int64
}

// Router registra las rutas de la API.
//
// Roles: staff registra y consulta movimientos; admin además gestiona el catálogo y los usuarios.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")
	adminOnly := RequireRole(entity.RoleAdmin)
	anyRole := RequireRole(entity.RoleAdmin, entity.RoleStaff)

	// Auth: el registro es público solo mientras no exista ningún usuario.
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", OptionalAuthMiddleware(deps.JWTSecret), authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret), anyRole)

	// Categories
	categoryHandler := NewCategoryHandler(deps.CategoryUC)
	categories := protected.Group("/categories")
	categories.Get("/", categoryHandler.List)
	categories.Post("/", adminOnly, categoryHandler.Create)

	// Products
	productHandler := NewProductHandler(deps.ProductUC)
	products := protected.Group("/products")
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Post("/", adminOnly, productHandler.Create)
	products.Put("/:id", adminOnly, productHandler.Update)
	products.Delete("/:id", adminOnly, productHandler.Delete)

	// Entries (libro de movimientos). Las rutas fijas van antes de /:id.
	ledgerHandler := NewLedgerHandler(deps.Adjuster, deps.Importer, deps.Exporter, deps.ImportMaxBytes)
	entries := protected.Group("/entries")
	entries.Get("/export", ledgerHandler.Export)
	entries.Get("/template", ledgerHandler.Template)
	entries.Post("/import", ledgerHandler.Import)
	entries.Get("/", ledgerHandler.List)
	entries.Post("/", ledgerHandler.Create)
	entries.Get("/:id", ledgerHandler.GetByID)
	entries.Put("/:id", ledgerHandler.Update)
	entries.Delete("/:id", ledgerHandler.Delete)

	// Dashboard y reportes
	dashboardHandler := NewDashboardHandler(deps.DashboardUC, deps.ReportUC)
	protected.Get("/dashboard/summary", dashboardHandler.GetSummary)
	reports := protected.Group("/reports")
	reports.Get("/consumption", dashboardHandler.Consumption)
	reports.Get("/consumption/pdf", dashboardHandler.ConsumptionPDF)
}
