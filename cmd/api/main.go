package main

import (
	"context"
	"os"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	appanalytics "github.com/jhoicas/suministros-api/internal/application/analytics"
	"github.com/jhoicas/suministros-api/internal/application/auth"
	"github.com/jhoicas/suministros-api/internal/application/ledger"
	"github.com/jhoicas/suministros-api/internal/application/usecase"
	infrapdf "github.com/jhoicas/suministros-api/internal/infrastructure/pdf"
	"github.com/jhoicas/suministros-api/internal/infrastructure/storage"
	"github.com/jhoicas/suministros-api/internal/infrastructure/tabular"
	httpRouter "github.com/jhoicas/suministros-api/internal/interfaces/http"
	"github.com/jhoicas/suministros-api/pkg/config"
	"github.com/jhoicas/suministros-api/pkg/logger"
)

const swaggerFile = "./docs/swagger.json"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		AppName: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("store", cfg.Store.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()
	store, err := storage.Open(ctx, cfg, log.Component("storage"))
	if err != nil {
		log.Fatal().Err(err).Msg("abrir almacenamiento")
	}

	adjuster := ledger.NewStockAdjuster(store.TxRunner, store.Products, store.Entries, log.Component("ledger"))
	importer := ledger.NewBulkImporter(store.TxRunner, store.Products, store.Categories, cfg.Import.ChunkSize, log.Component("importer"))
	exporter := ledger.NewExportUseCase(store.Entries, tabular.Writers())

	productUC := usecase.NewProductUseCase(store.Products, store.Categories, store.TxRunner, log.Component("catalog"))
	categoryUC := usecase.NewCategoryUseCase(store.Categories)
	dashboardUC := appanalytics.NewDashboardUseCase(store.Reports, store.Products, store.Entries)
	reportUC := appanalytics.NewReportUseCase(store.Reports, infrapdf.NewMarotoPDFGenerator(cfg.App.Name))
	authUC := auth.NewAuthUseCase(store.Users, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.ReadTimeout,
		IdleTimeout:  time.Second * 60,
		BodyLimit:    cfg.Import.MaxBytes + 1<<20, // el multipart lleva algo más que el archivo
	})
	app.Use(recover.New())
	app.Use(cors.New())
	app.Use(httpRouter.RequestLogger(log.Component("http")))

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "Suministros API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "store": store.Driver})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		ProductUC:      productUC,
		CategoryUC:     categoryUC,
		Adjuster:       adjuster,
		Importer:       importer,
		Exporter:       exporter,
		DashboardUC:    dashboardUC,
		ReportUC:       reportUC,
		AuthUC:         authUC,
		JWTSecret:      cfg.JWT.Secret,
		ImportMaxBytes: int64(cfg.Import.MaxBytes),
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		cfg.HTTP.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			// El pool se cierra después de drenar las peticiones en curso.
			"http-server": func(ctx context.Context) error {
				log.Info().Msg("señal de apagado recibida, cerrando servidor...")
				defer store.Close()
				return app.ShutdownWithContext(ctx)
			},
		},
	)

	exitCode := <-wait
	log.Info().Int("exit_code", exitCode).Msg("aplicación detenida")
	os.Exit(exitCode)
}
