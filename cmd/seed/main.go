// seed prepara una base nueva: crea el usuario administrador y, opcionalmente, carga un
// inventario inicial desde una planilla de entradas (mismo formato que la importación masiva).
//
// Uso:
//
//	go run ./cmd/seed -email admin@empresa.com -password secreto123 [-file inventario.xlsx] [-type IN]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/jhoicas/suministros-api/internal/application/auth"
	"github.com/jhoicas/suministros-api/internal/application/dto"
	"github.com/jhoicas/suministros-api/internal/application/ledger"
	"github.com/jhoicas/suministros-api/internal/domain"
	"github.com/jhoicas/suministros-api/internal/domain/entity"
	"github.com/jhoicas/suministros-api/internal/infrastructure/storage"
	"github.com/jhoicas/suministros-api/internal/infrastructure/tabular"
	"github.com/jhoicas/suministros-api/pkg/config"
	"github.com/jhoicas/suministros-api/pkg/logger"
)

func main() {
	email := flag.String("email", os.Getenv("SEED_ADMIN_EMAIL"), "email del administrador")
	password := flag.String("password", os.Getenv("SEED_ADMIN_PASSWORD"), "password del administrador (mín. 8)")
	name := flag.String("name", "Administrador", "nombre del administrador")
	file := flag.String("file", "", "planilla CSV/XLSX con el inventario inicial (opcional)")
	entryType := flag.String("type", entity.EntryTypeIN, "tipo de los registros de la planilla (IN|OUT)")
	encoding := flag.String("encoding", tabular.EncodingAuto, "codificación del CSV (auto|utf-8|gb18030)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "cargar configuración:", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, AppName: "seed"})
	if cfg.Store.Driver == "memory" {
		log.Warn().Msg("STORE_DRIVER=memory: los datos sembrados se pierden al terminar")
	}

	ctx := context.Background()
	store, err := storage.Open(ctx, cfg, log.Component("storage"))
	if err != nil {
		log.Fatal().Err(err).Msg("abrir almacenamiento")
	}
	defer store.Close()

	var adminID string
	if *email != "" {
		authUC := auth.NewAuthUseCase(store.Users, auth.JWTConfig{Secret: cfg.JWT.Secret, Issuer: cfg.JWT.Issuer})
		user, err := authUC.RegisterUser(ctx, entity.RoleAdmin, dto.RegisterRequest{
			Email:    *email,
			Password: *password,
			Name:     *name,
			Role:     entity.RoleAdmin,
		})
		switch {
		case errors.Is(err, domain.ErrEmailAlreadyExists):
			log.Info().Str("email", *email).Msg("el administrador ya existe")
			if u, ferr := store.Users.FindByEmail(ctx, *email); ferr == nil && u != nil {
				adminID = u.ID
			}
		case err != nil:
			log.Fatal().Err(err).Msg("crear administrador")
		default:
			adminID = user.ID
			log.Info().Str("email", user.Email).Str("role", user.Role).Msg("administrador creado")
		}
	}

	if *file == "" {
		return
	}
	if err := importFile(ctx, store, cfg, log, *file, *entryType, *encoding, adminID); err != nil {
		log.Error().Err(err).Msg("importar planilla")
		store.Close()
		os.Exit(1)
	}
}

func importFile(ctx context.Context, store *storage.Storage, cfg *config.Config, log *logger.Logger, path, entryType, encoding, createdBy string) error {
	reader, err := tabular.ReaderFor("", path, encoding)
	if err != nil {
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	records, err := reader.ReadRecords(f)
	if err != nil {
		return err
	}
	importer := ledger.NewBulkImporter(store.TxRunner, store.Products, store.Categories, cfg.Import.ChunkSize, log.Component("importer"))
	result, err := importer.ImportBatch(ctx, ledger.ImportInput{
		Type:       entryType,
		Records:    records,
		SkipHeader: true,
		CreatedBy:  createdBy,
	})
	if result != nil {
		for _, e := range result.Errors {
			log.Warn().Msg(e)
		}
		log.Info().
			Int("created", result.Created).
			Int("new_categories", result.NewCategories).
			Int("new_products", result.NewProducts).
			Msg("planilla importada")
	}
	return err
}
