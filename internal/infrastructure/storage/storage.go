// Package storage elige el backend de persistencia (PostgreSQL o memoria) y expone sus
// repositorios detrás de los puertos del dominio.
package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/jhoicas/suministros-api/internal/application/ledger"
	"github.com/jhoicas/suministros-api/internal/domain/repository"
	"github.com/jhoicas/suministros-api/internal/infrastructure/memory"
	"github.com/jhoicas/suministros-api/internal/infrastructure/postgres"
	"github.com/jhoicas/suministros-api/pkg/config"
)

// Storage repositorios y TxRunner del backend elegido.
type Storage struct {
	Driver     string
	Products   repository.ProductRepository
	Categories repository.CategoryRepository
	Entries    repository.LedgerRepository
	Users      repository.UserRepository
	Reports    repository.ReportRepository
	TxRunner   ledger.TxRunner

	pool *pgxpool.Pool
}

// Open abre el backend indicado en cfg.Store.Driver. Con postgres aplica las migraciones si
// DB_AUTO_MIGRATE está activo.
func Open(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Storage, error) {
	switch cfg.Store.Driver {
	case "memory":
		store := memory.NewStore()
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
		return &Storage{
			Driver:     "memory",
			Products:   store.Products(),
			Categories: store.Categories(),
			Entries:    store.Entries(),
			Users:      store.Users(),
			Reports:    store.Reports(),
			TxRunner:   memory.NewTxRunner(store),
		}, nil
	case "postgres":
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
		}
		if cfg.DB.AutoMigrate {
			if err := postgres.Migrate(ctx, pool); err != nil {
				pool.Close()
				return nil, fmt.Errorf("migraciones: %w", err)
			}
			log.Info().Msg("migraciones aplicadas")
		}
		return &Storage{
			Driver:     "postgres",
			Products:   postgres.NewProductRepository(pool),
			Categories: postgres.NewCategoryRepository(pool),
			Entries:    postgres.NewLedgerRepository(pool),
			Users:      postgres.NewUserRepository(pool),
			Reports:    postgres.NewReportRepository(pool),
			TxRunner:   postgres.NewTxRunner(pool),
			pool:       pool,
		}, nil
	default:
		return nil, fmt.Errorf("driver de almacenamiento desconocido: %q", cfg.Store.Driver)
	}
}

// Close libera el pool de PostgreSQL; en memoria no hace nada.
func (s *Storage) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}
