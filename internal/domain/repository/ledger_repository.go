package repository

import (
	"context"
	"time"

	"github.com/jhoicas/suministros-api/internal/domain/entity"
)

// EntryFilter filtros del listado de registros. Fechas inclusivas; Limit 0 = sin límite.
type EntryFilter struct {
	Type       string
	ProductID  string
	Department string
	From       *time.Time
	To         *time.Time
	Limit      int
	Offset     int
}

// LedgerRepository puerto de persistencia de los registros de entrada/salida.
// No modifica stock: eso lo hace el caso de uso con ProductRepository.AdjustStock en la misma transacción.
type LedgerRepository interface {
	Create(ctx context.Context, entry *entity.LedgerEntry) error
	GetByID(ctx context.Context, id string) (*entity.LedgerEntry, error)
	// GetForUpdate lee el registro bloqueando su fila hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, id string) (*entity.LedgerEntry, error)
	Update(ctx context.Context, entry *entity.LedgerEntry) error
	Delete(ctx context.Context, id string) error
	// DeleteByProduct borra todos los registros del producto (borrado en cascada, sin reversión).
	DeleteByProduct(ctx context.Context, productID string) (int64, error)
	// List devuelve registros con marca, modelo y categoría; fecha descendente.
	List(ctx context.Context, filter EntryFilter) ([]*entity.LedgerEntryView, error)
	Count(ctx context.Context, filter EntryFilter) (int, error)
}
