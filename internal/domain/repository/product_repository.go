package repository

import (
	"context"

	"github.com/jhoicas/suministros-api/internal/domain/entity"
)

// ProductFilter filtros del listado de productos. Limit 0 = sin límite.
type ProductFilter struct {
	Search     string // coincide con marca o modelo, sin distinguir mayúsculas
	CategoryID string
	Limit      int
	Offset     int
}

// ProductRepository puerto de persistencia para Product.
// Las implementaciones devuelven (nil, nil) cuando el producto no existe.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	// GetForUpdate lee el producto bloqueando su fila hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, id string) (*entity.Product, error)
	FindByBrandModel(ctx context.Context, brand, model string) (*entity.Product, error)
	List(ctx context.Context, filter ProductFilter) ([]*entity.Product, error)
	Count(ctx context.Context, filter ProductFilter) (int, error)
	// Update modifica atributos; nunca escribe stock_quantity.
	Update(ctx context.Context, product *entity.Product) error
	// AdjustStock suma delta al stock con una escritura relativa (stock = stock + delta).
	AdjustStock(ctx context.Context, id string, delta int64) error
	Delete(ctx context.Context, id string) error
	// ListLowStock productos con stock_quantity <= min_stock_level, menor stock primero.
	ListLowStock(ctx context.Context, limit int) ([]*entity.Product, error)
}
