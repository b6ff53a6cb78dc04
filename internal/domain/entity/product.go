package entity

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Product artículo de oficina del catálogo.
// StockQuantity es un valor derivado: stock inicial más el efecto neto de los registros del libro.
// Solo lo modifica el ajustador de stock (deltas relativos), nunca una edición de atributos.
type Product struct {
	ID            string
	CategoryID    string
	Brand         string // opcional
	Model         string
	Price         decimal.Decimal // precio de referencia que se copia a cada registro
	StockQuantity int64
	MinStockLevel int64 // umbral de stock bajo para el dashboard
	Supplier      string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// DisplayName devuelve "marca/modelo", o solo el modelo si no hay marca.
// Es también el texto que se pide para confirmar el borrado.
func (p *Product) DisplayName() string {
	if strings.TrimSpace(p.Brand) == "" {
		return p.Model
	}
	return p.Brand + "/" + p.Model
}

// LookupKey clave sin distinción de mayúsculas para resolver productos por (marca, modelo).
func LookupKey(brand, model string) string {
	return strings.ToLower(strings.TrimSpace(brand)) + "|" + strings.ToLower(strings.TrimSpace(model))
}

// IsLowStock indica si el producto está en o por debajo de su umbral.
func (p *Product) IsLowStock() bool {
	return p.StockQuantity <= p.MinStockLevel
}
