package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de registro del libro de movimientos.
const (
	EntryTypeIN  = "IN"  // entrada (reposición)
	EntryTypeOUT = "OUT" // salida (consumo)
)

// DateLayout formato de fecha de calendario de los registros.
const DateLayout = "2006-01-02"

// LedgerEntry un movimiento de entrada o salida de un producto.
// Type no cambia después de crearse. Price es una copia del precio del producto al registrar.
// Para IN, HandlerName guarda el proveedor (opcional); para OUT, el responsable que retira.
type LedgerEntry struct {
	ID          string
	ProductID   string
	Type        string
	Quantity    int64
	Price       decimal.Decimal
	Date        time.Time
	Department  string
	HandlerName string
	Note        string
	CreatedBy   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsValidEntryType indica si t es IN u OUT.
func IsValidEntryType(t string) bool {
	return t == EntryTypeIN || t == EntryTypeOUT
}

// Total valor del registro (cantidad por precio copiado).
func (e *LedgerEntry) Total() decimal.Decimal {
	return e.Price.Mul(decimal.NewFromInt(e.Quantity))
}

// LedgerEntryView registro con los datos de producto y categoría para listados y exportación.
type LedgerEntryView struct {
	LedgerEntry
	Brand        string
	Model        string
	CategoryName string
}
