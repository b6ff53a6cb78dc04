package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// ConsumptionFilter filtros de los reportes de consumo (solo registros OUT).
type ConsumptionFilter struct {
	From       *time.Time
	To         *time.Time
	Department string
}

// ConsumptionRow agregado crudo por clave (categoría, departamento o mes "2006-01").
// Value = Σ cantidad × precio copiado en cada registro.
type ConsumptionRow struct {
	Key      string
	Quantity int64
	Value    decimal.Decimal
	Entries  int
}

// StockTotals totales del catálogo para el dashboard.
type StockTotals struct {
	Products int
	Units    int64
	Value    decimal.Decimal // Σ stock × precio actual
}

// ReportRepository consultas de solo lectura para dashboard y reportes.
type ReportRepository interface {
	ConsumptionByCategory(ctx context.Context, filter ConsumptionFilter) ([]ConsumptionRow, error)
	ConsumptionByDepartment(ctx context.Context, filter ConsumptionFilter) ([]ConsumptionRow, error)
	ConsumptionByMonth(ctx context.Context, filter ConsumptionFilter) ([]ConsumptionRow, error)
	StockTotals(ctx context.Context) (StockTotals, error)
}
