package postgres

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/suministros-api/internal/domain/entity"
	"github.com/jhoicas/suministros-api/internal/domain/repository"
)

var _ repository.ReportRepository = (*ReportRepo)(nil)

// ReportRepo consultas read-only de dashboard y reportes de consumo.
type ReportRepo struct {
	q Querier
}

// NewReportRepository construye el adaptador.
func NewReportRepository(q Querier) *ReportRepo {
	return &ReportRepo{q: q}
}

// ConsumptionByCategory salidas agrupadas por categoría del producto.
func (r *ReportRepo) ConsumptionByCategory(ctx context.Context, f repository.ConsumptionFilter) ([]repository.ConsumptionRow, error) {
	return r.consumption(ctx, f, `COALESCE(c.name, 'Sin categoría')`, `quantity DESC, key`)
}

// ConsumptionByDepartment salidas agrupadas por departamento.
func (r *ReportRepo) ConsumptionByDepartment(ctx context.Context, f repository.ConsumptionFilter) ([]repository.ConsumptionRow, error) {
	return r.consumption(ctx, f, `t.department`, `quantity DESC, key`)
}

// ConsumptionByMonth salidas agrupadas por mes (AAAA-MM), en orden cronológico.
func (r *ReportRepo) ConsumptionByMonth(ctx context.Context, f repository.ConsumptionFilter) ([]repository.ConsumptionRow, error) {
	return r.consumption(ctx, f, `to_char(t.date, 'YYYY-MM')`, `key`)
}

// StockTotals número de productos, unidades en stock y valor a precio actual.
func (r *ReportRepo) StockTotals(ctx context.Context) (repository.StockTotals, error) {
	var t repository.StockTotals
	err := r.q.QueryRow(ctx, `
		SELECT count(*), COALESCE(sum(stock_quantity), 0)::bigint, COALESCE(sum(stock_quantity * price), 0)
		FROM products`).Scan(&t.Products, &t.Units, &t.Value)
	if err != nil {
		return t, fmt.Errorf("stock totals: %w", err)
	}
	return t, nil
}

func (r *ReportRepo) consumption(ctx context.Context, f repository.ConsumptionFilter, keyExpr, orderBy string) ([]repository.ConsumptionRow, error) {
	where, args := entryWhere(repository.EntryFilter{
		Type:       entity.EntryTypeOUT,
		Department: f.Department,
		From:       f.From,
		To:         f.To,
	})
	query := `
		SELECT ` + keyExpr + ` AS key, COALESCE(sum(t.quantity), 0)::bigint AS quantity,
			COALESCE(sum(t.quantity * t.price), 0) AS value, count(*) AS entries
		FROM transactions t
		JOIN products p ON p.id = t.product_id
		LEFT JOIN categories c ON c.id = p.category_id` + where + `
		GROUP BY 1
		ORDER BY ` + orderBy
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("consumption report: %w", err)
	}
	defer rows.Close()
	var out []repository.ConsumptionRow
	for rows.Next() {
		row := repository.ConsumptionRow{Value: decimal.Zero}
		if err := rows.Scan(&row.Key, &row.Quantity, &row.Value, &row.Entries); err != nil {
			return nil, fmt.Errorf("scan consumption: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
