package memory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/suministros-api/internal/domain/entity"
	"github.com/jhoicas/suministros-api/internal/domain/repository"
)

var _ repository.ReportRepository = (*ReportRepo)(nil)

// ReportRepo agregados calculados recorriendo el estado en memoria.
type ReportRepo struct {
	db backend
}

func (r *ReportRepo) ConsumptionByCategory(_ context.Context, f repository.ConsumptionFilter) ([]repository.ConsumptionRow, error) {
	return r.consumption(f, func(st *state, e entity.LedgerEntry) string {
		if p, ok := st.products[e.ProductID]; ok {
			if c, ok := st.categories[p.CategoryID]; ok {
				return c.Name
			}
		}
		return "Sin categoría"
	})
}

func (r *ReportRepo) ConsumptionByDepartment(_ context.Context, f repository.ConsumptionFilter) ([]repository.ConsumptionRow, error) {
	return r.consumption(f, func(_ *state, e entity.LedgerEntry) string { return e.Department })
}

func (r *ReportRepo) ConsumptionByMonth(_ context.Context, f repository.ConsumptionFilter) ([]repository.ConsumptionRow, error) {
	rows, err := r.consumption(f, func(_ *state, e entity.LedgerEntry) string { return e.Date.Format("2006-01") })
	sort.Slice(rows, func(i, j int) bool { return rows[i].Key < rows[j].Key })
	return rows, err
}

func (r *ReportRepo) StockTotals(_ context.Context) (repository.StockTotals, error) {
	var t repository.StockTotals
	t.Value = decimal.Zero
	err := r.db.read(func(st *state) error {
		for _, p := range st.products {
			t.Products++
			t.Units += p.StockQuantity
			t.Value = t.Value.Add(p.Price.Mul(decimal.NewFromInt(p.StockQuantity)))
		}
		return nil
	})
	return t, err
}

// consumption agrupa las salidas filtradas por la clave que devuelve key; mayor cantidad primero.
func (r *ReportRepo) consumption(f repository.ConsumptionFilter, key func(*state, entity.LedgerEntry) string) ([]repository.ConsumptionRow, error) {
	filter := repository.EntryFilter{Type: entity.EntryTypeOUT, Department: f.Department, From: f.From, To: f.To}
	acc := make(map[string]*repository.ConsumptionRow)
	err := r.db.read(func(st *state) error {
		for _, e := range st.entries {
			if !matchEntry(e, filter) {
				continue
			}
			k := key(st, e)
			row, ok := acc[k]
			if !ok {
				row = &repository.ConsumptionRow{Key: k, Value: decimal.Zero}
				acc[k] = row
			}
			row.Quantity += e.Quantity
			row.Value = row.Value.Add(e.Total())
			row.Entries++
		}
		return nil
	})
	out := make([]repository.ConsumptionRow, 0, len(acc))
	for _, row := range acc {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Quantity != out[j].Quantity {
			return out[i].Quantity > out[j].Quantity
		}
		return out[i].Key < out[j].Key
	})
	return out, err
}
