// Package analytics contiene los casos de uso de solo lectura: el resumen del dashboard y los
// reportes de consumo por categoría, departamento y mes.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/suministros-api/internal/application/dto"
	"github.com/jhoicas/suministros-api/internal/application/ledger"
	"github.com/jhoicas/suministros-api/internal/domain/entity"
	"github.com/jhoicas/suministros-api/internal/domain/repository"
)

const (
	dashboardLowStock = 10 // productos en el widget de stock bajo
	dashboardRecent   = 5  // últimos movimientos
)

// DashboardUseCase genera el resumen del inventario y del mes en curso.
type DashboardUseCase struct {
	reportRepo  repository.ReportRepository
	productRepo repository.ProductRepository
	entryRepo   repository.LedgerRepository
	now         func() time.Time
}

// NewDashboardUseCase construye el caso de uso.
func NewDashboardUseCase(
	reportRepo repository.ReportRepository,
	productRepo repository.ProductRepository,
	entryRepo repository.LedgerRepository,
) *DashboardUseCase {
	return &DashboardUseCase{
		reportRepo:  reportRepo,
		productRepo: productRepo,
		entryRepo:   entryRepo,
		now:         time.Now,
	}
}

// GetSummary construye el DashboardSummaryDTO.
//
// Cuatro consultas en paralelo:
//  1. StockTotals          → productos, unidades y valor del stock
//  2. ListLowStock         → productos en o bajo su umbral
//  3. List (últimos 5)     → movimientos recientes
//  4. ConsumptionByMonth   → salidas del mes en curso
func (uc *DashboardUseCase) GetSummary(ctx context.Context) (*dto.DashboardSummaryDTO, error) {
	now := uc.now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	type totalsResult struct {
		totals repository.StockTotals
		err    error
	}
	type lowResult struct {
		products []*entity.Product
		err      error
	}
	type recentResult struct {
		entries []*entity.LedgerEntryView
		err     error
	}
	type monthResult struct {
		rows []repository.ConsumptionRow
		err  error
	}

	totalsCh := make(chan totalsResult, 1)
	lowCh := make(chan lowResult, 1)
	recentCh := make(chan recentResult, 1)
	monthCh := make(chan monthResult, 1)

	go func() {
		t, err := uc.reportRepo.StockTotals(ctx)
		totalsCh <- totalsResult{t, err}
	}()
	go func() {
		p, err := uc.productRepo.ListLowStock(ctx, dashboardLowStock)
		lowCh <- lowResult{p, err}
	}()
	go func() {
		e, err := uc.entryRepo.List(ctx, repository.EntryFilter{Limit: dashboardRecent})
		recentCh <- recentResult{e, err}
	}()
	go func() {
		r, err := uc.reportRepo.ConsumptionByMonth(ctx, repository.ConsumptionFilter{From: &monthStart, To: &today})
		monthCh <- monthResult{r, err}
	}()

	totals := <-totalsCh
	low := <-lowCh
	recent := <-recentCh
	month := <-monthCh

	if totals.err != nil {
		return nil, fmt.Errorf("dashboard: totales de stock: %w", totals.err)
	}
	if low.err != nil {
		return nil, fmt.Errorf("dashboard: stock bajo: %w", low.err)
	}
	if recent.err != nil {
		return nil, fmt.Errorf("dashboard: movimientos recientes: %w", recent.err)
	}
	if month.err != nil {
		return nil, fmt.Errorf("dashboard: consumo del mes: %w", month.err)
	}

	out := &dto.DashboardSummaryDTO{
		TotalProducts: totals.totals.Products,
		TotalUnits:    totals.totals.Units,
		StockValue:    totals.totals.Value.Round(2),
		LowStock:      make([]dto.LowStockItemDTO, 0, len(low.products)),
		RecentEntries: make([]dto.EntryResponse, 0, len(recent.entries)),
		MonthLabel:    monthLabel(now),
	}
	for _, p := range low.products {
		out.LowStock = append(out.LowStock, dto.LowStockItemDTO{
			ProductID:     p.ID,
			Brand:         p.Brand,
			Model:         p.Model,
			StockQuantity: p.StockQuantity,
			MinStockLevel: p.MinStockLevel,
		})
	}
	for _, e := range recent.entries {
		out.RecentEntries = append(out.RecentEntries, *ledger.ToEntryViewResponse(e))
	}
	for _, r := range month.rows {
		out.MonthOut += r.Quantity
	}
	return out, nil
}

// monthLabel devuelve una etiqueta legible del mes, ej: "Febrero 2026".
func monthLabel(t time.Time) string {
	months := [...]string{
		"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
		"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
	}
	return fmt.Sprintf("%s %d", months[t.Month()-1], t.Year())
}
