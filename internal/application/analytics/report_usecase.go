package analytics

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/suministros-api/internal/application/dto"
	"github.com/jhoicas/suministros-api/internal/application/ledger"
	"github.com/jhoicas/suministros-api/internal/domain"
	"github.com/jhoicas/suministros-api/internal/domain/repository"
)

// ReportPDFGenerator puerto para renderizar el reporte de consumo como PDF.
type ReportPDFGenerator interface {
	GenerateConsumptionPDF(ctx context.Context, report *dto.ConsumptionReportDTO) ([]byte, error)
}

// ReportUseCase reportes de consumo (solo salidas).
type ReportUseCase struct {
	reportRepo repository.ReportRepository
	pdf        ReportPDFGenerator
}

// NewReportUseCase construye el caso de uso. pdf puede ser nil si no se exponen PDFs.
func NewReportUseCase(reportRepo repository.ReportRepository, pdf ReportPDFGenerator) *ReportUseCase {
	return &ReportUseCase{reportRepo: reportRepo, pdf: pdf}
}

// Consumption agrega las salidas del rango por categoría, departamento y mes.
func (uc *ReportUseCase) Consumption(ctx context.Context, q dto.ConsumptionQuery) (*dto.ConsumptionReportDTO, error) {
	filter := repository.ConsumptionFilter{Department: strings.TrimSpace(q.Department)}
	if q.StartDate != "" {
		d, err := ledger.ParseDate(q.StartDate)
		if err != nil {
			return nil, domain.Invalid("start_date", "formato esperado AAAA-MM-DD")
		}
		filter.From = &d
	}
	if q.EndDate != "" {
		d, err := ledger.ParseDate(q.EndDate)
		if err != nil {
			return nil, domain.Invalid("end_date", "formato esperado AAAA-MM-DD")
		}
		filter.To = &d
	}
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return nil, domain.Invalid("end_date", "debe ser posterior a start_date")
	}

	byCategory, err := uc.reportRepo.ConsumptionByCategory(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("reporte: por categoría: %w", err)
	}
	byDepartment, err := uc.reportRepo.ConsumptionByDepartment(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("reporte: por departamento: %w", err)
	}
	byMonth, err := uc.reportRepo.ConsumptionByMonth(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("reporte: por mes: %w", err)
	}

	out := &dto.ConsumptionReportDTO{
		StartDate:    q.StartDate,
		EndDate:      q.EndDate,
		Department:   filter.Department,
		TotalValue:   decimal.Zero,
		ByCategory:   toItems(byCategory),
		ByDepartment: toItems(byDepartment),
		ByMonth:      toItems(byMonth),
	}
	// Cada salida cae exactamente en un mes, así que los totales salen de esa agrupación.
	for _, r := range byMonth {
		out.TotalQuantity += r.Quantity
		out.TotalValue = out.TotalValue.Add(r.Value)
	}
	out.TotalValue = out.TotalValue.Round(2)
	return out, nil
}

// ConsumptionPDF genera el reporte y lo renderiza en PDF.
func (uc *ReportUseCase) ConsumptionPDF(ctx context.Context, q dto.ConsumptionQuery) ([]byte, error) {
	if uc.pdf == nil {
		return nil, fmt.Errorf("reporte: generador PDF no configurado")
	}
	report, err := uc.Consumption(ctx, q)
	if err != nil {
		return nil, err
	}
	return uc.pdf.GenerateConsumptionPDF(ctx, report)
}

func toItems(rows []repository.ConsumptionRow) []dto.ConsumptionItemDTO {
	items := make([]dto.ConsumptionItemDTO, 0, len(rows))
	for _, r := range rows {
		items = append(items, dto.ConsumptionItemDTO{
			Key:      r.Key,
			Quantity: r.Quantity,
			Value:    r.Value.Round(2),
			Entries:  r.Entries,
		})
	}
	return items
}
