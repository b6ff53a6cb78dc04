package http

import (
	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/jhoicas/suministros-api/internal/application/analytics"
	"github.com/jhoicas/suministros-api/internal/application/dto"
)

// DashboardHandler maneja los endpoints del dashboard y los reportes de consumo.
type DashboardHandler struct {
	dashboard *appanalytics.DashboardUseCase
	reports   *appanalytics.ReportUseCase
}

// NewDashboardHandler construye el handler.
func NewDashboardHandler(dashboard *appanalytics.DashboardUseCase, reports *appanalytics.ReportUseCase) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard, reports: reports}
}

// GetSummary devuelve el resumen del inventario y del mes en curso.
// GET /api/dashboard/summary
//
// No requiere parámetros; las fechas se calculan en el servidor.
func (h *DashboardHandler) GetSummary(c *fiber.Ctx) error {
	summary, err := h.dashboard.GetSummary(c.Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(summary)
}

// Consumption godoc
// @Summary      Reporte de consumo
// @Description  Salidas agregadas por categoría, departamento y mes.
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        start_date  query  string  false  "Desde (AAAA-MM-DD)"
// @Param        end_date    query  string  false  "Hasta (AAAA-MM-DD)"
// @Param        department  query  string  false  "Departamento"
// @Success      200  {object}  dto.ConsumptionReportDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/reports/consumption [get]
func (h *DashboardHandler) Consumption(c *fiber.Ctx) error {
	q, err := consumptionQuery(c)
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.reports.Consumption(c.Context(), q)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ConsumptionPDF godoc
// @Summary      Reporte de consumo en PDF
// @Tags         reports
// @Security     Bearer
// @Produce      application/pdf
// @Param        start_date  query  string  false  "Desde (AAAA-MM-DD)"
// @Param        end_date    query  string  false  "Hasta (AAAA-MM-DD)"
// @Param        department  query  string  false  "Departamento"
// @Success      200
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/reports/consumption/pdf [get]
func (h *DashboardHandler) ConsumptionPDF(c *fiber.Ctx) error {
	q, err := consumptionQuery(c)
	if err != nil {
		return writeError(c, err)
	}
	pdf, err := h.reports.ConsumptionPDF(c.Context(), q)
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="consumo.pdf"`)
	return c.Send(pdf)
}

func consumptionQuery(c *fiber.Ctx) (dto.ConsumptionQuery, error) {
	var q dto.ConsumptionQuery
	if err := c.QueryParser(&q); err != nil {
		return q, fieldErrors{"query": "inválido"}
	}
	return q, validateStruct(q)
}
