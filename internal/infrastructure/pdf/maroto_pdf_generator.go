// Package pdf genera el reporte de consumo de suministros en PDF con Maroto v2.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Nombre de la app       │  Rango de fechas          │
//	│  ─────────────────────────────────────────────────────────  │
//	│  RESUMEN: unidades consumidas / valor total / departamento  │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA por categoría   (Clave | Registros | Unidades | $)   │
//	│  TABLA por departamento                                     │
//	│  TABLA por mes                                              │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/suministros-api/internal/application/analytics"
	"github.com/jhoicas/suministros-api/internal/application/dto"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorStripe  = &props.Color{Red: 235, Green: 241, Blue: 247}
)

var _ analytics.ReportPDFGenerator = (*MarotoPDFGenerator)(nil)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoPDFGenerator implementa analytics.ReportPDFGenerator usando Maroto v2.
type MarotoPDFGenerator struct {
	appName string
}

// NewMarotoPDFGenerator construye el generador.
func NewMarotoPDFGenerator(appName string) *MarotoPDFGenerator {
	return &MarotoPDFGenerator{appName: appName}
}

// GenerateConsumptionPDF genera el PDF del reporte y devuelve sus bytes.
func (g *MarotoPDFGenerator) GenerateConsumptionPDF(_ context.Context, report *dto.ConsumptionReportDTO) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Reporte de consumo de suministros", true).
		WithAuthor(g.appName, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(g.appName, report))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(summaryRow(report))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	sections := []struct {
		title string
		items []dto.ConsumptionItemDTO
	}{
		{"CONSUMO POR CATEGORÍA", report.ByCategory},
		{"CONSUMO POR DEPARTAMENTO", report.ByDepartment},
		{"CONSUMO POR MES", report.ByMonth},
	}
	for _, s := range sections {
		m.AddRows(row.New(4))
		m.AddRows(sectionTitleRow(s.title))
		m.AddRows(tableHeaderRow())
		m.AddRows(tableRows(s.items)...)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(appName string, r *dto.ConsumptionReportDTO) core.Row {
	return row.New(16).Add(
		col.New(7).Add(
			text.New(nonEmpty(appName, "Suministros"), props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Reporte de consumo de suministros", props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("PERIODO", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New(periodLabel(r.StartDate, r.EndDate), props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right, Top: 7,
			}),
		),
	)
}

func summaryRow(r *dto.ConsumptionReportDTO) core.Row {
	label := func(s string) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1})
	}
	value := func(s string) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 11, Top: 6})
	}
	return row.New(14).Add(
		col.New(4).Add(label("UNIDADES CONSUMIDAS"), value(formatMoney(fmt.Sprint(r.TotalQuantity)))),
		col.New(4).Add(label("VALOR TOTAL"), value("$"+formatMoney(r.TotalValue.StringFixed(0)))),
		col.New(4).Add(label("DEPARTAMENTO"), value(nonEmpty(r.Department, "Todos"))),
	)
}

func sectionTitleRow(title string) core.Row {
	return row.New(7).Add(col.New(12).Add(
		text.New(title, props.Text{Style: fontstyle.Bold, Size: 9, Color: colorPrimary, Top: 1}),
	))
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Top: 1, Left: 1, Right: 1,
		}))
	}
	return row.New(6).Add(
		h("Clave", 6, align.Left),
		h("Registros", 2, align.Right),
		h("Unidades", 2, align.Right),
		h("Valor", 2, align.Right),
	).WithStyle(&props.Cell{BackgroundColor: colorStripe})
}

func tableRows(items []dto.ConsumptionItemDTO) []core.Row {
	if len(items) == 0 {
		return []core.Row{row.New(6).Add(col.New(12).Add(
			text.New("Sin salidas en el periodo", props.Text{Size: 8, Color: colorGray, Top: 1, Left: 1}),
		))}
	}
	result := make([]core.Row, 0, len(items))
	for _, it := range items {
		result = append(result, row.New(6).Add(
			col.New(6).Add(text.New(nonEmpty(it.Key, "(sin asignar)"), props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(2).Add(text.New(fmt.Sprint(it.Entries), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(2).Add(text.New(formatMoney(fmt.Sprint(it.Quantity)), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(2).Add(text.New("$"+formatMoney(it.Value.StringFixed(0)), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return result
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if strings.TrimSpace(s) != "" {
		return s
	}
	return fallback
}

func periodLabel(start, end string) string {
	switch {
	case start == "" && end == "":
		return "Histórico completo"
	case start == "":
		return "hasta " + end
	case end == "":
		return "desde " + start
	default:
		return start + " a " + end
	}
}

// formatMoney inserta puntos de miles en un string numérico entero.
// Ej: "25000" → "25.000", "-1000000" → "-1.000.000"
func formatMoney(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	n := len(s)
	if n <= 3 {
		return sign + s
	}
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(s) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	return sign + string(buf)
}
