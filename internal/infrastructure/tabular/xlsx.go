package tabular

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/suministros-api/internal/application/ledger"
	"github.com/jhoicas/suministros-api/internal/domain"
	"github.com/jhoicas/suministros-api/internal/domain/entity"
)

var (
	_ ledger.TableReader = XLSXReader{}
	_ ledger.TableWriter = XLSXWriter{}
)

// XLSXReader lee la primera hoja de un libro Excel.
type XLSXReader struct{}

// ReadRecords devuelve las filas de la primera hoja; la línea es el número de fila de Excel.
// Todas las filas se rellenan al ancho de la más larga porque Excel omite las celdas
// vacías del final, y las celdas con formato de fecha se devuelven como AAAA-MM-DD.
func (XLSXReader) ReadRecords(src io.Reader) ([]ledger.ImportRecord, error) {
	f, err := excelize.OpenReader(src)
	if err != nil {
		return nil, domain.Invalid("file", "el archivo no es un XLSX válido")
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, domain.Invalid("file", "el libro no tiene hojas")
	}
	sheet := sheets[0]
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("xlsx: leer hoja %q: %w", sheet, err)
	}
	date1904 := false
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		date1904 = *props.Date1904
	}

	width := 0
	for _, cells := range rows {
		if len(cells) > width {
			width = len(cells)
		}
	}
	records := make([]ledger.ImportRecord, 0, len(rows))
	for i, cells := range rows {
		fields := make([]string, width)
		for j, v := range cells {
			fields[j] = cellText(f, sheet, j+1, i+1, v, date1904)
		}
		records = append(records, ledger.ImportRecord{Line: i + 1, Fields: fields})
	}
	return records, nil
}

// cellText convierte el número de serie de una celda de fecha a AAAA-MM-DD;
// cualquier otro valor se devuelve sin cambios.
func cellText(f *excelize.File, sheet string, col, row int, raw string, date1904 bool) string {
	serial, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return raw
	}
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return raw
	}
	idx, err := f.GetCellStyle(sheet, name)
	if err != nil || idx == 0 {
		return raw
	}
	style, err := f.GetStyle(idx)
	if err != nil || !isDateFormat(style) {
		return raw
	}
	t, err := excelize.ExcelDateToTime(serial, date1904)
	if err != nil {
		return raw
	}
	return t.Format(entity.DateLayout)
}

// isDateFormat reconoce los formatos integrados de fecha (14-17, 22 y los
// asiáticos 27-36, 50-58) y los personalizados que contienen año o día.
func isDateFormat(style *excelize.Style) bool {
	switch n := style.NumFmt; {
	case n >= 14 && n <= 17, n == 22, n >= 27 && n <= 36, n >= 50 && n <= 58:
		return true
	}
	if style.CustomNumFmt == nil {
		return false
	}
	var code strings.Builder
	quoted, bracket := false, false
	for _, r := range strings.ToLower(*style.CustomNumFmt) {
		switch {
		case r == '"':
			quoted = !quoted
		case quoted:
		case r == '[':
			bracket = true
		case r == ']':
			bracket = false
		case !bracket:
			code.WriteRune(r)
		}
	}
	return strings.ContainsAny(code.String(), "yd")
}

// XLSXWriter escribe un libro con una sola hoja.
type XLSXWriter struct{}

func (XLSXWriter) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}
func (XLSXWriter) Extension() string { return "xlsx" }

// WriteTable vuelca rows en la hoja sheet (por defecto "Sheet1").
func (XLSXWriter) WriteTable(w io.Writer, sheet string, rows [][]string) error {
	f := excelize.NewFile()
	defer f.Close()

	if sheet == "" {
		sheet = "Sheet1"
	}
	if sheet != "Sheet1" {
		if err := f.SetSheetName("Sheet1", sheet); err != nil {
			return fmt.Errorf("xlsx: renombrar hoja: %w", err)
		}
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		values := make([]interface{}, len(r))
		for j, v := range r {
			values[j] = v
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("xlsx: escribir fila %d: %w", i+1, err)
		}
	}
	if len(rows) > 0 {
		_ = f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("xlsx: escribir libro: %w", err)
	}
	return nil
}
