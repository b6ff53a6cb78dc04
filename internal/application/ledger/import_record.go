package ledger

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/suministros-api/internal/domain/entity"
)

// Columnas de los archivos de importación. La nota y el proveedor son opcionales;
// las columnas finales pueden faltar.
//
//	OUT: fecha, categoria, marca, modelo, cantidad, departamento, responsable, nota
//	IN:  fecha, categoria, marca, modelo, cantidad, precio, proveedor, nota
const (
	colDate = iota
	colCategory
	colBrand
	colModel
	colQuantity
	colDeptOrPrice
	colHandlerOrSupplier
	colNote

	minImportColumns = colHandlerOrSupplier
)

// ImportHeaders encabezados de la plantilla por tipo.
var ImportHeaders = map[string][]string{
	entity.EntryTypeOUT: {"fecha", "categoria", "marca", "modelo", "cantidad", "departamento", "responsable", "nota"},
	entity.EntryTypeIN:  {"fecha", "categoria", "marca", "modelo", "cantidad", "precio", "proveedor", "nota"},
}

// ImportRecord una fila cruda del archivo con su número de línea física (la primera línea es 1).
type ImportRecord struct {
	Line   int
	Fields []string
}

// IsBlank indica si todos los campos están vacíos.
func (r ImportRecord) IsBlank() bool {
	for _, f := range r.Fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// importRow fila ya validada.
type importRow struct {
	line        int
	date        time.Time
	category    string
	brand       string
	model       string
	quantity    int64
	price       decimal.Decimal // solo IN
	department  string
	handlerName string // responsable (OUT) o proveedor (IN)
	note        string

	productID    string
	productLabel string
}

func parseImportRecord(entryType string, rec ImportRecord) (*importRow, error) {
	if len(rec.Fields) < minImportColumns {
		return nil, fmt.Errorf("se esperaban al menos %d columnas, hay %d", minImportColumns, len(rec.Fields))
	}
	field := func(i int) string {
		if i >= len(rec.Fields) {
			return ""
		}
		return strings.TrimSpace(rec.Fields[i])
	}

	date, err := ParseDate(field(colDate))
	if err != nil {
		return nil, fmt.Errorf("fecha inválida %q (use AAAA-MM-DD)", field(colDate))
	}
	row := &importRow{
		line:        rec.Line,
		date:        date,
		category:    field(colCategory),
		brand:       field(colBrand),
		model:       field(colModel),
		handlerName: field(colHandlerOrSupplier),
		note:        field(colNote),
	}
	if row.category == "" {
		return nil, fmt.Errorf("categoría vacía")
	}
	if row.model == "" {
		return nil, fmt.Errorf("modelo vacío")
	}
	qty, err := strconv.ParseInt(field(colQuantity), 10, 64)
	if err != nil || qty <= 0 {
		return nil, fmt.Errorf("cantidad inválida %q (entero mayor que cero)", field(colQuantity))
	}
	row.quantity = qty

	switch entryType {
	case entity.EntryTypeOUT:
		row.department = field(colDeptOrPrice)
		if row.department == "" {
			return nil, fmt.Errorf("departamento vacío")
		}
		if row.handlerName == "" {
			return nil, fmt.Errorf("responsable vacío")
		}
	case entity.EntryTypeIN:
		price, err := decimal.NewFromString(field(colDeptOrPrice))
		if err != nil || price.IsNegative() {
			return nil, fmt.Errorf("precio inválido %q", field(colDeptOrPrice))
		}
		row.price = price
	}
	return row, nil
}
