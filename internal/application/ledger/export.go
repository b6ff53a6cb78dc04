package ledger

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/jhoicas/suministros-api/internal/application/dto"
	"github.com/jhoicas/suministros-api/internal/domain"
	"github.com/jhoicas/suministros-api/internal/domain/entity"
	"github.com/jhoicas/suministros-api/internal/domain/repository"
)

// ExportHeader columnas del archivo de exportación de registros.
var ExportHeader = []string{"fecha", "tipo", "categoria", "marca", "modelo", "cantidad", "precio", "departamento", "responsable", "nota"}

// ExportUseCase exporta registros y genera plantillas de importación en los formatos registrados.
type ExportUseCase struct {
	entryRepo repository.LedgerRepository
	writers   map[string]TableWriter
	now       func() time.Time
}

// NewExportUseCase construye el caso de uso. writers se indexa por formato ("csv", "xlsx").
func NewExportUseCase(entryRepo repository.LedgerRepository, writers map[string]TableWriter) *ExportUseCase {
	return &ExportUseCase{entryRepo: entryRepo, writers: writers, now: time.Now}
}

// ExportFile metadatos del archivo generado.
type ExportFile struct {
	Filename    string
	ContentType string
}

// Writer devuelve el TableWriter del formato o ErrInvalidInput si no existe.
func (uc *ExportUseCase) Writer(format string) (TableWriter, error) {
	if format == "" {
		format = "csv"
	}
	w, ok := uc.writers[strings.ToLower(format)]
	if !ok {
		return nil, domain.Invalid("format", "formato no soportado: "+format)
	}
	return w, nil
}

// ExportEntries escribe todos los registros que cumplen los filtros (sin paginación).
func (uc *ExportUseCase) ExportEntries(ctx context.Context, q dto.EntryListQuery, format string, w io.Writer) (*ExportFile, error) {
	tw, err := uc.Writer(format)
	if err != nil {
		return nil, err
	}
	q.Limit, q.Offset = 0, 0
	filter, err := entryFilter(q)
	if err != nil {
		return nil, err
	}
	list, err := uc.entryRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("exportar registros: %w", err)
	}

	rows := make([][]string, 0, len(list)+1)
	rows = append(rows, ExportHeader)
	for _, v := range list {
		rows = append(rows, []string{
			v.Date.Format(entity.DateLayout),
			v.Type,
			v.CategoryName,
			v.Brand,
			v.Model,
			strconv.FormatInt(v.Quantity, 10),
			v.Price.StringFixed(2),
			v.Department,
			v.HandlerName,
			v.Note,
		})
	}
	if err := tw.WriteTable(w, "registros", rows); err != nil {
		return nil, err
	}
	name := "registros"
	if filter.Type != "" {
		name += "_" + strings.ToLower(filter.Type)
	}
	return &ExportFile{
		Filename:    fmt.Sprintf("%s_%s.%s", name, uc.now().Format("20060102"), tw.Extension()),
		ContentType: tw.ContentType(),
	}, nil
}

// Template escribe la plantilla de importación del tipo indicado con dos filas de ejemplo.
func (uc *ExportUseCase) Template(entryType, format string, w io.Writer) (*ExportFile, error) {
	entryType = strings.ToUpper(entryType)
	header, ok := ImportHeaders[entryType]
	if !ok {
		return nil, domain.Invalid("type", "debe ser IN u OUT")
	}
	tw, err := uc.Writer(format)
	if err != nil {
		return nil, err
	}
	today := uc.now().Format(entity.DateLayout)
	rows := [][]string{header}
	if entryType == entity.EntryTypeOUT {
		rows = append(rows,
			[]string{today, "Papelería", "Faber", "Bolígrafo azul", "10", "Contabilidad", "Ana Pérez", ""},
			[]string{today, "Tóner", "HP", "CF283A", "1", "Sistemas", "Luis Gómez", "impresora piso 2"},
		)
	} else {
		rows = append(rows,
			[]string{today, "Papelería", "Faber", "Bolígrafo azul", "100", "0.45", "Distribuidora Central", ""},
			[]string{today, "Tóner", "HP", "CF283A", "5", "62.90", "Suministros HP", "pedido trimestral"},
		)
	}
	if err := tw.WriteTable(w, "plantilla", rows); err != nil {
		return nil, err
	}
	return &ExportFile{
		Filename:    fmt.Sprintf("plantilla_%s.%s", strings.ToLower(entryType), tw.Extension()),
		ContentType: tw.ContentType(),
	}, nil
}
