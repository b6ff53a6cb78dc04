package ledger

import (
	"context"
	"io"

	"github.com/jhoicas/suministros-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de almacenamiento, pasando repositorios
// atados a esa transacción. Si fn devuelve error no queda ningún cambio aplicado.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		entryRepo repository.LedgerRepository,
		productRepo repository.ProductRepository,
		categoryRepo repository.CategoryRepository,
	) error) error
}

// TableWriter serializa una tabla (primera fila = encabezado) en un formato de archivo.
type TableWriter interface {
	ContentType() string
	Extension() string
	WriteTable(w io.Writer, sheet string, rows [][]string) error
}

// TableReader lee un archivo tabular y devuelve sus filas con el número de línea física.
type TableReader interface {
	ReadRecords(r io.Reader) ([]ImportRecord, error)
}
