package tabular

import (
	"strings"

	"github.com/jhoicas/suministros-api/internal/application/ledger"
	"github.com/jhoicas/suministros-api/internal/domain"
)

// Writers formatos de salida disponibles, indexados como los espera ledger.NewExportUseCase.
func Writers() map[string]ledger.TableWriter {
	return map[string]ledger.TableWriter{
		"csv":  CSVWriter{},
		"xlsx": XLSXWriter{},
	}
}

// ReaderFor elige el lector según el formato ("csv", "xlsx") o, si viene vacío, la extensión del
// nombre de archivo. encoding solo aplica a CSV.
func ReaderFor(format, filename, encoding string) (ledger.TableReader, error) {
	f := strings.ToLower(strings.TrimSpace(format))
	if f == "" {
		name := strings.ToLower(filename)
		switch {
		case strings.HasSuffix(name, ".xlsx"):
			f = "xlsx"
		default:
			f = "csv"
		}
	}
	switch f {
	case "csv":
		return NewCSVReader(encoding)
	case "xlsx":
		return XLSXReader{}, nil
	default:
		return nil, domain.Invalid("format", "formato no soportado: "+format)
	}
}
