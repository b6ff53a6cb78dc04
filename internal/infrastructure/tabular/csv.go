// Package tabular implementa la lectura y escritura de archivos tabulares (CSV y XLSX) usados
// por la importación masiva, la exportación de registros y las plantillas.
package tabular

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"

	"github.com/jhoicas/suministros-api/internal/application/ledger"
	"github.com/jhoicas/suministros-api/internal/domain"
)

// Codificaciones aceptadas por CSVReader.
const (
	EncodingAuto    = "auto" // UTF-8 si es válido; si no, GB18030
	EncodingUTF8    = "utf-8"
	EncodingGB18030 = "gb18030"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

var (
	_ ledger.TableReader = (*CSVReader)(nil)
	_ ledger.TableWriter = CSVWriter{}
)

// CSVReader lee CSV separados por coma. La coma de ancho completo (，) cuenta como separador.
type CSVReader struct {
	Encoding string
}

// NewCSVReader construye el lector; encoding vacío = auto.
func NewCSVReader(encoding string) (*CSVReader, error) {
	enc := strings.ToLower(strings.TrimSpace(encoding))
	switch enc {
	case "":
		enc = EncodingAuto
	case "utf8":
		enc = EncodingUTF8
	case EncodingAuto, EncodingUTF8, EncodingGB18030:
	default:
		return nil, domain.Invalid("encoding", "codificación no soportada: "+encoding)
	}
	return &CSVReader{Encoding: enc}, nil
}

// ReadRecords decodifica el archivo completo y devuelve cada fila con su línea física.
func (r *CSVReader) ReadRecords(src io.Reader) ([]ledger.ImportRecord, error) {
	raw, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("csv: leer archivo: %w", err)
	}
	text, err := r.decode(bytes.TrimPrefix(raw, utf8BOM))
	if err != nil {
		return nil, err
	}
	text = strings.ReplaceAll(text, "，", ",")

	cr := csv.NewReader(strings.NewReader(text))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	var records []ledger.ImportRecord
	for {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				return nil, domain.Invalid("file", fmt.Sprintf("CSV mal formado en línea %d", pe.StartLine))
			}
			return nil, fmt.Errorf("csv: parsear: %w", err)
		}
		line, _ := cr.FieldPos(0)
		records = append(records, ledger.ImportRecord{Line: line, Fields: fields})
	}
	return records, nil
}

func (r *CSVReader) decode(b []byte) (string, error) {
	switch r.Encoding {
	case EncodingUTF8:
		if !utf8.Valid(b) {
			return "", domain.Invalid("file", "el archivo no es UTF-8 válido")
		}
		return string(b), nil
	case EncodingGB18030:
		return decodeGB18030(b)
	default:
		if utf8.Valid(b) {
			return string(b), nil
		}
		return decodeGB18030(b)
	}
}

func decodeGB18030(b []byte) (string, error) {
	out, _, err := transform.Bytes(simplifiedchinese.GB18030.NewDecoder(), b)
	if err != nil {
		return "", domain.Invalid("file", "no se pudo decodificar el archivo como GB18030")
	}
	return string(out), nil
}

// CSVWriter escribe CSV UTF-8 con BOM para que Excel detecte la codificación.
type CSVWriter struct{}

func (CSVWriter) ContentType() string { return "text/csv; charset=utf-8" }
func (CSVWriter) Extension() string   { return "csv" }

// WriteTable escribe las filas; sheet no aplica a CSV.
func (CSVWriter) WriteTable(w io.Writer, _ string, rows [][]string) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return fmt.Errorf("csv: escribir BOM: %w", err)
	}
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("csv: escribir filas: %w", err)
	}
	return nil
}
