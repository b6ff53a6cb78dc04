package tabular_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/simplifiedchinese"

	"github.com/jhoicas/suministros-api/internal/domain"
	"github.com/jhoicas/suministros-api/internal/infrastructure/tabular"
)

// ─── CSV ──────────────────────────────────────────────────────────────────────

func TestCSVReader_BOMAndFullWidthComma(t *testing.T) {
	r, err := tabular.NewCSVReader("")
	require.NoError(t, err)

	src := "\xEF\xBB\xBFfecha,categoria\n2024-01-05，Papel，HP，A4，3，Contabilidad，Ana\n\n2024-01-06,Papel,HP,A4,1,Compras,Luis\n"
	recs, err := r.ReadRecords(strings.NewReader(src))
	require.NoError(t, err)

	require.Len(t, recs, 3)
	assert.Equal(t, 1, recs[0].Line)
	assert.Equal(t, "fecha", recs[0].Fields[0])
	assert.Equal(t, 2, recs[1].Line)
	assert.Equal(t, []string{"2024-01-05", "Papel", "HP", "A4", "3", "Contabilidad", "Ana"}, recs[1].Fields)
	// la línea vacía no produce registro pero sí cuenta en la numeración
	assert.Equal(t, 4, recs[2].Line)
}

func TestCSVReader_GB18030(t *testing.T) {
	encoded, err := simplifiedchinese.GB18030.NewEncoder().String("2024-01-05,纸张,得力,A4,2,财务部,王伟\n")
	require.NoError(t, err)

	r, err := tabular.NewCSVReader("auto")
	require.NoError(t, err)
	recs, err := r.ReadRecords(strings.NewReader(encoded))
	require.NoError(t, err)

	require.Len(t, recs, 1)
	assert.Equal(t, "纸张", recs[0].Fields[1])
	assert.Equal(t, "王伟", recs[0].Fields[6])
}

func TestCSVReader_StrictUTF8Rejects(t *testing.T) {
	r, err := tabular.NewCSVReader("utf-8")
	require.NoError(t, err)

	_, err = r.ReadRecords(bytes.NewReader([]byte{0xB0, 0xA1, ',', 'x', '\n'}))
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestNewCSVReader_UnknownEncoding(t *testing.T) {
	_, err := tabular.NewCSVReader("latin9")
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestCSVWriter_WritesBOM(t *testing.T) {
	var buf bytes.Buffer
	err := tabular.CSVWriter{}.WriteTable(&buf, "", [][]string{{"fecha", "nota"}, {"2024-01-05", "con, coma"}})
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte{0xEF, 0xBB, 0xBF}))
	assert.Contains(t, buf.String(), `2024-01-05,"con, coma"`)
}

// ─── XLSX ─────────────────────────────────────────────────────────────────────

func TestXLSX_RoundTrip(t *testing.T) {
	rows := [][]string{
		{"fecha", "categoria", "marca", "modelo", "cantidad"},
		{"2024-01-05", "Papel", "HP", "A4", "3"},
		{"2024-01-06", "Tóner", "Brother", "TN-660", "1"},
	}
	var buf bytes.Buffer
	require.NoError(t, tabular.XLSXWriter{}.WriteTable(&buf, "registros", rows))

	recs, err := tabular.XLSXReader{}.ReadRecords(&buf)
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, 3, recs[2].Line)
	assert.Equal(t, rows[2], recs[2].Fields)
}

func TestXLSXReader_PadsTrailingEmptyCells(t *testing.T) {
	rows := [][]string{
		{"fecha", "categoria", "marca", "modelo", "cantidad", "precio", "proveedor", "nota"},
		{"2024-03-01", "Cables", "Acme", "C100", "4", "1.20", "", ""},
	}
	var buf bytes.Buffer
	require.NoError(t, tabular.XLSXWriter{}.WriteTable(&buf, "", rows))

	recs, err := tabular.XLSXReader{}.ReadRecords(&buf)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, rows[1], recs[1].Fields)
}

func TestXLSXReader_DateCells(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"fecha", "categoria", "marca", "modelo", "cantidad"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), "Papel", "HP", "A4", 3}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]interface{}{time.Date(2024, 3, 2, 14, 30, 0, 0, time.UTC), "Papel", "HP", "A4", 2.5}))

	custom := "dd/mm/yyyy"
	style, err := f.NewStyle(&excelize.Style{CustomNumFmt: &custom})
	require.NoError(t, err)
	require.NoError(t, f.SetCellValue("Sheet1", "A4", 45370))
	require.NoError(t, f.SetCellStyle("Sheet1", "A4", "A4", style))
	require.NoError(t, f.SetCellValue("Sheet1", "E4", 7))

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	recs, err := tabular.XLSXReader{}.ReadRecords(&buf)
	require.NoError(t, err)
	require.Len(t, recs, 4)
	assert.Equal(t, []string{"2024-03-01", "Papel", "HP", "A4", "3"}, recs[1].Fields)
	assert.Equal(t, "2024-03-02", recs[2].Fields[0])
	assert.Equal(t, "2.5", recs[2].Fields[4], "los números sin formato de fecha no cambian")
	assert.Equal(t, []string{"2024-03-19", "", "", "", "7"}, recs[3].Fields)
}

func TestXLSXReader_InvalidFile(t *testing.T) {
	_, err := tabular.XLSXReader{}.ReadRecords(strings.NewReader("no es un zip"))
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

// ─── Registro de formatos ─────────────────────────────────────────────────────

func TestReaderFor(t *testing.T) {
	r, err := tabular.ReaderFor("", "salidas.XLSX", "")
	require.NoError(t, err)
	assert.IsType(t, tabular.XLSXReader{}, r)

	r, err = tabular.ReaderFor("", "salidas.csv", "gb18030")
	require.NoError(t, err)
	assert.Equal(t, tabular.EncodingGB18030, r.(*tabular.CSVReader).Encoding)

	_, err = tabular.ReaderFor("ods", "x.ods", "")
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	assert.Len(t, tabular.Writers(), 2)
}
