package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/suministros-api/internal/application/analytics"
	"github.com/jhoicas/suministros-api/internal/application/auth"
	"github.com/jhoicas/suministros-api/internal/application/dto"
	"github.com/jhoicas/suministros-api/internal/application/ledger"
	"github.com/jhoicas/suministros-api/internal/application/usecase"
	"github.com/jhoicas/suministros-api/internal/infrastructure/memory"
	"github.com/jhoicas/suministros-api/internal/infrastructure/tabular"
	apphttp "github.com/jhoicas/suministros-api/internal/interfaces/http"
)

// ──────────────────────────────────────────────────────────────────────────────
// App completa sobre el almacenamiento en memoria
// ──────────────────────────────────────────────────────────────────────────────

func buildAPI(t *testing.T) *fiber.App {
	t.Helper()
	store := memory.NewStore()
	tx := memory.NewTxRunner(store)
	nop := zerolog.Nop()

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		ProductUC:      usecase.NewProductUseCase(store.Products(), store.Categories(), tx, nop),
		CategoryUC:     usecase.NewCategoryUseCase(store.Categories()),
		Adjuster:       ledger.NewStockAdjuster(tx, store.Products(), store.Entries(), nop),
		Importer:       ledger.NewBulkImporter(tx, store.Products(), store.Categories(), 0, nop),
		Exporter:       ledger.NewExportUseCase(store.Entries(), tabular.Writers()),
		DashboardUC:    analytics.NewDashboardUseCase(store.Reports(), store.Products(), store.Entries()),
		ReportUC:       analytics.NewReportUseCase(store.Reports(), nil),
		AuthUC:         auth.NewAuthUseCase(store.Users(), auth.JWTConfig{Secret: testJWTSecret, ExpMinutes: testExpMin, Issuer: testIssuer}),
		JWTSecret:      testJWTSecret,
		ImportMaxBytes: 1 << 10,
	})
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body interface{}) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

// registerAndLogin da de alta al usuario y devuelve su token; el primer registro no lleva token.
func registerAndLogin(t *testing.T, app *fiber.App, adminToken, email, role string) string {
	t.Helper()
	resp := doJSON(t, app, http.MethodPost, "/api/auth/register", adminToken, dto.RegisterRequest{
		Email: email, Password: "password1", Role: role,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Email: email, Password: "password1"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out dto.LoginResponse
	decode(t, resp, &out)
	return out.Token
}

// seedProduct crea categoría y producto como admin y devuelve el ID del producto.
func seedProduct(t *testing.T, app *fiber.App, token string, stock int64) string {
	t.Helper()
	resp := doJSON(t, app, http.MethodPost, "/api/categories", token, dto.CreateCategoryRequest{Name: "Tóner"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var cat dto.CategoryResponse
	decode(t, resp, &cat)

	resp = doJSON(t, app, http.MethodPost, "/api/products", token, map[string]interface{}{
		"category_id": cat.ID, "brand": "HP", "model": "CF283A", "price": "62.90", "stock_quantity": stock,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var p dto.ProductResponse
	decode(t, resp, &p)
	return p.ID
}

func productStock(t *testing.T, app *fiber.App, token, id string) int64 {
	t.Helper()
	resp := doJSON(t, app, http.MethodGet, "/api/products/"+id, token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var p dto.ProductResponse
	decode(t, resp, &p)
	return p.StockQuantity
}

// ──────────────────────────────────────────────────────────────────────────────
// Flujo de movimientos
// ──────────────────────────────────────────────────────────────────────────────

func TestLedgerAPI_CrearEditarBorrar(t *testing.T) {
	app := buildAPI(t)
	admin := registerAndLogin(t, app, "", "admin@oficina.com", "")
	pid := seedProduct(t, app, admin, 10)

	out := map[string]interface{}{
		"product_id": pid, "type": "OUT", "quantity": 4, "date": "2024-03-05",
		"department": "Contabilidad", "handler_name": "Ana",
	}
	resp := doJSON(t, app, http.MethodPost, "/api/entries", admin, out)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created dto.EntryResponse
	decode(t, resp, &created)
	require.NotNil(t, created.StockAfter)
	assert.Equal(t, int64(6), *created.StockAfter)

	out["quantity"] = 10
	resp = doJSON(t, app, http.MethodPost, "/api/entries", admin, out)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	var errBody dto.ErrorResponse
	decode(t, resp, &errBody)
	assert.Equal(t, "INSUFFICIENT_STOCK", errBody.Code)
	assert.Contains(t, errBody.Message, "actual: 6")
	assert.Equal(t, int64(6), productStock(t, app, admin, pid))

	out["quantity"] = 2
	resp = doJSON(t, app, http.MethodPut, "/api/entries/"+created.ID, admin, out)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
	assert.Equal(t, int64(8), productStock(t, app, admin, pid))

	resp = doJSON(t, app, http.MethodDelete, "/api/entries/"+created.ID, admin, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, int64(10), productStock(t, app, admin, pid))

	resp = doJSON(t, app, http.MethodGet, "/api/entries/"+created.ID, admin, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestLedgerAPI_ValidacionDeCuerpo(t *testing.T) {
	app := buildAPI(t)
	admin := registerAndLogin(t, app, "", "admin@oficina.com", "")
	pid := seedProduct(t, app, admin, 10)

	resp := doJSON(t, app, http.MethodPost, "/api/entries", admin, map[string]interface{}{
		"product_id": pid, "type": "MOVE", "quantity": 0,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var errBody dto.ErrorResponse
	decode(t, resp, &errBody)
	assert.Equal(t, "VALIDATION", errBody.Code)
	assert.Contains(t, errBody.Fields, "type")
	assert.Contains(t, errBody.Fields, "quantity")

	resp = doJSON(t, app, http.MethodPost, "/api/entries", admin, map[string]interface{}{
		"product_id": pid, "type": "OUT", "quantity": 1,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var deptErr dto.ErrorResponse
	decode(t, resp, &deptErr)
	assert.Equal(t, map[string]string{"department": "requerido en salidas"}, deptErr.Fields)
}

func TestLedgerAPI_FechaConBarras(t *testing.T) {
	app := buildAPI(t)
	admin := registerAndLogin(t, app, "", "admin@oficina.com", "")
	pid := seedProduct(t, app, admin, 10)

	body := map[string]interface{}{
		"product_id": pid, "type": "OUT", "quantity": 1, "date": "2024/03/05",
		"department": "TI", "handler_name": "Luis",
	}
	resp := doJSON(t, app, http.MethodPost, "/api/entries", admin, body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created dto.EntryResponse
	decode(t, resp, &created)
	assert.Equal(t, "2024-03-05", created.Date)

	resp = doJSON(t, app, http.MethodGet, "/api/entries?start_date=2024/03/01&end_date=2024/03/31", admin, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	body["date"] = "05-03-2024"
	resp = doJSON(t, app, http.MethodPost, "/api/entries", admin, body)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var errBody dto.ErrorResponse
	decode(t, resp, &errBody)
	assert.Equal(t, map[string]string{"date": "calendardate"}, errBody.Fields)
}

func TestLedgerAPI_ListaPaginada(t *testing.T) {
	app := buildAPI(t)
	admin := registerAndLogin(t, app, "", "admin@oficina.com", "")
	pid := seedProduct(t, app, admin, 0)

	for i := 0; i < 3; i++ {
		resp := doJSON(t, app, http.MethodPost, "/api/entries", admin, map[string]interface{}{
			"product_id": pid, "type": "IN", "quantity": 2, "date": "2024-03-01",
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		resp.Body.Close()
	}

	resp := doJSON(t, app, http.MethodGet, "/api/entries?type=IN&limit=2", admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list dto.EntryListResponse
	decode(t, resp, &list)
	assert.Equal(t, 3, list.Page.Total)
	assert.Len(t, list.Items, 2)
	assert.Equal(t, "Tóner", list.Items[0].CategoryName)
}

// ──────────────────────────────────────────────────────────────────────────────
// Roles
// ──────────────────────────────────────────────────────────────────────────────

func TestLedgerAPI_StaffRegistraPeroNoGestionaCatalogo(t *testing.T) {
	app := buildAPI(t)
	admin := registerAndLogin(t, app, "", "admin@oficina.com", "")
	pid := seedProduct(t, app, admin, 5)
	staff := registerAndLogin(t, app, admin, "staff@oficina.com", "staff")

	resp := doJSON(t, app, http.MethodPost, "/api/categories", staff, dto.CreateCategoryRequest{Name: "Cables"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = doJSON(t, app, http.MethodDelete, "/api/products/"+pid+"?confirmation=HP/CF283A", staff, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPost, "/api/entries", staff, map[string]interface{}{
		"product_id": pid, "type": "OUT", "quantity": 1, "department": "TI", "handler_name": "Luis",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	// Un staff no puede dar de alta usuarios.
	resp = doJSON(t, app, http.MethodPost, "/api/auth/register", staff, dto.RegisterRequest{Email: "x@oficina.com", Password: "password1"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = doJSON(t, app, http.MethodGet, "/api/entries", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestProductAPI_DeleteConConfirmacion(t *testing.T) {
	app := buildAPI(t)
	admin := registerAndLogin(t, app, "", "admin@oficina.com", "")
	pid := seedProduct(t, app, admin, 5)

	resp := doJSON(t, app, http.MethodDelete, "/api/products/"+pid, admin, dto.DeleteProductRequest{Confirmation: "CF283A"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var errBody dto.ErrorResponse
	decode(t, resp, &errBody)
	assert.Equal(t, "CONFIRMATION_MISMATCH", errBody.Code)

	resp = doJSON(t, app, http.MethodDelete, "/api/products/"+pid, admin, dto.DeleteProductRequest{Confirmation: "HP/CF283A"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodGet, "/api/products/"+pid, admin, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Importación y exportación
// ──────────────────────────────────────────────────────────────────────────────

func importRequest(t *testing.T, token, filename, content string, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/entries/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestLedgerAPI_ImportarCSV(t *testing.T) {
	app := buildAPI(t)
	admin := registerAndLogin(t, app, "", "admin@oficina.com", "")

	csv := "fecha,categoria,marca,modelo,cantidad,precio,proveedor,nota\n" +
		"2024-03-01,Papelería,Faber,Bolígrafo,100,0.45,Distribuidora,\n" +
		"2024-03-01,Papelería,Faber,Lápiz,x,0.30,Distribuidora,\n"
	resp, err := app.Test(importRequest(t, admin, "entradas.csv", csv, map[string]string{"type": "IN"}), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var res dto.ImportResult
	decode(t, resp, &res)
	assert.Equal(t, 1, res.Created)
	assert.Equal(t, 1, res.NewCategories)
	assert.Equal(t, 1, res.NewProducts)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "línea 3")
}

func TestLedgerAPI_ImportarArchivoDemasiadoGrande(t *testing.T) {
	app := buildAPI(t)
	admin := registerAndLogin(t, app, "", "admin@oficina.com", "")

	big := strings.Repeat("2024-03-01,Papel,Chamex,A4,1,4.5,Prov,\n", 100)
	resp, err := app.Test(importRequest(t, admin, "grande.csv", big, map[string]string{"type": "IN"}), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
}

func TestLedgerAPI_ExportarYPlantilla(t *testing.T) {
	app := buildAPI(t)
	admin := registerAndLogin(t, app, "", "admin@oficina.com", "")
	pid := seedProduct(t, app, admin, 5)
	resp := doJSON(t, app, http.MethodPost, "/api/entries", admin, map[string]interface{}{
		"product_id": pid, "type": "OUT", "quantity": 2, "date": "2024-03-05", "department": "TI", "handler_name": "Luis",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodGet, "/api/entries/export?format=csv&type=OUT", admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "registros_out_")
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Contains(t, string(b), "2024-03-05,OUT,Tóner,HP,CF283A,2,62.90,TI,Luis,")

	resp = doJSON(t, app, http.MethodGet, "/api/entries/template?type=OUT&format=xlsx", admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "plantilla_out.xlsx")
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodGet, "/api/entries/export?format=pdf", admin, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Dashboard y reportes
// ──────────────────────────────────────────────────────────────────────────────

func TestDashboardAPI(t *testing.T) {
	app := buildAPI(t)
	admin := registerAndLogin(t, app, "", "admin@oficina.com", "")
	pid := seedProduct(t, app, admin, 5)
	resp := doJSON(t, app, http.MethodPost, "/api/entries", admin, map[string]interface{}{
		"product_id": pid, "type": "OUT", "quantity": 2, "date": "2024-03-05", "department": "TI", "handler_name": "Luis",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodGet, "/api/dashboard/summary", admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var sum dto.DashboardSummaryDTO
	decode(t, resp, &sum)
	assert.Equal(t, 1, sum.TotalProducts)
	assert.Equal(t, int64(3), sum.TotalUnits)

	resp = doJSON(t, app, http.MethodGet, "/api/reports/consumption?start_date=2024-03-01&end_date=2024-03-31", admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var rep dto.ConsumptionReportDTO
	decode(t, resp, &rep)
	assert.Equal(t, int64(2), rep.TotalQuantity)
	require.Len(t, rep.ByDepartment, 1)
	assert.Equal(t, "TI", rep.ByDepartment[0].Key)
}
