package http

import (
	"bytes"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/suministros-api/internal/application/dto"
	"github.com/jhoicas/suministros-api/internal/application/ledger"
	"github.com/jhoicas/suministros-api/internal/infrastructure/tabular"
)

// LedgerHandler endpoints del libro de movimientos (entradas y salidas).
type LedgerHandler struct {
	adjuster       *ledger.StockAdjuster
	importer       *ledger.BulkImporter
	exporter       *ledger.ExportUseCase
	importMaxBytes int64
}

// NewLedgerHandler construye el handler. importMaxBytes <= 0 desactiva el tope de tamaño.
func NewLedgerHandler(adjuster *ledger.StockAdjuster, importer *ledger.BulkImporter, exporter *ledger.ExportUseCase, importMaxBytes int64) *LedgerHandler {
	return &LedgerHandler{adjuster: adjuster, importer: importer, exporter: exporter, importMaxBytes: importMaxBytes}
}

// Create godoc
// @Summary      Registrar entrada o salida
// @Description  Para OUT falla con 409 INSUFFICIENT_STOCK si el stock no alcanza.
// @Tags         entries
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateEntryRequest  true  "Registro"
// @Success      201   {object}  dto.EntryResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/entries [post]
func (h *LedgerHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateEntryRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	if err := validateStruct(in); err != nil {
		return writeError(c, err)
	}
	out, err := h.adjuster.CreateEntry(c.Context(), GetUserID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Update godoc
// @Summary      Editar registro
// @Description  Revierte la versión anterior y aplica la nueva en una sola transacción.
// @Tags         entries
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                  true  "ID del registro"
// @Param        body  body  dto.UpdateEntryRequest  true  "Nueva versión"
// @Success      200   {object}  dto.EntryResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/entries/{id} [put]
func (h *LedgerHandler) Update(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return missingID(c)
	}
	var in dto.UpdateEntryRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	if err := validateStruct(in); err != nil {
		return writeError(c, err)
	}
	out, err := h.adjuster.EditEntry(c.Context(), id, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Borrar registro
// @Description  Revierte su efecto en el stock. Borrar una entrada ya consumida devuelve 409.
// @Tags         entries
// @Security     Bearer
// @Param        id   path  string  true  "ID del registro"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/entries/{id} [delete]
func (h *LedgerHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return missingID(c)
	}
	if err := h.adjuster.DeleteEntry(c.Context(), id); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetByID godoc
// @Summary      Obtener registro
// @Tags         entries
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del registro"
// @Success      200  {object}  dto.EntryResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/entries/{id} [get]
func (h *LedgerHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.adjuster.GetEntry(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	if out == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "registro no encontrado"})
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar registros
// @Tags         entries
// @Security     Bearer
// @Produce      json
// @Param        type        query  string  false  "IN | OUT"
// @Param        product_id  query  string  false  "Producto"
// @Param        department  query  string  false  "Departamento"
// @Param        start_date  query  string  false  "Desde (AAAA-MM-DD)"
// @Param        end_date    query  string  false  "Hasta (AAAA-MM-DD)"
// @Param        limit       query  int     false  "Límite"  default(20)
// @Param        offset      query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.EntryListResponse
// @Router       /api/entries [get]
func (h *LedgerHandler) List(c *fiber.Ctx) error {
	var q dto.EntryListQuery
	if err := c.QueryParser(&q); err != nil {
		return invalidBody(c)
	}
	q.DefaultPage()
	if err := validateStruct(q); err != nil {
		return writeError(c, err)
	}
	out, err := h.adjuster.ListEntries(c.Context(), q)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Export godoc
// @Summary      Exportar registros
// @Tags         entries
// @Security     Bearer
// @Produce      octet-stream
// @Param        format      query  string  false  "csv | xlsx"  default(csv)
// @Param        type        query  string  false  "IN | OUT"
// @Param        start_date  query  string  false  "Desde (AAAA-MM-DD)"
// @Param        end_date    query  string  false  "Hasta (AAAA-MM-DD)"
// @Success      200
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/entries/export [get]
func (h *LedgerHandler) Export(c *fiber.Ctx) error {
	var q dto.EntryListQuery
	if err := c.QueryParser(&q); err != nil {
		return invalidBody(c)
	}
	var buf bytes.Buffer
	file, err := h.exporter.ExportEntries(c.Context(), q, c.Query("format"), &buf)
	if err != nil {
		return writeError(c, err)
	}
	return sendFile(c, file, buf.Bytes())
}

// Template godoc
// @Summary      Descargar plantilla de importación
// @Tags         entries
// @Security     Bearer
// @Produce      octet-stream
// @Param        type    query  string  true   "IN | OUT"
// @Param        format  query  string  false  "csv | xlsx"  default(csv)
// @Success      200
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/entries/template [get]
func (h *LedgerHandler) Template(c *fiber.Ctx) error {
	var buf bytes.Buffer
	file, err := h.exporter.Template(c.Query("type"), c.Query("format"), &buf)
	if err != nil {
		return writeError(c, err)
	}
	return sendFile(c, file, buf.Bytes())
}

// Import godoc
// @Summary      Importación masiva
// @Description  Multipart con el archivo (CSV o XLSX). Las filas inválidas se reportan por línea.
// @Description  Si un bloque falla por almacenamiento se responde 500 con el resultado parcial.
// @Tags         entries
// @Security     Bearer
// @Accept       multipart/form-data
// @Produce      json
// @Param        file         formData  file    true   "Archivo"
// @Param        type         formData  string  true   "IN | OUT"
// @Param        format       formData  string  false  "csv | xlsx (por defecto según extensión)"
// @Param        encoding     formData  string  false  "auto | utf-8 | gb18030"
// @Param        skip_header  formData  bool    false  "La primera fila es encabezado"  default(true)
// @Success      200  {object}  dto.ImportResult
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      413  {object}  dto.ErrorResponse
// @Router       /api/entries/import [post]
func (h *LedgerHandler) Import(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_FILE", Message: "el campo file es requerido"})
	}
	if h.importMaxBytes > 0 && fh.Size > h.importMaxBytes {
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(dto.ErrorResponse{
			Code:    "FILE_TOO_LARGE",
			Message: fmt.Sprintf("el archivo supera %d bytes", h.importMaxBytes),
		})
	}
	reader, err := tabular.ReaderFor(c.FormValue("format"), fh.Filename, c.FormValue("encoding"))
	if err != nil {
		return writeError(c, err)
	}
	f, err := fh.Open()
	if err != nil {
		return writeError(c, err)
	}
	defer f.Close()

	records, err := reader.ReadRecords(f)
	if err != nil {
		return writeError(c, err)
	}
	result, err := h.importer.ImportBatch(c.Context(), ledger.ImportInput{
		Type:       c.FormValue("type"),
		Records:    records,
		SkipHeader: c.FormValue("skip_header", "true") != "false",
		CreatedBy:  GetUserID(c),
	})
	if err != nil {
		if result != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(result)
		}
		return writeError(c, err)
	}
	return c.JSON(result)
}

func sendFile(c *fiber.Ctx, file *ledger.ExportFile, body []byte) error {
	c.Set(fiber.HeaderContentType, file.ContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, file.Filename))
	return c.Send(body)
}
