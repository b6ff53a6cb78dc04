package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateEntryRequest entrada para registrar una entrada (IN) o salida (OUT).
// Date en formato 2006-01-02 (o 2006/01/02); vacío = hoy. Para OUT son obligatorios department y handler_name;
// para IN handler_name guarda el proveedor.
type CreateEntryRequest struct {
	ProductID   string `json:"product_id" validate:"required"`
	Type        string `json:"type" validate:"required,oneof=IN OUT"`
	Quantity    int64  `json:"quantity" validate:"required,gt=0"`
	Date        string `json:"date" validate:"omitempty,calendardate"`
	Department  string `json:"department" validate:"max=100"`
	HandlerName string `json:"handler_name" validate:"max=100"`
	Note        string `json:"note" validate:"max=500"`
}

// UpdateEntryRequest reemplaza los campos editables de un registro.
// Type es opcional y, si viene, debe coincidir con el tipo original.
type UpdateEntryRequest struct {
	ProductID   string `json:"product_id" validate:"required"`
	Type        string `json:"type" validate:"omitempty,oneof=IN OUT"`
	Quantity    int64  `json:"quantity" validate:"required,gt=0"`
	Date        string `json:"date" validate:"omitempty,calendardate"`
	Department  string `json:"department" validate:"max=100"`
	HandlerName string `json:"handler_name" validate:"max=100"`
	Note        string `json:"note" validate:"max=500"`
}

// EntryListQuery filtros del listado de registros.
type EntryListQuery struct {
	Type       string `query:"type" validate:"omitempty,oneof=IN OUT"`
	ProductID  string `query:"product_id"`
	Department string `query:"department"`
	StartDate  string `query:"start_date" validate:"omitempty,calendardate"`
	EndDate    string `query:"end_date" validate:"omitempty,calendardate"`
	PageRequest
}

// EntryResponse salida de un registro con datos del producto.
type EntryResponse struct {
	ID           string          `json:"id"`
	ProductID    string          `json:"product_id"`
	Brand        string          `json:"brand,omitempty"`
	Model        string          `json:"model,omitempty"`
	CategoryName string          `json:"category_name,omitempty"`
	Type         string          `json:"type"`
	Quantity     int64           `json:"quantity"`
	Price        decimal.Decimal `json:"price"`
	Total        decimal.Decimal `json:"total"`
	Date         string          `json:"date"`
	Department   string          `json:"department,omitempty"`
	HandlerName  string          `json:"handler_name,omitempty"`
	Note         string          `json:"note,omitempty"`
	CreatedBy    string          `json:"created_by,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	// StockAfter stock del producto después de la operación (solo en crear/editar).
	StockAfter *int64 `json:"stock_after,omitempty"`
}

// EntryListResponse lista paginada de registros.
type EntryListResponse struct {
	Items []EntryResponse `json:"items"`
	Page  PageResponse    `json:"page"`
}
