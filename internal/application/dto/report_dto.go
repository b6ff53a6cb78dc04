package dto

import "github.com/shopspring/decimal"

// ConsumptionQuery filtros de los reportes de consumo.
type ConsumptionQuery struct {
	StartDate  string `query:"start_date" validate:"omitempty,calendardate"`
	EndDate    string `query:"end_date" validate:"omitempty,calendardate"`
	Department string `query:"department"`
}

// ConsumptionItemDTO una fila agregada del reporte.
type ConsumptionItemDTO struct {
	Key      string          `json:"key"`
	Quantity int64           `json:"quantity"`
	Value    decimal.Decimal `json:"value"`
	Entries  int             `json:"entries"`
}

// ConsumptionReportDTO consumo (salidas) agregado por categoría, departamento y mes.
type ConsumptionReportDTO struct {
	StartDate     string               `json:"start_date,omitempty"`
	EndDate       string               `json:"end_date,omitempty"`
	Department    string               `json:"department,omitempty"`
	TotalQuantity int64                `json:"total_quantity"`
	TotalValue    decimal.Decimal      `json:"total_value"`
	ByCategory    []ConsumptionItemDTO `json:"by_category"`
	ByDepartment  []ConsumptionItemDTO `json:"by_department"`
	ByMonth       []ConsumptionItemDTO `json:"by_month"`
}

// LowStockItemDTO producto en o por debajo de su umbral.
type LowStockItemDTO struct {
	ProductID     string `json:"product_id"`
	Brand         string `json:"brand"`
	Model         string `json:"model"`
	StockQuantity int64  `json:"stock_quantity"`
	MinStockLevel int64  `json:"min_stock_level"`
}

// DashboardSummaryDTO resumen del inventario.
type DashboardSummaryDTO struct {
	TotalProducts int               `json:"total_products"`
	TotalUnits    int64             `json:"total_units"`
	StockValue    decimal.Decimal   `json:"stock_value"`
	LowStock      []LowStockItemDTO `json:"low_stock"`
	RecentEntries []EntryResponse   `json:"recent_entries"`
	MonthOut      int64             `json:"month_out_quantity"`
	MonthLabel    string            `json:"month_label"`
}
