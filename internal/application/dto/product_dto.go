package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto. StockQuantity es el stock inicial.
type CreateProductRequest struct {
	CategoryID    string          `json:"category_id" validate:"required"`
	Brand         string          `json:"brand" validate:"max=100"`
	Model         string          `json:"model" validate:"required,min=1,max=200"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int64           `json:"stock_quantity" validate:"min=0"`
	MinStockLevel int64           `json:"min_stock_level" validate:"min=0"`
	Supplier      string          `json:"supplier" validate:"max=200"`
}

// UpdateProductRequest entrada para actualizar un producto (nunca el stock).
type UpdateProductRequest struct {
	CategoryID    *string          `json:"category_id"`
	Brand         *string          `json:"brand" validate:"omitempty,max=100"`
	Model         *string          `json:"model" validate:"omitempty,min=1,max=200"`
	Price         *decimal.Decimal `json:"price"`
	MinStockLevel *int64           `json:"min_stock_level" validate:"omitempty,min=0"`
	Supplier      *string          `json:"supplier" validate:"omitempty,max=200"`
}

// DeleteProductRequest confirmación del borrado: debe coincidir con "marca/modelo".
type DeleteProductRequest struct {
	Confirmation string `json:"confirmation" validate:"required"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID            string          `json:"id"`
	CategoryID    string          `json:"category_id"`
	Brand         string          `json:"brand"`
	Model         string          `json:"model"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int64           `json:"stock_quantity"`
	MinStockLevel int64           `json:"min_stock_level"`
	Supplier      string          `json:"supplier"`
	LowStock      bool            `json:"low_stock"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// DeleteProductResponse resultado del borrado en cascada.
type DeleteProductResponse struct {
	ProductID      string `json:"product_id"`
	DeletedEntries int64  `json:"deleted_entries"`
}

// CreateCategoryRequest entrada para crear una categoría.
type CreateCategoryRequest struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
}

// CategoryResponse salida de una categoría.
type CategoryResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
}
