package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto. Stock es el saldo inicial.
type CreateProductRequest struct {
	ProductNumber string          `json:"product_number" validate:"required,min=1,max=100"`
	Name          string          `json:"name" validate:"required,min=1,max=200"`
	Category      string          `json:"category"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	Stock         int64           `json:"stock"`
}

// UpdateProductRequest entrada para actualizar un producto (sin Stock: solo cambia vía movimientos).
type UpdateProductRequest struct {
	ProductNumber *string          `json:"product_number" validate:"omitempty,min=1,max=100"`
	Name          *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Category      *string          `json:"category"`
	UnitPrice     *decimal.Decimal `json:"unit_price"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID            string          `json:"id"`
	WorkspaceID   string          `json:"workspace_id"`
	ProductNumber string          `json:"product_number"`
	Name          string          `json:"name"`
	Category      string          `json:"category,omitempty"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	Stock         int64           `json:"stock"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
