package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un insumo del workspace.
// Stock solo cambia como efecto de un movimiento confirmado en el libro.
type Product struct {
	ID            string
	WorkspaceID   string
	ProductNumber string // código visible, único por workspace
	Name          string
	Category      string
	UnitPrice     decimal.Decimal
	Stock         int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
