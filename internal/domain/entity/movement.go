package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementType tipo de movimiento del libro.
type MovementType string

const (
	MovementTypeStockIn  MovementType = "LC" // entrada
	MovementTypeStockOut MovementType = "OT" // salida (cirugía)
)

// Valid indica si el tipo es LC u OT.
func (t MovementType) Valid() bool {
	return t == MovementTypeStockIn || t == MovementTypeStockOut
}

// StockDelta devuelve el efecto de qty unidades sobre el stock: +qty en LC, -qty en OT.
func (t MovementType) StockDelta(qty int64) int64 {
	if t == MovementTypeStockOut {
		return -qty
	}
	return qty
}

// PaymentStatus estado de cobro de una salida.
type PaymentStatus string

const (
	PaymentStatusUnpaid PaymentStatus = "unpaid"
	PaymentStatusPaid   PaymentStatus = "paid"
)

func (s PaymentStatus) Valid() bool {
	return s == PaymentStatusUnpaid || s == PaymentStatusPaid
}

// MovementItem línea del movimiento. ProductName y UnitPrice son copias tomadas al confirmar;
// cambios posteriores del producto no las alteran.
type MovementItem struct {
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"`
	Quantity    int64           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
}

// Subtotal = Quantity * UnitPrice.
func (i MovementItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(i.Quantity))
}

// Movement registro inmutable de entrada (LC) o salida (OT).
// Solo AmountPaid y PaymentStatus de una salida cambian después del commit.
type Movement struct {
	ID              string // Type + "-" + ReferenceNumber
	WorkspaceID     string
	Type            MovementType
	ReferenceNumber string
	Date            time.Time
	Items           []MovementItem
	TotalAmount     decimal.Decimal
	CreatedBy       string
	CreatedAt       time.Time

	// Solo salidas.
	SurgeonID     string
	SurgeonName   string
	AmountPaid    decimal.Decimal
	PaymentStatus PaymentStatus
}

// MovementID deriva el identificador (y clave de unicidad) de un movimiento, ej. "LC-001".
func MovementID(t MovementType, referenceNumber string) string {
	return string(t) + "-" + referenceNumber
}

// ComputeTotal suma los subtotales de las líneas.
func ComputeTotal(items []MovementItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Subtotal())
	}
	return total
}

// IsStockOut indica si el movimiento es una salida con estado de pago.
func (m *Movement) IsStockOut() bool {
	return m.Type == MovementTypeStockOut
}

// AmountDue saldo pendiente; cero para entradas.
func (m *Movement) AmountDue() decimal.Decimal {
	if !m.IsStockOut() {
		return decimal.Zero
	}
	due := m.TotalAmount.Sub(m.AmountPaid)
	if due.IsNegative() {
		return decimal.Zero
	}
	return due
}

// Clone devuelve una copia profunda (las líneas no se comparten).
func (m *Movement) Clone() *Movement {
	if m == nil {
		return nil
	}
	c := *m
	c.Items = append([]MovementItem(nil), m.Items...)
	return &c
}
