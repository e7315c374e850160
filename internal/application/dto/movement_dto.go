package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/roundspecs/hsbs/internal/domain/entity"
)

// MovementItemRequest línea de un movimiento. UnitPrice omitido = precio actual del producto.
type MovementItemRequest struct {
	ProductID string           `json:"product_id"`
	Quantity  int64            `json:"quantity"`
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty"`
}

// CommitMovementRequest body para POST /movements/stock-in y /movements/stock-out.
type CommitMovementRequest struct {
	ReferenceNumber string                `json:"reference_number"`
	Date            *time.Time            `json:"date,omitempty"`
	Items           []MovementItemRequest `json:"items"`
	SurgeonID       string                `json:"surgeon_id,omitempty"`   // solo salidas
	SurgeonName     string                `json:"surgeon_name,omitempty"` // solo salidas
}

// UpdatePaymentRequest body para PATCH /movements/:id/payment.
type UpdatePaymentRequest struct {
	AmountPaid    decimal.Decimal `json:"amount_paid"`
	PaymentStatus string          `json:"payment_status"`
}

// MovementListQuery filtros de GET /movements.
type MovementListQuery struct {
	Type string
	From *time.Time
	To   *time.Time
	PageRequest
}

// MovementItemResponse línea con los valores congelados al confirmar.
type MovementItemResponse struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int64           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// MovementResponse salida de un movimiento.
type MovementResponse struct {
	ID              string                 `json:"id"`
	WorkspaceID     string                 `json:"workspace_id"`
	Type            string                 `json:"type"`
	ReferenceNumber string                 `json:"reference_number"`
	Date            time.Time              `json:"date"`
	Items           []MovementItemResponse `json:"items"`
	TotalAmount     decimal.Decimal        `json:"total_amount"`
	CreatedBy       string                 `json:"created_by"`
	CreatedAt       time.Time              `json:"created_at"`
	SurgeonID       string                 `json:"surgeon_id,omitempty"`
	SurgeonName     string                 `json:"surgeon_name,omitempty"`
	AmountPaid      *decimal.Decimal       `json:"amount_paid,omitempty"`
	AmountDue       *decimal.Decimal       `json:"amount_due,omitempty"`
	PaymentStatus   string                 `json:"payment_status,omitempty"`
}

// MovementListResponse lista paginada de movimientos.
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// ToMovementResponse mapea la entidad a la respuesta; las entradas no exponen estado de pago.
func ToMovementResponse(m *entity.Movement) MovementResponse {
	items := make([]MovementItemResponse, 0, len(m.Items))
	for _, it := range m.Items {
		items = append(items, MovementItemResponse{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Subtotal:    it.Subtotal(),
		})
	}
	out := MovementResponse{
		ID:              m.ID,
		WorkspaceID:     m.WorkspaceID,
		Type:            string(m.Type),
		ReferenceNumber: m.ReferenceNumber,
		Date:            m.Date,
		Items:           items,
		TotalAmount:     m.TotalAmount,
		CreatedBy:       m.CreatedBy,
		CreatedAt:       m.CreatedAt,
	}
	if m.IsStockOut() {
		paid, due := m.AmountPaid, m.AmountDue()
		out.SurgeonID = m.SurgeonID
		out.SurgeonName = m.SurgeonName
		out.AmountPaid = &paid
		out.AmountDue = &due
		out.PaymentStatus = string(m.PaymentStatus)
	}
	return out
}
