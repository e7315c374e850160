package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/roundspecs/hsbs/internal/domain/entity"
)

// MovementFilter criterios de listado. Type vacío = todos; From/To acotan Date (inclusive).
type MovementFilter struct {
	WorkspaceID string
	Type        entity.MovementType
	From        *time.Time
	To          *time.Time
	Limit       int
	Offset      int
}

// MovementRepository define el puerto de persistencia para movimientos del libro.
// GetByID devuelve (nil, nil) si no existe. List ordena por Date desc y luego CreatedAt desc.
type MovementRepository interface {
	Create(ctx context.Context, movement *entity.Movement) error
	GetByID(ctx context.Context, workspaceID, id string) (*entity.Movement, error)
	UpdatePayment(ctx context.Context, workspaceID, id string, amountPaid decimal.Decimal, status entity.PaymentStatus) error
	List(ctx context.Context, filter MovementFilter) ([]*entity.Movement, error)
}
