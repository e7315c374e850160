package ledger

import (
	"context"

	"github.com/roundspecs/hsbs/internal/domain/entity"
	"github.com/roundspecs/hsbs/internal/domain/repository"
)

// TxRunner ejecuta fn dentro de una transacción del almacén, pasando repositorios atados a esa tx.
// Si fn devuelve error no se confirma nada. Si otra transacción invalidó alguna lectura antes del
// commit, Run devuelve un error que envuelve domain.ErrTxConflict y tampoco se aplica nada.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		movRepo repository.MovementRepository,
		productRepo repository.ProductRepository,
	) error) error
}

// EventPublisher recibe los movimientos ya confirmados. Sus errores no afectan el commit.
type EventPublisher interface {
	PublishMovementCommitted(ctx context.Context, movement *entity.Movement) error
}

// NopPublisher descarta los eventos.
type NopPublisher struct{}

func (NopPublisher) PublishMovementCommitted(context.Context, *entity.Movement) error { return nil }
