package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/roundspecs/hsbs/internal/domain"
	"github.com/roundspecs/hsbs/internal/domain/entity"
	"github.com/roundspecs/hsbs/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo implementa repository.MovementRepository. Con tx != nil opera dentro de una transacción.
type MovementRepo struct {
	s  *Store
	tx *txn
}

// Create falla con domain.ErrDuplicate si el documento ya existe. Dentro de una tx la ausencia
// queda registrada en el read-set: si otro escritor lo crea antes del commit, la tx entra en conflicto.
func (r *MovementRepo) Create(ctx context.Context, m *entity.Movement) error {
	path := movementPath(m.WorkspaceID, m.ID)
	if r.tx != nil {
		current, err := r.get(path)
		if err != nil {
			return err
		}
		if current != nil {
			return domain.ErrDuplicate
		}
		r.tx.putMovement(path, *m.Clone())
		return nil
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.movements[path]; ok {
		return domain.ErrDuplicate
	}
	r.s.movements[path] = movementDoc{data: *m.Clone(), version: r.s.nextVersionLocked()}
	return nil
}

func (r *MovementRepo) GetByID(ctx context.Context, workspaceID, id string) (*entity.Movement, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.get(movementPath(workspaceID, id))
}

func (r *MovementRepo) get(path string) (*entity.Movement, error) {
	if r.tx != nil {
		if m, ok := r.tx.movements[path]; ok {
			return m.Clone(), nil
		}
	}
	r.s.mu.RLock()
	doc, ok := r.s.movements[path]
	r.s.mu.RUnlock()
	if r.tx != nil {
		r.tx.observe(path, doc.version)
	}
	if !ok {
		return nil, nil
	}
	return doc.data.Clone(), nil
}

// UpdatePayment actualiza solo los campos de pago de una salida (último escritor gana).
func (r *MovementRepo) UpdatePayment(ctx context.Context, workspaceID, id string, amountPaid decimal.Decimal, status entity.PaymentStatus) error {
	path := movementPath(workspaceID, id)
	if r.tx != nil {
		m, err := r.get(path)
		if err != nil {
			return err
		}
		if m == nil || !m.IsStockOut() {
			return domain.ErrMovementNotFound
		}
		m.AmountPaid, m.PaymentStatus = amountPaid, status
		r.tx.putMovement(path, *m)
		return nil
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	doc, ok := r.s.movements[path]
	if !ok || !doc.data.IsStockOut() {
		return domain.ErrMovementNotFound
	}
	doc.data.AmountPaid = amountPaid
	doc.data.PaymentStatus = status
	doc.version = r.s.nextVersionLocked()
	r.s.movements[path] = doc
	return nil
}

// List filtra por tipo y rango de fechas; orden Date desc, CreatedAt desc, ID desc.
func (r *MovementRepo) List(ctx context.Context, f repository.MovementFilter) ([]*entity.Movement, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	prefix := "workspaces/" + f.WorkspaceID + "/movements/"
	match := func(m *entity.Movement) bool {
		if f.Type != "" && m.Type != f.Type {
			return false
		}
		if f.From != nil && m.Date.Before(*f.From) {
			return false
		}
		if f.To != nil && m.Date.After(*f.To) {
			return false
		}
		return true
	}

	out := make([]*entity.Movement, 0)
	r.s.mu.RLock()
	for path, doc := range r.s.movements {
		if !strings.HasPrefix(path, prefix) {
			continue
		}
		if r.tx != nil {
			if _, pending := r.tx.movements[path]; pending {
				continue
			}
		}
		if match(&doc.data) {
			out = append(out, doc.data.Clone())
		}
	}
	r.s.mu.RUnlock()
	if r.tx != nil {
		for path, m := range r.tx.movements {
			if strings.HasPrefix(path, prefix) && match(&m) {
				out = append(out, m.Clone())
			}
		}
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.After(b.Date)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})
	return paginate(out, f.Limit, f.Offset), nil
}
