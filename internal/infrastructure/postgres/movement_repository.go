package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/roundspecs/hsbs/internal/domain"
	"github.com/roundspecs/hsbs/internal/domain/entity"
	"github.com/roundspecs/hsbs/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

const movementColumns = `id, workspace_id, type, reference_number, date, items, total_amount, created_by, created_at,
	surgeon_id, surgeon_name, amount_paid, payment_status`

// MovementRepo implementación sobre PostgreSQL (usable con pool o tx).
// Las partidas se guardan como JSONB: son copias congeladas, no referencias a products.
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

func scanMovement(row pgx.Row) (*entity.Movement, error) {
	var (
		m             entity.Movement
		typ           string
		items         []byte
		paymentStatus *string
	)
	if err := row.Scan(&m.ID, &m.WorkspaceID, &typ, &m.ReferenceNumber, &m.Date, &items, &m.TotalAmount,
		&m.CreatedBy, &m.CreatedAt, &m.SurgeonID, &m.SurgeonName, &m.AmountPaid, &paymentStatus); err != nil {
		return nil, err
	}
	m.Type = entity.MovementType(typ)
	if err := json.Unmarshal(items, &m.Items); err != nil {
		return nil, fmt.Errorf("decode items %s: %w", m.ID, err)
	}
	if paymentStatus != nil {
		m.PaymentStatus = entity.PaymentStatus(*paymentStatus)
	}
	return &m, nil
}

// Create persiste el movimiento. Una violación de unicidad solo ocurre si otra transacción confirmó
// la misma referencia en paralelo: se reporta como conflicto para que el reintento la vea como duplicada.
func (r *MovementRepo) Create(ctx context.Context, m *entity.Movement) error {
	items, err := json.Marshal(m.Items)
	if err != nil {
		return fmt.Errorf("encode items: %w", err)
	}
	var paymentStatus *string
	if m.IsStockOut() {
		s := string(m.PaymentStatus)
		paymentStatus = &s
	}
	query := `INSERT INTO movements (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err = r.q.Exec(ctx, query,
		m.ID, m.WorkspaceID, string(m.Type), m.ReferenceNumber, m.Date, items, m.TotalAmount,
		m.CreatedBy, m.CreatedAt, m.SurgeonID, m.SurgeonName, m.AmountPaid, paymentStatus,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: movimiento %s creado concurrentemente", domain.ErrTxConflict, m.ID)
		}
		return fmt.Errorf("insert movement: %w", err)
	}
	return nil
}

// GetByID obtiene un movimiento; (nil, nil) si no existe.
func (r *MovementRepo) GetByID(ctx context.Context, workspaceID, id string) (*entity.Movement, error) {
	query := `SELECT ` + movementColumns + ` FROM movements WHERE workspace_id = $1 AND id = $2`
	m, err := scanMovement(r.q.QueryRow(ctx, query, workspaceID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get movement: %w", err)
	}
	return m, nil
}

// UpdatePayment actualiza solo los campos de pago de una salida.
func (r *MovementRepo) UpdatePayment(ctx context.Context, workspaceID, id string, amountPaid decimal.Decimal, status entity.PaymentStatus) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE movements SET amount_paid = $3, payment_status = $4
		WHERE workspace_id = $1 AND id = $2 AND type = 'OT'`,
		workspaceID, id, amountPaid, string(status),
	)
	if err != nil {
		return fmt.Errorf("update payment: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrMovementNotFound
	}
	return nil
}

// List filtra por tipo y rango de fechas, ordenado por fecha y creación descendente.
func (r *MovementRepo) List(ctx context.Context, f repository.MovementFilter) ([]*entity.Movement, error) {
	query := `SELECT ` + movementColumns + ` FROM movements WHERE workspace_id = $1`
	args := []any{f.WorkspaceID}
	pos := 2
	if f.Type != "" {
		query += fmt.Sprintf(" AND type = $%d", pos)
		args = append(args, string(f.Type))
		pos++
	}
	if f.From != nil {
		query += fmt.Sprintf(" AND date >= $%d", pos)
		args = append(args, *f.From)
		pos++
	}
	if f.To != nil {
		query += fmt.Sprintf(" AND date <= $%d", pos)
		args = append(args, *f.To)
		pos++
	}
	query += " ORDER BY date DESC, created_at DESC, id DESC"
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", pos)
		args = append(args, f.Limit)
		pos++
	}
	query += fmt.Sprintf(" OFFSET $%d", pos)
	args = append(args, f.Offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.Movement, 0)
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}
