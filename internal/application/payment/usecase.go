package payment

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/roundspecs/hsbs/internal/domain"
	"github.com/roundspecs/hsbs/internal/domain/entity"
	"github.com/roundspecs/hsbs/internal/domain/repository"
)

// PaymentUseCase registra cobros sobre salidas (OT) ya confirmadas.
// No toca stock ni participa en el control de reintentos: dos actualizaciones concurrentes
// se resuelven por último escritor.
type PaymentUseCase struct {
	movRepo repository.MovementRepository
	log     zerolog.Logger
}

// NewPaymentUseCase construye el caso de uso.
func NewPaymentUseCase(movRepo repository.MovementRepository, log zerolog.Logger) *PaymentUseCase {
	return &PaymentUseCase{movRepo: movRepo, log: log}
}

// UpdatePayment fija el monto pagado y el estado de una salida.
// Si amountPaid cubre el total el estado queda "paid" sin importar el solicitado;
// "paid" con un monto parcial se acepta (saldo condonado). Un monto mayor al total es ErrOverpayment.
func (uc *PaymentUseCase) UpdatePayment(
	ctx context.Context,
	workspaceID, movementID string,
	amountPaid decimal.Decimal,
	status entity.PaymentStatus,
) (*entity.Movement, error) {
	if strings.TrimSpace(workspaceID) == "" || strings.TrimSpace(movementID) == "" {
		return nil, domain.ErrInvalidInput
	}
	if !entity.ValidMoney(amountPaid) {
		return nil, fmt.Errorf("%w: monto pagado %s inválido", domain.ErrInvalidInput, amountPaid)
	}
	if !status.Valid() {
		return nil, fmt.Errorf("%w: estado de pago %q", domain.ErrInvalidInput, status)
	}

	m, err := uc.movRepo.GetByID(ctx, workspaceID, movementID)
	if err != nil {
		return nil, fmt.Errorf("get movement: %w", err)
	}
	if m == nil || !m.IsStockOut() {
		return nil, domain.ErrMovementNotFound
	}
	if amountPaid.GreaterThan(m.TotalAmount) {
		return nil, domain.ErrOverpayment
	}
	if amountPaid.GreaterThanOrEqual(m.TotalAmount) {
		status = entity.PaymentStatusPaid
	}

	if err := uc.movRepo.UpdatePayment(ctx, workspaceID, movementID, amountPaid, status); err != nil {
		return nil, err
	}
	m.AmountPaid = amountPaid
	m.PaymentStatus = status

	uc.log.Info().
		Str("workspace_id", workspaceID).
		Str("movement_id", movementID).
		Str("amount_paid", amountPaid.String()).
		Str("status", string(status)).
		Msg("pago actualizado")
	return m, nil
}
