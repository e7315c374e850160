package payment_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roundspecs/hsbs/internal/application/payment"
	"github.com/roundspecs/hsbs/internal/domain"
	"github.com/roundspecs/hsbs/internal/domain/entity"
	"github.com/roundspecs/hsbs/internal/infrastructure/memory"
)

const ws = "clinica-norte"

func setup(t *testing.T) (*payment.PaymentUseCase, *memory.Store) {
	t.Helper()
	store := memory.New()
	ctx := context.Background()
	require.NoError(t, store.Products().Create(ctx, &entity.Product{ID: "A", WorkspaceID: ws, Name: "Gasa", Stock: 4}))
	require.NoError(t, store.Movements().Create(ctx, &entity.Movement{
		ID: "OT-S1", WorkspaceID: ws, Type: entity.MovementTypeStockOut, ReferenceNumber: "S1",
		Items:       []entity.MovementItem{{ProductID: "A", ProductName: "Gasa", Quantity: 5, UnitPrice: decimal.NewFromInt(100)}},
		TotalAmount: decimal.NewFromInt(500), PaymentStatus: entity.PaymentStatusUnpaid,
	}))
	require.NoError(t, store.Movements().Create(ctx, &entity.Movement{
		ID: "LC-001", WorkspaceID: ws, Type: entity.MovementTypeStockIn, ReferenceNumber: "001",
		TotalAmount: decimal.NewFromInt(50),
	}))
	return payment.NewPaymentUseCase(store.Movements(), zerolog.Nop()), store
}

func TestUpdatePayment_ParcialYLuegoTotal(t *testing.T) {
	uc, store := setup(t)
	ctx := context.Background()

	m, err := uc.UpdatePayment(ctx, ws, "OT-S1", decimal.NewFromInt(200), entity.PaymentStatusUnpaid)
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentStatusUnpaid, m.PaymentStatus)
	assert.True(t, decimal.NewFromInt(300).Equal(m.AmountDue()))

	m, err = uc.UpdatePayment(ctx, ws, "OT-S1", decimal.NewFromInt(500), entity.PaymentStatusUnpaid)
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentStatusPaid, m.PaymentStatus, "el total cubierto fuerza paid")

	saved, err := store.Movements().GetByID(ctx, ws, "OT-S1")
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentStatusPaid, saved.PaymentStatus)
	assert.True(t, decimal.NewFromInt(500).Equal(saved.AmountPaid))

	// el stock no se toca
	p, err := store.Products().GetByID(ctx, ws, "A")
	require.NoError(t, err)
	assert.Equal(t, int64(4), p.Stock)
}

func TestUpdatePayment_PagadoConSaldoCondonado(t *testing.T) {
	uc, _ := setup(t)
	m, err := uc.UpdatePayment(context.Background(), ws, "OT-S1", decimal.NewFromInt(450), entity.PaymentStatusPaid)
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentStatusPaid, m.PaymentStatus)
	assert.True(t, decimal.NewFromInt(450).Equal(m.AmountPaid))
}

func TestUpdatePayment_SobrepagoRechazado(t *testing.T) {
	uc, store := setup(t)
	_, err := uc.UpdatePayment(context.Background(), ws, "OT-S1", decimal.NewFromInt(501), entity.PaymentStatusPaid)
	assert.ErrorIs(t, err, domain.ErrOverpayment)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	saved, err := store.Movements().GetByID(context.Background(), ws, "OT-S1")
	require.NoError(t, err)
	assert.True(t, saved.AmountPaid.IsZero())
}

func TestUpdatePayment_EntradaInvalida(t *testing.T) {
	uc, _ := setup(t)
	ctx := context.Background()

	_, err := uc.UpdatePayment(ctx, ws, "OT-S1", decimal.NewFromInt(-1), entity.PaymentStatusUnpaid)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.UpdatePayment(ctx, ws, "OT-S1", decimal.NewFromInt(1), entity.PaymentStatus("partial"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	// más decimales de los que guarda la columna
	_, err = uc.UpdatePayment(ctx, ws, "OT-S1", decimal.RequireFromString("10.00005"), entity.PaymentStatusUnpaid)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestUpdatePayment_MovimientoNoEncontrado(t *testing.T) {
	uc, _ := setup(t)
	ctx := context.Background()

	_, err := uc.UpdatePayment(ctx, ws, "OT-NOPE", decimal.NewFromInt(1), entity.PaymentStatusUnpaid)
	assert.ErrorIs(t, err, domain.ErrMovementNotFound)

	// las entradas no tienen estado de pago
	_, err = uc.UpdatePayment(ctx, ws, "LC-001", decimal.NewFromInt(1), entity.PaymentStatusUnpaid)
	assert.ErrorIs(t, err, domain.ErrMovementNotFound)

	// otro workspace
	_, err = uc.UpdatePayment(ctx, "otro", "OT-S1", decimal.NewFromInt(1), entity.PaymentStatusUnpaid)
	assert.ErrorIs(t, err, domain.ErrMovementNotFound)
}
