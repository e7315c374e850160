package usecase_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roundspecs/hsbs/internal/application/dto"
	"github.com/roundspecs/hsbs/internal/application/usecase"
	"github.com/roundspecs/hsbs/internal/domain"
	"github.com/roundspecs/hsbs/internal/domain/entity"
	"github.com/roundspecs/hsbs/internal/infrastructure/memory"
)

func seedMovements(t *testing.T, store *memory.Store, n int) {
	t.Helper()
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		typ := entity.MovementTypeStockIn
		if i%2 == 1 {
			typ = entity.MovementTypeStockOut
		}
		ref := fmt.Sprintf("%03d", i)
		m := &entity.Movement{
			ID: entity.MovementID(typ, ref), WorkspaceID: ws, Type: typ, ReferenceNumber: ref,
			Date: base.AddDate(0, 0, i), CreatedAt: base,
			Items:       []entity.MovementItem{{ProductID: "A", ProductName: "Gasa", Quantity: 1, UnitPrice: decimal.NewFromInt(10)}},
			TotalAmount: decimal.NewFromInt(10),
		}
		if typ == entity.MovementTypeStockOut {
			m.PaymentStatus = entity.PaymentStatusUnpaid
		}
		require.NoError(t, store.Movements().Create(context.Background(), m))
	}
}

func TestListMovements_PorTipoYFechaDesc(t *testing.T) {
	store := memory.New()
	seedMovements(t, store, 6)
	uc := usecase.NewMovementQueryUseCase(store.Movements())

	res, err := uc.ListMovements(context.Background(), ws, dto.MovementListQuery{Type: "OT"})
	require.NoError(t, err)
	require.Len(t, res.Items, 3)
	assert.Equal(t, "OT-005", res.Items[0].ID)
	assert.Equal(t, "OT-001", res.Items[2].ID)
	for _, it := range res.Items {
		assert.Equal(t, "unpaid", it.PaymentStatus)
		require.NotNil(t, it.AmountDue)
		assert.True(t, decimal.NewFromInt(10).Equal(*it.AmountDue))
	}

	all, err := uc.ListMovements(context.Background(), ws, dto.MovementListQuery{})
	require.NoError(t, err)
	assert.Len(t, all.Items, 6)
	assert.Equal(t, "OT-005", all.Items[0].ID)
	assert.Nil(t, all.Items[1].AmountPaid, "las entradas no exponen pago")
}

func TestListMovements_PaginacionYTope(t *testing.T) {
	store := memory.New()
	seedMovements(t, store, 5)
	uc := usecase.NewMovementQueryUseCase(store.Movements())

	res, err := uc.ListMovements(context.Background(), ws, dto.MovementListQuery{PageRequest: dto.PageRequest{Limit: 2, Offset: 2}})
	require.NoError(t, err)
	require.Len(t, res.Items, 2)
	assert.Equal(t, "LC-002", res.Items[0].ID)

	res, err = uc.ListMovements(context.Background(), ws, dto.MovementListQuery{PageRequest: dto.PageRequest{Limit: 5000}})
	require.NoError(t, err)
	assert.Equal(t, 100, res.Page.Limit)
}

func TestListMovements_FiltrosInvalidos(t *testing.T) {
	uc := usecase.NewMovementQueryUseCase(memory.New().Movements())
	ctx := context.Background()

	_, err := uc.ListMovements(ctx, ws, dto.MovementListQuery{Type: "IN"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	from := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, -1)
	_, err = uc.ListMovements(ctx, ws, dto.MovementListQuery{From: &from, To: &to})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestGetMovement(t *testing.T) {
	store := memory.New()
	seedMovements(t, store, 2)
	uc := usecase.NewMovementQueryUseCase(store.Movements())

	m, err := uc.GetMovement(context.Background(), ws, "LC-000")
	require.NoError(t, err)
	assert.Equal(t, "000", m.ReferenceNumber)
	require.Len(t, m.Items, 1)
	assert.True(t, decimal.NewFromInt(10).Equal(m.Items[0].Subtotal))

	_, err = uc.GetMovement(context.Background(), ws, "LC-999")
	assert.ErrorIs(t, err, domain.ErrMovementNotFound)
}
