package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roundspecs/hsbs/internal/domain"
	"github.com/roundspecs/hsbs/internal/domain/entity"
	"github.com/roundspecs/hsbs/internal/domain/repository"
	"github.com/roundspecs/hsbs/internal/infrastructure/memory"
)

const ws = "clinica-norte"

func seed(t *testing.T, s *memory.Store, id string, stock int64) {
	t.Helper()
	require.NoError(t, s.Products().Create(context.Background(), &entity.Product{
		ID: id, WorkspaceID: ws, Name: "Producto " + id, UnitPrice: decimal.NewFromInt(10), Stock: stock,
	}))
}

func stockOf(t *testing.T, s *memory.Store, id string) int64 {
	t.Helper()
	p, err := s.Products().GetByID(context.Background(), ws, id)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p.Stock
}

func TestRun_LeeSusPropiasEscrituras(t *testing.T) {
	s := memory.New()
	seed(t, s, "p1", 5)
	ctx := context.Background()

	err := s.Run(ctx, func(movRepo repository.MovementRepository, productRepo repository.ProductRepository) error {
		require.NoError(t, productRepo.UpdateStock(ctx, ws, "p1", 8))
		p, err := productRepo.GetByID(ctx, ws, "p1")
		require.NoError(t, err)
		assert.Equal(t, int64(8), p.Stock)

		// fuera de la tx todavía no es visible
		assert.Equal(t, int64(5), stockOf(t, s, "p1"))
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, int64(8), stockOf(t, s, "p1"))
}

func TestRun_ErrorDescartaEscrituras(t *testing.T) {
	s := memory.New()
	seed(t, s, "p1", 5)
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.Run(ctx, func(movRepo repository.MovementRepository, productRepo repository.ProductRepository) error {
		require.NoError(t, movRepo.Create(ctx, &entity.Movement{ID: "LC-1", WorkspaceID: ws, Type: entity.MovementTypeStockIn}))
		require.NoError(t, productRepo.UpdateStock(ctx, ws, "p1", 50))
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, int64(5), stockOf(t, s, "p1"))
	m, err := s.Movements().GetByID(ctx, ws, "LC-1")
	require.NoError(t, err)
	assert.Nil(t, m)
}

func TestRun_ConflictoSiOtraTxEscribeLoLeido(t *testing.T) {
	s := memory.New()
	seed(t, s, "p1", 6)
	ctx := context.Background()

	err := s.Run(ctx, func(movRepo repository.MovementRepository, productRepo repository.ProductRepository) error {
		p, err := productRepo.GetByID(ctx, ws, "p1")
		require.NoError(t, err)

		// otra transacción confirma entre la lectura y el commit
		require.NoError(t, s.Run(ctx, func(_ repository.MovementRepository, inner repository.ProductRepository) error {
			return inner.UpdateStock(ctx, ws, "p1", 1)
		}))

		return productRepo.UpdateStock(ctx, ws, "p1", p.Stock-5)
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrTxConflict)
	assert.Equal(t, int64(1), stockOf(t, s, "p1"))
}

func TestRun_ConflictoSiOtraTxCreaElMismoMovimiento(t *testing.T) {
	s := memory.New()
	ctx := context.Background()

	err := s.Run(ctx, func(movRepo repository.MovementRepository, _ repository.ProductRepository) error {
		existing, err := movRepo.GetByID(ctx, ws, "LC-7")
		require.NoError(t, err)
		require.Nil(t, existing)

		require.NoError(t, movRepo.Create(ctx, &entity.Movement{ID: "LC-7", WorkspaceID: ws, Type: entity.MovementTypeStockIn, CreatedBy: "yo"}))

		return s.Movements().Create(ctx, &entity.Movement{ID: "LC-7", WorkspaceID: ws, Type: entity.MovementTypeStockIn, CreatedBy: "otro"})
	})
	assert.ErrorIs(t, err, domain.ErrTxConflict)

	m, err := s.Movements().GetByID(ctx, ws, "LC-7")
	require.NoError(t, err)
	assert.Equal(t, "otro", m.CreatedBy)
}

func TestRun_LecturaDeProductoEliminadoEntraEnConflicto(t *testing.T) {
	s := memory.New()
	seed(t, s, "p1", 3)
	ctx := context.Background()

	err := s.Run(ctx, func(movRepo repository.MovementRepository, productRepo repository.ProductRepository) error {
		_, err := productRepo.GetByID(ctx, ws, "p1")
		require.NoError(t, err)
		require.NoError(t, s.Products().Delete(ctx, ws, "p1"))
		return movRepo.Create(ctx, &entity.Movement{ID: "OT-1", WorkspaceID: ws, Type: entity.MovementTypeStockOut})
	})
	assert.ErrorIs(t, err, domain.ErrTxConflict)
	m, err := s.Movements().GetByID(ctx, ws, "OT-1")
	require.NoError(t, err)
	assert.Nil(t, m)
}

func TestRun_ContextoCancelado(t *testing.T) {
	s := memory.New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := s.Run(ctx, func(repository.MovementRepository, repository.ProductRepository) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestCreate_Duplicado(t *testing.T) {
	s := memory.New()
	seed(t, s, "p1", 0)
	err := s.Products().Create(context.Background(), &entity.Product{ID: "p1", WorkspaceID: ws})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	// mismo id en otro workspace es independiente
	require.NoError(t, s.Products().Create(context.Background(), &entity.Product{ID: "p1", WorkspaceID: "otro"}))
}

func TestUpdateStock_NegativoRechazado(t *testing.T) {
	s := memory.New()
	seed(t, s, "p1", 2)
	err := s.Products().UpdateStock(context.Background(), ws, "p1", -1)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, int64(2), stockOf(t, s, "p1"))
}

func TestMovements_ListOrdenYFiltros(t *testing.T) {
	s := memory.New()
	ctx := context.Background()
	day := func(d int) time.Time { return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC) }
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	movs := []*entity.Movement{
		{ID: "LC-1", Type: entity.MovementTypeStockIn, Date: day(1), CreatedAt: created},
		{ID: "OT-1", Type: entity.MovementTypeStockOut, Date: day(3), CreatedAt: created},
		{ID: "OT-2", Type: entity.MovementTypeStockOut, Date: day(3), CreatedAt: created.Add(time.Minute)},
		{ID: "LC-2", Type: entity.MovementTypeStockIn, Date: day(2), CreatedAt: created},
	}
	for _, m := range movs {
		m.WorkspaceID = ws
		require.NoError(t, s.Movements().Create(ctx, m))
	}
	require.NoError(t, s.Movements().Create(ctx, &entity.Movement{ID: "LC-9", WorkspaceID: "otro", Type: entity.MovementTypeStockIn, Date: day(5)}))

	all, err := s.Movements().List(ctx, repository.MovementFilter{WorkspaceID: ws})
	require.NoError(t, err)
	assert.Equal(t, []string{"OT-2", "OT-1", "LC-2", "LC-1"}, ids(all))

	outs, err := s.Movements().List(ctx, repository.MovementFilter{WorkspaceID: ws, Type: entity.MovementTypeStockOut})
	require.NoError(t, err)
	assert.Equal(t, []string{"OT-2", "OT-1"}, ids(outs))

	from, to := day(2), day(2)
	ranged, err := s.Movements().List(ctx, repository.MovementFilter{WorkspaceID: ws, From: &from, To: &to})
	require.NoError(t, err)
	assert.Equal(t, []string{"LC-2"}, ids(ranged))

	page, err := s.Movements().List(ctx, repository.MovementFilter{WorkspaceID: ws, Limit: 2, Offset: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"OT-1", "LC-2"}, ids(page))
}

func TestMovements_UpdatePaymentSoloSalidas(t *testing.T) {
	s := memory.New()
	ctx := context.Background()
	require.NoError(t, s.Movements().Create(ctx, &entity.Movement{ID: "LC-1", WorkspaceID: ws, Type: entity.MovementTypeStockIn}))
	require.NoError(t, s.Movements().Create(ctx, &entity.Movement{
		ID: "OT-1", WorkspaceID: ws, Type: entity.MovementTypeStockOut,
		TotalAmount: decimal.NewFromInt(100), PaymentStatus: entity.PaymentStatusUnpaid,
	}))

	err := s.Movements().UpdatePayment(ctx, ws, "LC-1", decimal.NewFromInt(1), entity.PaymentStatusPaid)
	assert.ErrorIs(t, err, domain.ErrMovementNotFound)

	require.NoError(t, s.Movements().UpdatePayment(ctx, ws, "OT-1", decimal.NewFromInt(40), entity.PaymentStatusUnpaid))
	m, err := s.Movements().GetByID(ctx, ws, "OT-1")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(40).Equal(m.AmountPaid))
}

func TestMovements_LecturasNoCompartenMemoria(t *testing.T) {
	s := memory.New()
	ctx := context.Background()
	require.NoError(t, s.Movements().Create(ctx, &entity.Movement{
		ID: "LC-1", WorkspaceID: ws, Type: entity.MovementTypeStockIn,
		Items: []entity.MovementItem{{ProductID: "p1", ProductName: "Gasa", Quantity: 2}},
	}))

	m, err := s.Movements().GetByID(ctx, ws, "LC-1")
	require.NoError(t, err)
	m.Items[0].ProductName = "modificado"

	again, err := s.Movements().GetByID(ctx, ws, "LC-1")
	require.NoError(t, err)
	assert.Equal(t, "Gasa", again.Items[0].ProductName)
}

func TestProducts_ListByWorkspace(t *testing.T) {
	s := memory.New()
	ctx := context.Background()
	for _, p := range []*entity.Product{
		{ID: "b", WorkspaceID: ws, Name: "Sutura"},
		{ID: "a", WorkspaceID: ws, Name: "Gasa"},
		{ID: "c", WorkspaceID: "otro", Name: "Bisturí"},
	} {
		require.NoError(t, s.Products().Create(ctx, p))
	}

	list, err := s.Products().ListByWorkspace(ctx, ws, 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Gasa", list[0].Name)
	assert.Equal(t, "Sutura", list[1].Name)
}

func ids(ms []*entity.Movement) []string {
	out := make([]string, 0, len(ms))
	for _, m := range ms {
		out = append(out, m.ID)
	}
	return out
}
