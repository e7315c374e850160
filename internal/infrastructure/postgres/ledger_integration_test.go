package postgres_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/roundspecs/hsbs/internal/application/ledger"
	"github.com/roundspecs/hsbs/internal/domain"
	"github.com/roundspecs/hsbs/internal/domain/entity"
	"github.com/roundspecs/hsbs/internal/domain/repository"
	"github.com/roundspecs/hsbs/internal/infrastructure/postgres"
	"github.com/roundspecs/hsbs/pkg/config"
)

// Requiere TEST_DATABASE_URL apuntando a una base desechable; cada test usa su propio workspace.
func setup(t *testing.T) (context.Context, *postgres.TxRunner, *postgres.ProductRepo, *postgres.MovementRepo, string) {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL no definido")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)

	pool, err := postgres.NewPool(ctx, config.DBConfig{DatabaseURL: dsn, MaxConns: 8, MinConns: 1})
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, postgres.Migrate(ctx, pool))

	return ctx, postgres.NewTxRunner(pool), postgres.NewProductRepository(pool), postgres.NewMovementRepository(pool), "it-" + uuid.NewString()
}

func seedProduct(t *testing.T, ctx context.Context, repo *postgres.ProductRepo, ws, id string, stock int64) {
	t.Helper()
	now := time.Now().UTC()
	require.NoError(t, repo.Create(ctx, &entity.Product{
		ID: id, WorkspaceID: ws, ProductNumber: id, Name: "Producto " + id,
		UnitPrice: decimal.NewFromInt(5), Stock: stock, CreatedAt: now, UpdatedAt: now,
	}))
}

func TestPostgres_SalidaYPago(t *testing.T) {
	ctx, runner, products, movements, ws := setup(t)
	seedProduct(t, ctx, products, ws, "P1", 10)

	uc := ledger.NewCommitMovementUseCase(runner, ledger.NopPublisher{}, ledger.DefaultRetryConfig(), zerolog.Nop())
	m, err := uc.CommitMovement(ctx, ledger.MovementInput{
		WorkspaceID: ws, Type: entity.MovementTypeStockOut, ReferenceNumber: "S1", CreatedBy: "u1",
		Items: []ledger.MovementItemInput{{ProductID: "P1", Quantity: 4}},
	})
	require.NoError(t, err)
	assert.Equal(t, "OT-S1", m.ID)

	p, err := products.GetByID(ctx, ws, "P1")
	require.NoError(t, err)
	assert.Equal(t, int64(6), p.Stock)

	got, err := movements.GetByID(ctx, ws, "OT-S1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, decimal.NewFromInt(20).Equal(got.TotalAmount))
	assert.Equal(t, entity.PaymentStatusUnpaid, got.PaymentStatus)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "Producto P1", got.Items[0].ProductName)

	require.NoError(t, movements.UpdatePayment(ctx, ws, "OT-S1", decimal.NewFromInt(20), entity.PaymentStatusPaid))
	got, err = movements.GetByID(ctx, ws, "OT-S1")
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentStatusPaid, got.PaymentStatus)

	list, err := movements.List(ctx, repository.MovementFilter{WorkspaceID: ws, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestPostgres_ConcurrenciaSinSobreventa(t *testing.T) {
	ctx, runner, products, _, ws := setup(t)
	seedProduct(t, ctx, products, ws, "P1", 6)

	uc := ledger.NewCommitMovementUseCase(runner, ledger.NopPublisher{},
		ledger.RetryConfig{MaxAttempts: 50, BaseDelay: time.Millisecond, MaxDelay: 20 * time.Millisecond}, zerolog.Nop())

	var g errgroup.Group
	results := make([]error, 2)
	for i, ref := range []string{"S1", "S2"} {
		g.Go(func() error {
			_, results[i] = uc.CommitMovement(ctx, ledger.MovementInput{
				WorkspaceID: ws, Type: entity.MovementTypeStockOut, ReferenceNumber: ref, CreatedBy: "u1",
				Items: []ledger.MovementItemInput{{ProductID: "P1", Quantity: 4}},
			})
			return nil
		})
	}
	require.NoError(t, g.Wait())

	ok, rejected := 0, 0
	for _, err := range results {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domain.ErrInsufficientStock):
			rejected++
		default:
			t.Fatalf("error inesperado: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, rejected)

	p, err := products.GetByID(ctx, ws, "P1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), p.Stock)
}
