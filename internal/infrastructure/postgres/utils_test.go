package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/roundspecs/hsbs/internal/domain"
)

func TestAsTxConflict(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		conflict bool
	}{
		{"serialization", &pgconn.PgError{Code: "40001"}, true},
		{"deadlock", fmt.Errorf("get product: %w", &pgconn.PgError{Code: "40P01"}), true},
		{"unique", &pgconn.PgError{Code: "23505"}, false},
		{"negocio", &domain.InsufficientStockError{ProductID: "A"}, false},
		{"otro", errors.New("conn reset"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := asTxConflict(tc.err)
			assert.Equal(t, tc.conflict, domain.IsRetryable(got))
			if !tc.conflict {
				assert.Same(t, tc.err, got)
			}
		})
	}
	assert.NoError(t, asTxConflict(nil))
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})))
	assert.False(t, isUniqueViolation(errors.New("23505 en el texto no basta")))
	assert.True(t, isCheckViolation(&pgconn.PgError{Code: "23514"}))
}
