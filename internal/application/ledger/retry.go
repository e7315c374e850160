package ledger

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"github.com/roundspecs/hsbs/internal/domain"
)

// RetryConfig límites del controlador de reintentos.
type RetryConfig struct {
	MaxAttempts int           // intentos totales, incluido el primero
	BaseDelay   time.Duration // espera antes del primer reintento
	MaxDelay    time.Duration // tope de la espera entre intentos
}

// DefaultRetryConfig 5 intentos, 10ms..200ms con jitter.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 5,
		BaseDelay:   10 * time.Millisecond,
		MaxDelay:    200 * time.Millisecond,
	}
}

func (c RetryConfig) normalized() RetryConfig {
	def := DefaultRetryConfig()
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = def.MaxAttempts
	}
	if c.BaseDelay <= 0 {
		c.BaseDelay = def.BaseDelay
	}
	if c.MaxDelay < c.BaseDelay {
		c.MaxDelay = c.BaseDelay
	}
	return c
}

// Retrier re-ejecuta una operación transaccional mientras el almacén reporte conflictos
// (domain.ErrTxConflict). Cualquier otro error se devuelve en el primer intento.
type Retrier struct {
	cfg RetryConfig
	log zerolog.Logger
}

// NewRetrier construye el controlador. Valores no positivos toman el default.
func NewRetrier(cfg RetryConfig, log zerolog.Logger) *Retrier {
	return &Retrier{cfg: cfg.normalized(), log: log}
}

// Config devuelve la configuración efectiva.
func (r *Retrier) Config() RetryConfig { return r.cfg }

func (r *Retrier) policy(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.cfg.BaseDelay
	b.MaxInterval = r.cfg.MaxDelay
	b.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(r.cfg.MaxAttempts-1)), ctx)
}

// Do ejecuta op hasta que tenga éxito, falle con un error no reintentable o se agoten los intentos.
// Al agotarlos devuelve *domain.ConflictError (errors.Is(err, domain.ErrConcurrencyConflict)).
// Si ctx se cancela devuelve ctx.Err(); el resultado del intento en curso es desconocido.
func (r *Retrier) Do(ctx context.Context, op func(attempt int) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	attempt := 0
	var lastConflict error
	err := backoff.RetryNotify(func() error {
		attempt++
		err := op(attempt)
		switch {
		case err == nil:
			return nil
		case domain.IsRetryable(err):
			lastConflict = err
			return err
		default:
			return backoff.Permanent(err)
		}
	}, r.policy(ctx), func(err error, wait time.Duration) {
		r.log.Debug().Err(err).Int("attempt", attempt).Dur("wait", wait).Msg("conflicto en transacción, reintentando")
	})
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil && !domain.IsClientError(err) && !domain.IsNotFound(err) {
		return ctxErr
	}
	if domain.IsRetryable(err) {
		r.log.Warn().Err(lastConflict).Int("attempts", attempt).Msg("reintentos agotados")
		return &domain.ConflictError{Attempts: attempt, Err: lastConflict}
	}
	return err
}
