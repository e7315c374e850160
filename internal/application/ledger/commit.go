package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/roundspecs/hsbs/internal/domain"
	"github.com/roundspecs/hsbs/internal/domain/entity"
	"github.com/roundspecs/hsbs/internal/domain/repository"
)

var tracer = otel.Tracer("github.com/roundspecs/hsbs/internal/application/ledger")

// CommitMovementUseCase confirma entradas y salidas de forma atómica: el movimiento y todos sus
// efectos sobre el stock se aplican juntos o no se aplica nada. El aislamiento lo provee la
// transacción del almacén; los conflictos se reintentan con el Retrier.
type CommitMovementUseCase struct {
	txRunner  TxRunner
	retrier   *Retrier
	publisher EventPublisher
	log       zerolog.Logger
	now       func() time.Time
}

// NewCommitMovementUseCase construye el caso de uso. publisher nil = NopPublisher.
func NewCommitMovementUseCase(txRunner TxRunner, publisher EventPublisher, retry RetryConfig, log zerolog.Logger) *CommitMovementUseCase {
	if publisher == nil {
		publisher = NopPublisher{}
	}
	return &CommitMovementUseCase{
		txRunner:  txRunner,
		retrier:   NewRetrier(retry, log),
		publisher: publisher,
		log:       log,
		now:       time.Now,
	}
}

// MovementItemInput línea solicitada. UnitPrice nil = precio actual del producto; un cero explícito se respeta.
type MovementItemInput struct {
	ProductID string
	Quantity  int64
	UnitPrice *decimal.Decimal
}

// MovementInput entrada de CommitMovement.
type MovementInput struct {
	WorkspaceID     string
	Type            entity.MovementType
	ReferenceNumber string
	Date            time.Time // cero = momento del commit
	Items           []MovementItemInput
	CreatedBy       string
	SurgeonID       string
	SurgeonName     string
}

func (in *MovementInput) normalize() error {
	in.WorkspaceID = strings.TrimSpace(in.WorkspaceID)
	in.ReferenceNumber = strings.TrimSpace(in.ReferenceNumber)
	in.CreatedBy = strings.TrimSpace(in.CreatedBy)
	if in.WorkspaceID == "" || in.ReferenceNumber == "" || in.CreatedBy == "" {
		return domain.ErrInvalidInput
	}
	if !in.Type.Valid() {
		return fmt.Errorf("%w: tipo de movimiento %q", domain.ErrInvalidInput, in.Type)
	}
	if len(in.Items) == 0 {
		return fmt.Errorf("%w: el movimiento no tiene ítems", domain.ErrInvalidInput)
	}
	for i, it := range in.Items {
		if strings.TrimSpace(it.ProductID) == "" {
			return fmt.Errorf("%w: ítem %d sin producto", domain.ErrInvalidInput, i)
		}
		if it.Quantity < 1 || it.Quantity > entity.MaxItemQuantity {
			return fmt.Errorf("%w: ítem %d con cantidad %d", domain.ErrInvalidInput, i, it.Quantity)
		}
		if it.UnitPrice != nil && !entity.ValidMoney(*it.UnitPrice) {
			return fmt.Errorf("%w: ítem %d con precio inválido %s", domain.ErrInvalidInput, i, it.UnitPrice)
		}
	}
	if in.Type == entity.MovementTypeStockIn {
		in.SurgeonID, in.SurgeonName = "", ""
	}
	return nil
}

// CommitMovement valida la solicitud y la confirma en una transacción reintentada ante conflictos.
// Errores: domain.ErrInvalidInput, *domain.DuplicateReferenceError, *domain.ProductNotFoundError,
// *domain.InsufficientStockError, *domain.ConflictError o el error del contexto.
func (uc *CommitMovementUseCase) CommitMovement(ctx context.Context, in MovementInput) (*entity.Movement, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	now := uc.now().UTC()
	if in.Date.IsZero() {
		in.Date = now
	}
	id := entity.MovementID(in.Type, in.ReferenceNumber)

	ctx, span := tracer.Start(ctx, "ledger.CommitMovement", trace.WithAttributes(
		attribute.String("workspace.id", in.WorkspaceID),
		attribute.String("movement.type", string(in.Type)),
		attribute.String("movement.id", id),
		attribute.Int("movement.items", len(in.Items)),
	))
	defer span.End()

	var committed *entity.Movement
	err := uc.retrier.Do(ctx, func(attempt int) error {
		span.AddEvent("attempt", trace.WithAttributes(attribute.Int("attempt", attempt)))
		return uc.txRunner.Run(ctx, func(movRepo repository.MovementRepository, productRepo repository.ProductRepository) error {
			m, err := applyMovement(ctx, movRepo, productRepo, id, in, now)
			if err != nil {
				return err
			}
			committed = m
			return nil
		})
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		ev := uc.log.Info()
		if !domain.IsClientError(err) && !domain.IsNotFound(err) {
			ev = uc.log.Error()
		}
		ev.Err(err).Str("workspace_id", in.WorkspaceID).Str("movement_id", id).Msg("movimiento rechazado")
		return nil, err
	}

	uc.log.Info().
		Str("workspace_id", committed.WorkspaceID).
		Str("movement_id", committed.ID).
		Str("total", committed.TotalAmount.String()).
		Int("items", len(committed.Items)).
		Msg("movimiento confirmado")

	if err := uc.publisher.PublishMovementCommitted(ctx, committed); err != nil {
		span.AddEvent("publish_failed")
		uc.log.Error().Err(err).Str("movement_id", committed.ID).Msg("no se pudo publicar el evento del movimiento")
	}
	return committed, nil
}

// applyMovement es el cuerpo de un intento: solo lee y escribe a través de los repositorios de la tx.
func applyMovement(
	ctx context.Context,
	movRepo repository.MovementRepository,
	productRepo repository.ProductRepository,
	id string,
	in MovementInput,
	now time.Time,
) (*entity.Movement, error) {
	existing, err := movRepo.GetByID(ctx, in.WorkspaceID, id)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, &domain.DuplicateReferenceError{WorkspaceID: in.WorkspaceID, MovementID: id}
	}

	// Cada producto se lee una sola vez; las cantidades repetidas se acumulan.
	products := make(map[string]*entity.Product, len(in.Items))
	requested := make(map[string]int64, len(in.Items))
	order := make([]string, 0, len(in.Items))
	for _, it := range in.Items {
		sum, ok := entity.AddQuantity(requested[it.ProductID], it.Quantity)
		if !ok {
			return nil, fmt.Errorf("%w: cantidad total del producto %s fuera de rango", domain.ErrInvalidInput, it.ProductID)
		}
		requested[it.ProductID] = sum
		if _, ok := products[it.ProductID]; ok {
			continue
		}
		p, err := productRepo.GetByID(ctx, in.WorkspaceID, it.ProductID)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, &domain.ProductNotFoundError{ProductID: it.ProductID}
		}
		products[it.ProductID] = p
		order = append(order, it.ProductID)
	}

	if in.Type == entity.MovementTypeStockOut {
		for _, pid := range order {
			p := products[pid]
			if p.Stock < requested[pid] {
				return nil, &domain.InsufficientStockError{
					ProductID:   p.ID,
					ProductName: p.Name,
					Available:   p.Stock,
					Requested:   requested[pid],
				}
			}
		}
	}

	items := make([]entity.MovementItem, 0, len(in.Items))
	for _, it := range in.Items {
		p := products[it.ProductID]
		price := p.UnitPrice
		if it.UnitPrice != nil {
			price = *it.UnitPrice
		}
		items = append(items, entity.MovementItem{
			ProductID:   p.ID,
			ProductName: p.Name,
			Quantity:    it.Quantity,
			UnitPrice:   price,
		})
	}

	total := entity.ComputeTotal(items)
	if !entity.ValidMoney(total) {
		return nil, fmt.Errorf("%w: total %s fuera de rango", domain.ErrInvalidInput, total)
	}

	m := &entity.Movement{
		ID:              id,
		WorkspaceID:     in.WorkspaceID,
		Type:            in.Type,
		ReferenceNumber: in.ReferenceNumber,
		Date:            in.Date,
		Items:           items,
		TotalAmount:     total,
		CreatedBy:       in.CreatedBy,
		CreatedAt:       now,
	}
	if m.IsStockOut() {
		m.SurgeonID = in.SurgeonID
		m.SurgeonName = in.SurgeonName
		m.AmountPaid = decimal.Zero
		m.PaymentStatus = entity.PaymentStatusUnpaid
	}

	newStock := make(map[string]int64, len(order))
	for _, pid := range order {
		stock, ok := entity.AddQuantity(products[pid].Stock, in.Type.StockDelta(requested[pid]))
		if !ok {
			return nil, fmt.Errorf("%w: el stock del producto %s quedaría fuera de rango", domain.ErrInvalidInput, pid)
		}
		newStock[pid] = stock
	}

	if err := movRepo.Create(ctx, m); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, &domain.DuplicateReferenceError{WorkspaceID: in.WorkspaceID, MovementID: id}
		}
		return nil, err
	}
	for _, pid := range order {
		if err := productRepo.UpdateStock(ctx, in.WorkspaceID, pid, newStock[pid]); err != nil {
			return nil, err
		}
	}
	return m, nil
}
