package http

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/roundspecs/hsbs/internal/application/dto"
	"github.com/roundspecs/hsbs/internal/application/ledger"
	"github.com/roundspecs/hsbs/internal/application/payment"
	"github.com/roundspecs/hsbs/internal/application/usecase"
	"github.com/roundspecs/hsbs/internal/domain"
	"github.com/roundspecs/hsbs/internal/domain/entity"
)

const dateLayout = "2006-01-02"

// MovementHandler maneja entradas (LC), salidas (OT), pagos y consultas de movimientos.
type MovementHandler struct {
	ledger   *ledger.CommitMovementUseCase
	payments *payment.PaymentUseCase
	query    *usecase.MovementQueryUseCase
}

// NewMovementHandler construye el handler.
func NewMovementHandler(l *ledger.CommitMovementUseCase, p *payment.PaymentUseCase, q *usecase.MovementQueryUseCase) *MovementHandler {
	return &MovementHandler{ledger: l, payments: p, query: q}
}

// StockIn godoc
// @Summary      Registrar entrada de stock (LC)
// @Description  Aplica todas las líneas de forma atómica. El id del movimiento es "LC-<reference_number>".
// @Tags         movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        workspace  path  string                     true  "Workspace"
// @Param        body       body  dto.CommitMovementRequest  true  "reference_number, date, items"
// @Success      201  {object}  dto.MovementResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/workspaces/{workspace}/movements/stock-in [post]
func (h *MovementHandler) StockIn(c *fiber.Ctx) error {
	return h.commit(c, entity.MovementTypeStockIn)
}

// StockOut godoc
// @Summary      Registrar salida de stock (OT)
// @Description  Rechaza la operación completa si alguna línea deja stock negativo. Queda sin pagar.
// @Tags         movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        workspace  path  string                     true  "Workspace"
// @Param        body       body  dto.CommitMovementRequest  true  "reference_number, date, items, surgeon"
// @Success      201  {object}  dto.MovementResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/workspaces/{workspace}/movements/stock-out [post]
func (h *MovementHandler) StockOut(c *fiber.Ctx) error {
	return h.commit(c, entity.MovementTypeStockOut)
}

func (h *MovementHandler) commit(c *fiber.Ctx, t entity.MovementType) error {
	var in dto.CommitMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	m, err := h.ledger.CommitMovementFromRequest(c.Context(), GetWorkspaceID(c), GetUserID(c), t, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToMovementResponse(m))
}

// List godoc
// @Summary      Listar movimientos
// @Description  Ordenados por fecha descendente. from/to aceptan YYYY-MM-DD o RFC3339; "to" con fecha sola incluye el día completo.
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        workspace  path   string  true   "Workspace"
// @Param        type       query  string  false  "LC u OT"
// @Param        from       query  string  false  "Desde"
// @Param        to         query  string  false  "Hasta"
// @Param        limit      query  int     false  "Límite (default 20, máx 100)"
// @Param        offset     query  int     false  "Offset"
// @Success      200  {object}  dto.MovementListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/workspaces/{workspace}/movements [get]
func (h *MovementHandler) List(c *fiber.Ctx) error {
	q := dto.MovementListQuery{
		Type:        strings.ToUpper(strings.TrimSpace(c.Query("type"))),
		PageRequest: dto.PageRequest{Limit: c.QueryInt("limit", 20), Offset: c.QueryInt("offset", 0)},
	}
	var err error
	if q.From, err = parseDateParam(c.Query("from"), false); err != nil {
		return writeError(c, err)
	}
	if q.To, err = parseDateParam(c.Query("to"), true); err != nil {
		return writeError(c, err)
	}
	out, err := h.query.ListMovements(c.Context(), GetWorkspaceID(c), q)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener movimiento
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        workspace  path  string  true  "Workspace"
// @Param        id         path  string  true  "Movement ID (ej. OT-S1)"
// @Success      200  {object}  dto.MovementResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/workspaces/{workspace}/movements/{id} [get]
func (h *MovementHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.query.GetMovement(c.Context(), GetWorkspaceID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// UpdatePayment godoc
// @Summary      Registrar pago de una salida
// @Description  amount_paid >= total deja el estado en "paid". Solo aplica a movimientos OT.
// @Tags         movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        workspace  path  string                    true  "Workspace"
// @Param        id         path  string                    true  "Movement ID"
// @Param        body       body  dto.UpdatePaymentRequest  true  "amount_paid, payment_status"
// @Success      200  {object}  dto.MovementResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/workspaces/{workspace}/movements/{id}/payment [patch]
func (h *MovementHandler) UpdatePayment(c *fiber.Ctx) error {
	var in dto.UpdatePaymentRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	m, err := h.payments.UpdatePayment(c.Context(), GetWorkspaceID(c), c.Params("id"), in.AmountPaid, entity.PaymentStatus(in.PaymentStatus))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ToMovementResponse(m))
}

func parseDateParam(v string, endOfDay bool) (*time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return &t, nil
	}
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		return nil, fmt.Errorf("%w: fecha %q", domain.ErrInvalidInput, v)
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}
