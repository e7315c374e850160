package usecase

import (
	"context"

	"github.com/roundspecs/hsbs/internal/application/dto"
	"github.com/roundspecs/hsbs/internal/domain"
	"github.com/roundspecs/hsbs/internal/domain/entity"
	"github.com/roundspecs/hsbs/internal/domain/repository"
)

const maxMovementPage = 100

// MovementQueryUseCase consultas de solo lectura sobre movimientos confirmados.
type MovementQueryUseCase struct {
	repo repository.MovementRepository
}

func NewMovementQueryUseCase(repo repository.MovementRepository) *MovementQueryUseCase {
	return &MovementQueryUseCase{repo: repo}
}

// ListMovements lista por fecha descendente. Type vacío devuelve entradas y salidas.
func (uc *MovementQueryUseCase) ListMovements(ctx context.Context, workspaceID string, q dto.MovementListQuery) (*dto.MovementListResponse, error) {
	if workspaceID == "" {
		return nil, domain.ErrInvalidInput
	}
	t := entity.MovementType(q.Type)
	if t != "" && !t.Valid() {
		return nil, domain.ErrInvalidInput
	}
	if q.From != nil && q.To != nil && q.To.Before(*q.From) {
		return nil, domain.ErrInvalidInput
	}
	q.DefaultPage()
	if q.Limit > maxMovementPage {
		q.Limit = maxMovementPage
	}

	list, err := uc.repo.List(ctx, repository.MovementFilter{
		WorkspaceID: workspaceID,
		Type:        t,
		From:        q.From,
		To:          q.To,
		Limit:       q.Limit,
		Offset:      q.Offset,
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		items = append(items, dto.ToMovementResponse(m))
	}
	return &dto.MovementListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: q.Limit, Offset: q.Offset},
	}, nil
}

// GetMovement obtiene un movimiento por id (ej. "OT-S1").
func (uc *MovementQueryUseCase) GetMovement(ctx context.Context, workspaceID, id string) (*dto.MovementResponse, error) {
	m, err := uc.repo.GetByID(ctx, workspaceID, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, domain.ErrMovementNotFound
	}
	out := dto.ToMovementResponse(m)
	return &out, nil
}
