package ledger

import (
	"context"

	"github.com/roundspecs/hsbs/internal/application/dto"
	"github.com/roundspecs/hsbs/internal/domain/entity"
)

// CommitMovementFromRequest adapta el request HTTP al caso de uso CommitMovement(ctx, MovementInput).
// Usar desde handlers HTTP o desde otros casos de uso que tengan workspaceID, userID y dto.CommitMovementRequest.
func (uc *CommitMovementUseCase) CommitMovementFromRequest(
	ctx context.Context,
	workspaceID, userID string,
	movementType entity.MovementType,
	in dto.CommitMovementRequest,
) (*entity.Movement, error) {
	input := MovementInput{
		WorkspaceID:     workspaceID,
		Type:            movementType,
		ReferenceNumber: in.ReferenceNumber,
		Items:           make([]MovementItemInput, 0, len(in.Items)),
		CreatedBy:       userID,
		SurgeonID:       in.SurgeonID,
		SurgeonName:     in.SurgeonName,
	}
	if in.Date != nil {
		input.Date = *in.Date
	}
	for _, it := range in.Items {
		input.Items = append(input.Items, MovementItemInput{ProductID: it.ProductID, Quantity: it.Quantity, UnitPrice: it.UnitPrice})
	}
	return uc.CommitMovement(ctx, input)
}
