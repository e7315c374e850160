package repository

import (
	"context"

	"github.com/roundspecs/hsbs/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
// GetByID devuelve (nil, nil) si el producto no existe.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, workspaceID, id string) (*entity.Product, error)
	UpdateStock(ctx context.Context, workspaceID, id string, stock int64) error
	// Update modifica datos descriptivos y precio; nunca Stock.
	Update(ctx context.Context, product *entity.Product) error
	ListByWorkspace(ctx context.Context, workspaceID string, limit, offset int) ([]*entity.Product, error)
	Delete(ctx context.Context, workspaceID, id string) error
}
