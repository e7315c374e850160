package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/roundspecs/hsbs/internal/application/dto"
	"github.com/roundspecs/hsbs/internal/domain"
	"github.com/roundspecs/hsbs/internal/domain/entity"
	"github.com/roundspecs/hsbs/internal/domain/repository"
)

// ProductUseCase registro de productos. Stock solo se fija al crear; después cambia vía movimientos.
type ProductUseCase struct {
	repo repository.ProductRepository
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository) *ProductUseCase {
	return &ProductUseCase{repo: repo}
}

// Create crea un producto con su stock inicial.
func (uc *ProductUseCase) Create(ctx context.Context, workspaceID string, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	in.ProductNumber = strings.TrimSpace(in.ProductNumber)
	in.Name = strings.TrimSpace(in.Name)
	if workspaceID == "" || in.ProductNumber == "" || in.Name == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.Stock < 0 || !entity.ValidMoney(in.UnitPrice) {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now().UTC()
	product := &entity.Product{
		ID:            uuid.New().String(),
		WorkspaceID:   workspaceID,
		ProductNumber: in.ProductNumber,
		Name:          in.Name,
		Category:      strings.TrimSpace(in.Category),
		UnitPrice:     in.UnitPrice,
		Stock:         in.Stock,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// GetByID obtiene un producto; ErrProductNotFound si no existe en el workspace.
func (uc *ProductUseCase) GetByID(ctx context.Context, workspaceID, id string) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, workspaceID, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, &domain.ProductNotFoundError{ProductID: id}
	}
	return toProductResponse(product), nil
}

// Update modifica nombre, código, categoría o precio. Los movimientos ya confirmados conservan
// el nombre y precio que tenían al confirmarse.
func (uc *ProductUseCase) Update(ctx context.Context, workspaceID, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, workspaceID, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, &domain.ProductNotFoundError{ProductID: id}
	}
	if in.ProductNumber != nil {
		if strings.TrimSpace(*in.ProductNumber) == "" {
			return nil, domain.ErrInvalidInput
		}
		product.ProductNumber = strings.TrimSpace(*in.ProductNumber)
	}
	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return nil, domain.ErrInvalidInput
		}
		product.Name = strings.TrimSpace(*in.Name)
	}
	if in.Category != nil {
		product.Category = strings.TrimSpace(*in.Category)
	}
	if in.UnitPrice != nil {
		if !entity.ValidMoney(*in.UnitPrice) {
			return nil, domain.ErrInvalidInput
		}
		product.UnitPrice = *in.UnitPrice
	}
	product.UpdatedAt = time.Now().UTC()
	if err := uc.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// List lista productos del workspace con paginación.
func (uc *ProductUseCase) List(ctx context.Context, workspaceID string, page dto.PageRequest) (*dto.ProductListResponse, error) {
	page.DefaultPage()
	list, err := uc.repo.ListByWorkspace(ctx, workspaceID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toProductResponse(p))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// Delete elimina un producto. Los movimientos que lo referencian conservan su copia.
func (uc *ProductUseCase) Delete(ctx context.Context, workspaceID, id string) error {
	return uc.repo.Delete(ctx, workspaceID, id)
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	if p == nil {
		return nil
	}
	return &dto.ProductResponse{
		ID:            p.ID,
		WorkspaceID:   p.WorkspaceID,
		ProductNumber: p.ProductNumber,
		Name:          p.Name,
		Category:      p.Category,
		UnitPrice:     p.UnitPrice,
		Stock:         p.Stock,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}
