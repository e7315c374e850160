package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/roundspecs/hsbs/internal/domain"
	"github.com/roundspecs/hsbs/internal/domain/entity"
	"github.com/roundspecs/hsbs/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementa repository.ProductRepository. Con tx != nil opera dentro de una transacción.
type ProductRepo struct {
	s  *Store
	tx *txn
}

func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	path := productPath(p.WorkspaceID, p.ID)
	if r.tx != nil {
		current, err := r.get(path)
		if err != nil {
			return err
		}
		if current != nil {
			return domain.ErrDuplicate
		}
		r.tx.putProduct(path, *p)
		return nil
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.products[path]; ok {
		return domain.ErrDuplicate
	}
	r.s.products[path] = productDoc{data: *p, version: r.s.nextVersionLocked()}
	return nil
}

func (r *ProductRepo) GetByID(ctx context.Context, workspaceID, id string) (*entity.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.get(productPath(workspaceID, id))
}

// get lee con read-your-writes y registra la versión observada en la tx.
func (r *ProductRepo) get(path string) (*entity.Product, error) {
	if r.tx != nil {
		if p, ok := r.tx.products[path]; ok {
			return &p, nil
		}
	}
	r.s.mu.RLock()
	doc, ok := r.s.products[path]
	r.s.mu.RUnlock()
	if r.tx != nil {
		r.tx.observe(path, doc.version)
	}
	if !ok {
		return nil, nil
	}
	p := doc.data
	return &p, nil
}

func (r *ProductRepo) UpdateStock(ctx context.Context, workspaceID, id string, stock int64) error {
	if stock < 0 {
		return fmt.Errorf("update stock %s: %w", id, domain.ErrInsufficientStock)
	}
	path := productPath(workspaceID, id)
	if r.tx != nil {
		p, err := r.get(path)
		if err != nil {
			return err
		}
		if p == nil {
			return &domain.ProductNotFoundError{ProductID: id}
		}
		p.Stock = stock
		p.UpdatedAt = time.Now().UTC()
		r.tx.putProduct(path, *p)
		return nil
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	doc, ok := r.s.products[path]
	if !ok {
		return &domain.ProductNotFoundError{ProductID: id}
	}
	doc.data.Stock = stock
	doc.data.UpdatedAt = time.Now().UTC()
	doc.version = r.s.nextVersionLocked()
	r.s.products[path] = doc
	return nil
}

func (r *ProductRepo) Update(ctx context.Context, p *entity.Product) error {
	path := productPath(p.WorkspaceID, p.ID)
	apply := func(cur *entity.Product) {
		cur.ProductNumber = p.ProductNumber
		cur.Name = p.Name
		cur.Category = p.Category
		cur.UnitPrice = p.UnitPrice
		cur.UpdatedAt = p.UpdatedAt
	}
	if r.tx != nil {
		cur, err := r.get(path)
		if err != nil {
			return err
		}
		if cur == nil {
			return &domain.ProductNotFoundError{ProductID: p.ID}
		}
		apply(cur)
		r.tx.putProduct(path, *cur)
		return nil
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	doc, ok := r.s.products[path]
	if !ok {
		return &domain.ProductNotFoundError{ProductID: p.ID}
	}
	apply(&doc.data)
	doc.version = r.s.nextVersionLocked()
	r.s.products[path] = doc
	return nil
}

// ListByWorkspace ordena por nombre; no participa en la validación de la transacción.
func (r *ProductRepo) ListByWorkspace(ctx context.Context, workspaceID string, limit, offset int) ([]*entity.Product, error) {
	prefix := "workspaces/" + workspaceID + "/products/"
	r.s.mu.RLock()
	out := make([]*entity.Product, 0)
	for path, doc := range r.s.products {
		if !strings.HasPrefix(path, prefix) {
			continue
		}
		if r.tx != nil {
			if _, pending := r.tx.products[path]; pending {
				continue
			}
		}
		p := doc.data
		out = append(out, &p)
	}
	r.s.mu.RUnlock()
	if r.tx != nil {
		for path, p := range r.tx.products {
			if strings.HasPrefix(path, prefix) {
				p := p
				out = append(out, &p)
			}
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return paginate(out, limit, offset), nil
}

// Delete elimina fuera de transacción. Transacciones que ya leyeron el producto fallarán al confirmar.
func (r *ProductRepo) Delete(ctx context.Context, workspaceID, id string) error {
	if r.tx != nil {
		return fmt.Errorf("delete product: no soportado dentro de una transacción")
	}
	path := productPath(workspaceID, id)
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.products[path]; !ok {
		return &domain.ProductNotFoundError{ProductID: id}
	}
	delete(r.s.products, path)
	return nil
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return items[:0]
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
