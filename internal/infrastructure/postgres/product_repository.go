package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/roundspecs/hsbs/internal/domain"
	"github.com/roundspecs/hsbs/internal/domain/entity"
	"github.com/roundspecs/hsbs/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

const productColumns = `id, workspace_id, product_number, name, category, unit_price, stock, created_at, updated_at`

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	if err := row.Scan(&p.ID, &p.WorkspaceID, &p.ProductNumber, &p.Name, &p.Category,
		&p.UnitPrice, &p.Stock, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

// Create persiste un nuevo producto con su stock inicial.
func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	query := `INSERT INTO products (` + productColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.WorkspaceID, p.ProductNumber, p.Name, p.Category, p.UnitPrice, p.Stock, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// GetByID obtiene un producto del workspace; (nil, nil) si no existe.
func (r *ProductRepo) GetByID(ctx context.Context, workspaceID, id string) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE workspace_id = $1 AND id = $2`
	p, err := scanProduct(r.q.QueryRow(ctx, query, workspaceID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// UpdateStock fija el stock (solo lo usa el libro de movimientos dentro de su transacción).
func (r *ProductRepo) UpdateStock(ctx context.Context, workspaceID, id string, stock int64) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE products SET stock = $3, updated_at = now() WHERE workspace_id = $1 AND id = $2`,
		workspaceID, id, stock,
	)
	if err != nil {
		if isCheckViolation(err) {
			return fmt.Errorf("update stock %s: %w", id, domain.ErrInsufficientStock)
		}
		return fmt.Errorf("update product stock: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return &domain.ProductNotFoundError{ProductID: id}
	}
	return nil
}

// Update actualiza datos descriptivos y precio. No modifica Stock.
func (r *ProductRepo) Update(ctx context.Context, p *entity.Product) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE products SET product_number = $3, name = $4, category = $5, unit_price = $6, updated_at = $7
		WHERE workspace_id = $1 AND id = $2`,
		p.WorkspaceID, p.ID, p.ProductNumber, p.Name, p.Category, p.UnitPrice, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return &domain.ProductNotFoundError{ProductID: p.ID}
	}
	return nil
}

// ListByWorkspace lista productos por nombre con paginación.
func (r *ProductRepo) ListByWorkspace(ctx context.Context, workspaceID string, limit, offset int) ([]*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE workspace_id = $1 ORDER BY name, id LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, workspaceID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// Delete elimina un producto del workspace.
func (r *ProductRepo) Delete(ctx context.Context, workspaceID, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM products WHERE workspace_id = $1 AND id = $2`, workspaceID, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return &domain.ProductNotFoundError{ProductID: id}
	}
	return nil
}
