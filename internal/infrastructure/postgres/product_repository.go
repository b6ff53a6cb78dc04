package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/suministros-api/internal/domain"
	"github.com/jhoicas/suministros-api/internal/domain/entity"
	"github.com/jhoicas/suministros-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

const productColumns = `id, category_id, brand, model, price, stock_quantity, min_stock_level, supplier, created_at, updated_at`

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// Create persiste un nuevo producto con su stock inicial.
func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO products (`+productColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		p.ID, p.CategoryID, p.Brand, p.Model, p.Price, p.StockQuantity, p.MinStockLevel, p.Supplier, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		if isForeignKeyViolation(err) || isInvalidText(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// GetByID obtiene un producto por ID.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	if !validID(id) {
		return nil, nil
	}
	return r.getOne(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
}

// GetForUpdate obtiene el producto con SELECT ... FOR UPDATE (solo tiene efecto dentro de una tx).
func (r *ProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	if !validID(id) {
		return nil, nil
	}
	return r.getOne(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1 FOR UPDATE`, id)
}

// FindByBrandModel busca por (marca, modelo) sin distinguir mayúsculas.
func (r *ProductRepo) FindByBrandModel(ctx context.Context, brand, model string) (*entity.Product, error) {
	return r.getOne(ctx, `SELECT `+productColumns+` FROM products
		WHERE lower(brand) = lower($1) AND lower(model) = lower($2)`,
		strings.TrimSpace(brand), strings.TrimSpace(model))
}

// List lista productos con filtros; más recientes primero.
func (r *ProductRepo) List(ctx context.Context, f repository.ProductFilter) ([]*entity.Product, error) {
	where, args := productWhere(f)
	query := `SELECT ` + productColumns + ` FROM products` + where + ` ORDER BY created_at DESC, id`
	if f.Limit > 0 {
		args = append(args, f.Limit, f.Offset)
		query += fmt.Sprintf(` LIMIT $%d OFFSET $%d`, len(args)-1, len(args))
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return scanProducts(rows)
}

// Count cuenta los productos que cumplen el filtro (ignora Limit/Offset).
func (r *ProductRepo) Count(ctx context.Context, f repository.ProductFilter) (int, error) {
	where, args := productWhere(f)
	var n int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM products`+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return n, nil
}

// Update actualiza atributos. No toca stock_quantity (solo lo modifican los registros del libro).
func (r *ProductRepo) Update(ctx context.Context, p *entity.Product) error {
	if !validID(p.ID) {
		return domain.ErrNotFound
	}
	cmd, err := r.q.Exec(ctx, `
		UPDATE products SET category_id = $2, brand = $3, model = $4, price = $5, min_stock_level = $6, supplier = $7, updated_at = $8
		WHERE id = $1`,
		p.ID, p.CategoryID, p.Brand, p.Model, p.Price, p.MinStockLevel, p.Supplier, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		if isForeignKeyViolation(err) || isInvalidText(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("update product: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// AdjustStock aplica un delta relativo; nunca escribe un valor absoluto calculado en la aplicación.
func (r *ProductRepo) AdjustStock(ctx context.Context, id string, delta int64) error {
	if !validID(id) {
		return domain.ErrNotFound
	}
	cmd, err := r.q.Exec(ctx,
		`UPDATE products SET stock_quantity = stock_quantity + $2, updated_at = now() WHERE id = $1`,
		id, delta,
	)
	if err != nil {
		return fmt.Errorf("adjust stock: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina un producto por ID. Los registros se borran antes en la misma tx (o por ON DELETE CASCADE).
func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return nil
	}
	if _, err := r.q.Exec(ctx, `DELETE FROM products WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}

// ListLowStock productos en o por debajo de su umbral.
func (r *ProductRepo) ListLowStock(ctx context.Context, limit int) ([]*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products
		WHERE stock_quantity <= min_stock_level ORDER BY stock_quantity ASC, model ASC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list low stock: %w", err)
	}
	return scanProducts(rows)
}

func (r *ProductRepo) getOne(ctx context.Context, query string, args ...any) (*entity.Product, error) {
	var p entity.Product
	err := r.q.QueryRow(ctx, query, args...).Scan(
		&p.ID, &p.CategoryID, &p.Brand, &p.Model, &p.Price, &p.StockQuantity, &p.MinStockLevel, &p.Supplier, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidText(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return &p, nil
}

func productWhere(f repository.ProductFilter) (string, []any) {
	var conds []string
	var args []any
	switch {
	case f.CategoryID == "":
	case !validID(f.CategoryID):
		conds = append(conds, "false")
	default:
		args = append(args, f.CategoryID)
		conds = append(conds, fmt.Sprintf("category_id = $%d", len(args)))
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		args = append(args, "%"+strings.ToLower(s)+"%")
		conds = append(conds, fmt.Sprintf("(lower(brand) LIKE $%d OR lower(model) LIKE $%d)", len(args), len(args)))
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func scanProducts(rows pgx.Rows) ([]*entity.Product, error) {
	defer rows.Close()
	var list []*entity.Product
	for rows.Next() {
		var p entity.Product
		if err := rows.Scan(&p.ID, &p.CategoryID, &p.Brand, &p.Model, &p.Price, &p.StockQuantity,
			&p.MinStockLevel, &p.Supplier, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}
