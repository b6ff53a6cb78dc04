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

var _ repository.CategoryRepository = (*CategoryRepo)(nil)

// CategoryRepo categorías sobre PostgreSQL.
type CategoryRepo struct {
	q Querier
}

// NewCategoryRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCategoryRepository(q Querier) *CategoryRepo {
	return &CategoryRepo{q: q}
}

func (r *CategoryRepo) Create(ctx context.Context, c *entity.Category) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO categories (id, name, slug, created_at) VALUES ($1, $2, $3, $4)`,
		c.ID, c.Name, c.Slug, c.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

func (r *CategoryRepo) GetByID(ctx context.Context, id string) (*entity.Category, error) {
	if !validID(id) {
		return nil, nil
	}
	return r.getOne(ctx, `SELECT id, name, slug, created_at FROM categories WHERE id = $1`, id)
}

func (r *CategoryRepo) FindByName(ctx context.Context, name string) (*entity.Category, error) {
	return r.getOne(ctx, `SELECT id, name, slug, created_at FROM categories WHERE lower(name) = lower($1)`, strings.TrimSpace(name))
}

func (r *CategoryRepo) FindBySlug(ctx context.Context, slug string) (*entity.Category, error) {
	return r.getOne(ctx, `SELECT id, name, slug, created_at FROM categories WHERE slug = $1`, slug)
}

func (r *CategoryRepo) List(ctx context.Context) ([]*entity.Category, error) {
	rows, err := r.q.Query(ctx, `SELECT id, name, slug, created_at FROM categories ORDER BY lower(name)`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()
	var list []*entity.Category
	for rows.Next() {
		var c entity.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		list = append(list, &c)
	}
	return list, rows.Err()
}

func (r *CategoryRepo) getOne(ctx context.Context, query string, args ...any) (*entity.Category, error) {
	var c entity.Category
	if err := r.q.QueryRow(ctx, query, args...).Scan(&c.ID, &c.Name, &c.Slug, &c.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidText(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get category: %w", err)
	}
	return &c, nil
}
