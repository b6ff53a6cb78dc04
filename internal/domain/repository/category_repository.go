package repository

import (
	"context"

	"github.com/jhoicas/suministros-api/internal/domain/entity"
)

// CategoryRepository puerto de persistencia para Category.
type CategoryRepository interface {
	Create(ctx context.Context, category *entity.Category) error
	GetByID(ctx context.Context, id string) (*entity.Category, error)
	// FindByName busca sin distinguir mayúsculas.
	FindByName(ctx context.Context, name string) (*entity.Category, error)
	FindBySlug(ctx context.Context, slug string) (*entity.Category, error)
	List(ctx context.Context) ([]*entity.Category, error)
}
