package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/suministros-api/internal/application/dto"
	"github.com/jhoicas/suministros-api/internal/domain"
	"github.com/jhoicas/suministros-api/internal/domain/catalog"
	"github.com/jhoicas/suministros-api/internal/domain/entity"
	"github.com/jhoicas/suministros-api/internal/domain/repository"
)

// CategoryUseCase alta y listado de categorías.
type CategoryUseCase struct {
	repo repository.CategoryRepository
}

// NewCategoryUseCase construye el caso de uso.
func NewCategoryUseCase(repo repository.CategoryRepository) *CategoryUseCase {
	return &CategoryUseCase{repo: repo}
}

// Create crea una categoría con slug único. El nombre no puede repetirse (sin distinguir mayúsculas).
func (uc *CategoryUseCase) Create(ctx context.Context, in dto.CreateCategoryRequest) (*dto.CategoryResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.Invalid("name", "requerido")
	}
	existing, err := uc.repo.FindByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}

	var lookupErr error
	slug := catalog.UniqueSlug(name, func(s string) bool {
		c, err := uc.repo.FindBySlug(ctx, s)
		if err != nil {
			lookupErr = err
			return false
		}
		return c != nil
	})
	if lookupErr != nil {
		return nil, lookupErr
	}

	c := &entity.Category{ID: uuid.New().String(), Name: name, Slug: slug, CreatedAt: time.Now()}
	if err := uc.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return toCategoryResponse(c), nil
}

// List todas las categorías por nombre.
func (uc *CategoryUseCase) List(ctx context.Context) ([]dto.CategoryResponse, error) {
	list, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CategoryResponse, 0, len(list))
	for _, c := range list {
		out = append(out, *toCategoryResponse(c))
	}
	return out, nil
}

func toCategoryResponse(c *entity.Category) *dto.CategoryResponse {
	return &dto.CategoryResponse{ID: c.ID, Name: c.Name, Slug: c.Slug, CreatedAt: c.CreatedAt}
}
