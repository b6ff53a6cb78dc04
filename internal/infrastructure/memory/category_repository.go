package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/jhoicas/suministros-api/internal/domain"
	"github.com/jhoicas/suministros-api/internal/domain/entity"
	"github.com/jhoicas/suministros-api/internal/domain/repository"
)

var _ repository.CategoryRepository = (*CategoryRepo)(nil)

// CategoryRepo categorías en memoria.
type CategoryRepo struct {
	db backend
}

func newCategoryRepo(db backend) *CategoryRepo { return &CategoryRepo{db: db} }

func (r *CategoryRepo) Create(_ context.Context, c *entity.Category) error {
	return r.db.write(func(st *state) error {
		for _, other := range st.categories {
			if other.ID == c.ID || other.Slug == c.Slug || strings.EqualFold(other.Name, c.Name) {
				return domain.ErrDuplicate
			}
		}
		st.categories[c.ID] = *c
		return nil
	})
}

func (r *CategoryRepo) GetByID(_ context.Context, id string) (*entity.Category, error) {
	return r.find(func(c entity.Category) bool { return c.ID == id })
}

func (r *CategoryRepo) FindByName(_ context.Context, name string) (*entity.Category, error) {
	name = strings.TrimSpace(name)
	return r.find(func(c entity.Category) bool { return strings.EqualFold(c.Name, name) })
}

func (r *CategoryRepo) FindBySlug(_ context.Context, slug string) (*entity.Category, error) {
	return r.find(func(c entity.Category) bool { return c.Slug == slug })
}

func (r *CategoryRepo) List(_ context.Context) ([]*entity.Category, error) {
	var list []*entity.Category
	err := r.db.read(func(st *state) error {
		for _, c := range st.categories {
			c := c
			list = append(list, &c)
		}
		return nil
	})
	sort.Slice(list, func(i, j int) bool { return strings.ToLower(list[i].Name) < strings.ToLower(list[j].Name) })
	return list, err
}

func (r *CategoryRepo) find(match func(entity.Category) bool) (*entity.Category, error) {
	var out *entity.Category
	err := r.db.read(func(st *state) error {
		for _, c := range st.categories {
			if match(c) {
				out = &c
				return nil
			}
		}
		return nil
	})
	return out, err
}
