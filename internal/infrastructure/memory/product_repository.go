package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/jhoicas/suministros-api/internal/domain"
	"github.com/jhoicas/suministros-api/internal/domain/entity"
	"github.com/jhoicas/suministros-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo productos en memoria.
type ProductRepo struct {
	db backend
}

func newProductRepo(db backend) *ProductRepo { return &ProductRepo{db: db} }

func (r *ProductRepo) Create(_ context.Context, p *entity.Product) error {
	return r.db.write(func(st *state) error {
		if _, ok := st.products[p.ID]; ok {
			return domain.ErrDuplicate
		}
		key := entity.LookupKey(p.Brand, p.Model)
		for _, other := range st.products {
			if entity.LookupKey(other.Brand, other.Model) == key {
				return domain.ErrDuplicate
			}
		}
		st.products[p.ID] = *p
		return nil
	})
}

func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	var out *entity.Product
	err := r.db.read(func(st *state) error {
		if p, ok := st.products[id]; ok {
			out = &p
		}
		return nil
	})
	return out, err
}

// GetForUpdate igual que GetByID: las transacciones en memoria ya son exclusivas.
func (r *ProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.GetByID(ctx, id)
}

func (r *ProductRepo) FindByBrandModel(_ context.Context, brand, model string) (*entity.Product, error) {
	key := entity.LookupKey(brand, model)
	var out *entity.Product
	err := r.db.read(func(st *state) error {
		for _, p := range st.products {
			if entity.LookupKey(p.Brand, p.Model) == key {
				out = &p
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *ProductRepo) List(_ context.Context, f repository.ProductFilter) ([]*entity.Product, error) {
	var list []*entity.Product
	err := r.db.read(func(st *state) error {
		list = filterProducts(st, f)
		return nil
	})
	return paginate(list, f.Limit, f.Offset), err
}

func (r *ProductRepo) Count(_ context.Context, f repository.ProductFilter) (int, error) {
	var n int
	err := r.db.read(func(st *state) error {
		n = len(filterProducts(st, f))
		return nil
	})
	return n, err
}

func (r *ProductRepo) Update(_ context.Context, p *entity.Product) error {
	return r.db.write(func(st *state) error {
		cur, ok := st.products[p.ID]
		if !ok {
			return domain.ErrNotFound
		}
		key := entity.LookupKey(p.Brand, p.Model)
		for id, other := range st.products {
			if id != p.ID && entity.LookupKey(other.Brand, other.Model) == key {
				return domain.ErrDuplicate
			}
		}
		cur.CategoryID = p.CategoryID
		cur.Brand = p.Brand
		cur.Model = p.Model
		cur.Price = p.Price
		cur.MinStockLevel = p.MinStockLevel
		cur.Supplier = p.Supplier
		cur.UpdatedAt = p.UpdatedAt
		st.products[p.ID] = cur
		return nil
	})
}

func (r *ProductRepo) AdjustStock(_ context.Context, id string, delta int64) error {
	return r.db.write(func(st *state) error {
		p, ok := st.products[id]
		if !ok {
			return domain.ErrNotFound
		}
		p.StockQuantity += delta
		st.products[id] = p
		return nil
	})
}

func (r *ProductRepo) Delete(_ context.Context, id string) error {
	return r.db.write(func(st *state) error {
		delete(st.products, id)
		return nil
	})
}

func (r *ProductRepo) ListLowStock(_ context.Context, limit int) ([]*entity.Product, error) {
	var list []*entity.Product
	err := r.db.read(func(st *state) error {
		for _, p := range st.products {
			p := p
			if p.IsLowStock() {
				list = append(list, &p)
			}
		}
		return nil
	})
	sort.Slice(list, func(i, j int) bool {
		if list[i].StockQuantity != list[j].StockQuantity {
			return list[i].StockQuantity < list[j].StockQuantity
		}
		return list[i].Model < list[j].Model
	})
	return paginate(list, limit, 0), err
}

func filterProducts(st *state, f repository.ProductFilter) []*entity.Product {
	search := strings.ToLower(strings.TrimSpace(f.Search))
	var list []*entity.Product
	for _, p := range st.products {
		p := p
		if f.CategoryID != "" && p.CategoryID != f.CategoryID {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Brand), search) &&
			!strings.Contains(strings.ToLower(p.Model), search) {
			continue
		}
		list = append(list, &p)
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		return list[i].ID < list[j].ID
	})
	return list
}

func paginate[T any](list []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(list) {
			return nil
		}
		list = list[offset:]
	}
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}
