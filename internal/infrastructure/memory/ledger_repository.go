package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/suministros-api/internal/domain"
	"github.com/jhoicas/suministros-api/internal/domain/entity"
	"github.com/jhoicas/suministros-api/internal/domain/repository"
)

var _ repository.LedgerRepository = (*LedgerRepo)(nil)

// LedgerRepo registros del libro en memoria.
type LedgerRepo struct {
	db backend
}

func newLedgerRepo(db backend) *LedgerRepo { return &LedgerRepo{db: db} }

func (r *LedgerRepo) Create(_ context.Context, e *entity.LedgerEntry) error {
	return r.db.write(func(st *state) error {
		if _, ok := st.entries[e.ID]; ok {
			return domain.ErrDuplicate
		}
		if _, ok := st.products[e.ProductID]; !ok {
			return domain.ErrNotFound
		}
		st.entries[e.ID] = *e
		return nil
	})
}

func (r *LedgerRepo) GetByID(_ context.Context, id string) (*entity.LedgerEntry, error) {
	var out *entity.LedgerEntry
	err := r.db.read(func(st *state) error {
		if e, ok := st.entries[id]; ok {
			out = &e
		}
		return nil
	})
	return out, err
}

func (r *LedgerRepo) GetForUpdate(ctx context.Context, id string) (*entity.LedgerEntry, error) {
	return r.GetByID(ctx, id)
}

func (r *LedgerRepo) Update(_ context.Context, e *entity.LedgerEntry) error {
	return r.db.write(func(st *state) error {
		if _, ok := st.entries[e.ID]; !ok {
			return domain.ErrNotFound
		}
		st.entries[e.ID] = *e
		return nil
	})
}

func (r *LedgerRepo) Delete(_ context.Context, id string) error {
	return r.db.write(func(st *state) error {
		delete(st.entries, id)
		return nil
	})
}

func (r *LedgerRepo) DeleteByProduct(_ context.Context, productID string) (int64, error) {
	var n int64
	err := r.db.write(func(st *state) error {
		for id, e := range st.entries {
			if e.ProductID == productID {
				delete(st.entries, id)
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r *LedgerRepo) List(_ context.Context, f repository.EntryFilter) ([]*entity.LedgerEntryView, error) {
	var list []*entity.LedgerEntryView
	err := r.db.read(func(st *state) error {
		list = filterEntries(st, f)
		return nil
	})
	return paginate(list, f.Limit, f.Offset), err
}

func (r *LedgerRepo) Count(_ context.Context, f repository.EntryFilter) (int, error) {
	var n int
	err := r.db.read(func(st *state) error {
		n = len(filterEntries(st, f))
		return nil
	})
	return n, err
}

func filterEntries(st *state, f repository.EntryFilter) []*entity.LedgerEntryView {
	var list []*entity.LedgerEntryView
	for _, e := range st.entries {
		if !matchEntry(e, f) {
			continue
		}
		v := &entity.LedgerEntryView{LedgerEntry: e}
		if p, ok := st.products[e.ProductID]; ok {
			v.Brand, v.Model = p.Brand, p.Model
			if c, ok := st.categories[p.CategoryID]; ok {
				v.CategoryName = c.Name
			}
		}
		list = append(list, v)
	}
	sort.Slice(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.After(b.Date)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	return list
}

func matchEntry(e entity.LedgerEntry, f repository.EntryFilter) bool {
	switch {
	case f.Type != "" && e.Type != f.Type:
		return false
	case f.ProductID != "" && e.ProductID != f.ProductID:
		return false
	case f.Department != "" && e.Department != f.Department:
		return false
	case f.From != nil && e.Date.Before(*f.From):
		return false
	case f.To != nil && e.Date.After(*f.To):
		return false
	}
	return true
}
