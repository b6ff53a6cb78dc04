package memory

import (
	"context"
	"strings"

	"github.com/jhoicas/suministros-api/internal/domain"
	"github.com/jhoicas/suministros-api/internal/domain/entity"
	"github.com/jhoicas/suministros-api/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

// UserRepo usuarios en memoria.
type UserRepo struct {
	db backend
}

func (r *UserRepo) Create(_ context.Context, u *entity.User) error {
	return r.db.write(func(st *state) error {
		for _, other := range st.users {
			if strings.EqualFold(other.Email, u.Email) {
				return domain.ErrEmailAlreadyExists
			}
		}
		st.users[u.ID] = *u
		return nil
	})
}

func (r *UserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	var out *entity.User
	err := r.db.read(func(st *state) error {
		if u, ok := st.users[id]; ok {
			out = &u
		}
		return nil
	})
	return out, err
}

func (r *UserRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	var out *entity.User
	err := r.db.read(func(st *state) error {
		for _, u := range st.users {
			if strings.EqualFold(u.Email, email) {
				out = &u
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *UserRepo) Count(_ context.Context) (int, error) {
	var n int
	err := r.db.read(func(st *state) error {
		n = len(st.users)
		return nil
	})
	return n, err
}
