package repository

import (
	"context"

	"github.com/jhoicas/suministros-api/internal/domain/entity"
)

// UserRepository puerto de persistencia para User.
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	Count(ctx context.Context) (int, error)
}
