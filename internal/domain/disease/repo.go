package disease

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, d *Disease) error
	GetByID(ctx context.Context, id uuid.UUID) (*Disease, error)
	GetByName(ctx context.Context, name string) (*Disease, error)
	Update(ctx context.Context, d *Disease) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*Disease, int, error)
	// ListAll returns the entire corpus, used to build the symptom matcher.
	ListAll(ctx context.Context) ([]*Disease, error)
}
