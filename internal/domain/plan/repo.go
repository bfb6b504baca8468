package plan

import "context"

type Repository interface {
	Create(ctx context.Context, p *Plan) error
	GetByKey(ctx context.Context, key string) (*Plan, error)
	Update(ctx context.Context, p *Plan) error
	List(ctx context.Context) ([]*Plan, error)
}
