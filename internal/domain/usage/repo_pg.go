package usage

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medibot/medibot/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

func (r *repoPG) Get(ctx context.Context, userID uuid.UUID, date string) (*DailyUsage, error) {
	var u DailyUsage
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT id, user_id, date, chat_count, created_at, updated_at
		FROM daily_usage WHERE user_id = $1 AND date = $2`,
		userID, date).
		Scan(&u.ID, &u.UserID, &u.Date, &u.ChatCount, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *repoPG) Increment(ctx context.Context, userID uuid.UUID, date string) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO daily_usage (id, user_id, date, chat_count)
		VALUES ($1, $2, $3, 1)
		ON CONFLICT (user_id, date)
		DO UPDATE SET chat_count = daily_usage.chat_count + 1, updated_at = NOW()`,
		uuid.New(), userID, date)
	return err
}
