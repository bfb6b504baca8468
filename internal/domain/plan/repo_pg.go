package plan

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

const planCols = `id, plan_key, name, price, max_chats_per_day, max_bot_responses_per_chat,
	medicine_images, chat_history, voice_chat, available_languages, layout, features,
	created_at, updated_at`

func scanPlan(row pgx.Row) (*Plan, error) {
	var p Plan
	err := row.Scan(&p.ID, &p.Key, &p.Name, &p.Price, &p.MaxChatsPerDay, &p.MaxBotResponsesPerChat,
		&p.MedicineImages, &p.ChatHistory, &p.VoiceChat, &p.AvailableLanguages, &p.Layout, &p.Features,
		&p.CreatedAt, &p.UpdatedAt)
	return &p, err
}

func (r *repoPG) Create(ctx context.Context, p *Plan) error {
	p.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO subscription_plan (id, plan_key, name, price, max_chats_per_day,
			max_bot_responses_per_chat, medicine_images, chat_history, voice_chat,
			available_languages, layout, features)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		p.ID, p.Key, p.Name, p.Price, p.MaxChatsPerDay,
		p.MaxBotResponsesPerChat, p.MedicineImages, p.ChatHistory, p.VoiceChat,
		p.AvailableLanguages, p.Layout, p.Features)
	return err
}

func (r *repoPG) GetByKey(ctx context.Context, key string) (*Plan, error) {
	return scanPlan(r.conn(ctx).QueryRow(ctx,
		`SELECT `+planCols+` FROM subscription_plan WHERE plan_key = $1`, key))
}

func (r *repoPG) Update(ctx context.Context, p *Plan) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE subscription_plan SET name=$2, price=$3, max_chats_per_day=$4,
			max_bot_responses_per_chat=$5, medicine_images=$6, chat_history=$7,
			voice_chat=$8, available_languages=$9, layout=$10, features=$11,
			updated_at=NOW()
		WHERE plan_key = $1`,
		p.Key, p.Name, p.Price, p.MaxChatsPerDay,
		p.MaxBotResponsesPerChat, p.MedicineImages, p.ChatHistory,
		p.VoiceChat, p.AvailableLanguages, p.Layout, p.Features)
	return err
}

func (r *repoPG) List(ctx context.Context) ([]*Plan, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+planCols+` FROM subscription_plan ORDER BY price`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*Plan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}
