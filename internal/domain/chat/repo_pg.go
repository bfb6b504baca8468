package chat

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

// =========== Session Repository ===========

type sessionRepoPG struct{ pool *pgxpool.Pool }

func NewSessionRepoPG(pool *pgxpool.Pool) SessionRepository {
	return &sessionRepoPG{pool: pool}
}

func (r *sessionRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const sessionCols = `id, user_id, symptoms, awaiting_symptoms, bot_response_count, created_at, updated_at`

func scanSession(row pgx.Row) (*Session, error) {
	var s Session
	err := row.Scan(&s.ID, &s.UserID, &s.Symptoms, &s.AwaitingSymptoms,
		&s.BotResponseCount, &s.CreatedAt, &s.UpdatedAt)
	return &s, err
}

func (r *sessionRepoPG) Create(ctx context.Context, s *Session) error {
	s.ID = uuid.New()
	if s.Symptoms == nil {
		s.Symptoms = []string{}
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO chat_session (id, user_id, symptoms, awaiting_symptoms, bot_response_count)
		VALUES ($1, $2, $3, $4, $5)`,
		s.ID, s.UserID, s.Symptoms, s.AwaitingSymptoms, s.BotResponseCount)
	return err
}

func (r *sessionRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Session, error) {
	return scanSession(r.conn(ctx).QueryRow(ctx,
		`SELECT `+sessionCols+` FROM chat_session WHERE id = $1`, id))
}

func (r *sessionRepoPG) LatestByUser(ctx context.Context, userID uuid.UUID) (*Session, error) {
	return scanSession(r.conn(ctx).QueryRow(ctx,
		`SELECT `+sessionCols+` FROM chat_session WHERE user_id = $1
		 ORDER BY updated_at DESC LIMIT 1`, userID))
}

func (r *sessionRepoPG) Update(ctx context.Context, s *Session) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE chat_session SET symptoms=$2, awaiting_symptoms=$3,
			bot_response_count=$4, updated_at=NOW()
		WHERE id = $1`,
		s.ID, s.Symptoms, s.AwaitingSymptoms, s.BotResponseCount)
	return err
}

// =========== Message Repository ===========

type messageRepoPG struct{ pool *pgxpool.Pool }

func NewMessageRepoPG(pool *pgxpool.Pool) MessageRepository {
	return &messageRepoPG{pool: pool}
}

func (r *messageRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

func (r *messageRepoPG) Create(ctx context.Context, m *Message) error {
	m.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO chat_message (id, session_id, message_type, content, disease, medicines)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		m.ID, m.SessionID, m.Type, m.Content, m.Disease, m.Medicines)
	return err
}

func (r *messageRepoPG) ListBySession(ctx context.Context, sessionID uuid.UUID, limit, offset int) ([]*Message, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM chat_message WHERE session_id = $1`, sessionID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, session_id, message_type, content, disease, medicines, created_at
		FROM chat_message WHERE session_id = $1
		ORDER BY created_at LIMIT $2 OFFSET $3`,
		sessionID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []*Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Type, &m.Content,
			&m.Disease, &m.Medicines, &m.CreatedAt); err != nil {
			return nil, 0, err
		}
		result = append(result, &m)
	}
	return result, total, rows.Err()
}
