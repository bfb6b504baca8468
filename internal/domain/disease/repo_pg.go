package disease

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

const diseaseCols = `id, name, symptoms, medicines, created_at, updated_at`

func scanDisease(row pgx.Row) (*Disease, error) {
	var d Disease
	err := row.Scan(&d.ID, &d.Name, &d.Symptoms, &d.Medicines, &d.CreatedAt, &d.UpdatedAt)
	return &d, err
}

func (r *repoPG) Create(ctx context.Context, d *Disease) error {
	d.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO disease (id, name, symptoms, medicines)
		VALUES ($1, $2, $3, $4)`,
		d.ID, d.Name, d.Symptoms, d.Medicines)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Disease, error) {
	return scanDisease(r.conn(ctx).QueryRow(ctx,
		`SELECT `+diseaseCols+` FROM disease WHERE id = $1`, id))
}

func (r *repoPG) GetByName(ctx context.Context, name string) (*Disease, error) {
	return scanDisease(r.conn(ctx).QueryRow(ctx,
		`SELECT `+diseaseCols+` FROM disease WHERE LOWER(name) = LOWER($1)`, name))
}

func (r *repoPG) Update(ctx context.Context, d *Disease) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE disease SET name=$2, symptoms=$3, medicines=$4, updated_at=NOW()
		WHERE id = $1`,
		d.ID, d.Name, d.Symptoms, d.Medicines)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM disease WHERE id = $1`, id)
	return err
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Disease, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM disease`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+diseaseCols+` FROM disease ORDER BY name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []*Disease
	for rows.Next() {
		d, err := scanDisease(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, d)
	}
	return result, total, rows.Err()
}

func (r *repoPG) ListAll(ctx context.Context) ([]*Disease, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+diseaseCols+` FROM disease ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*Disease
	for rows.Next() {
		d, err := scanDisease(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, d)
	}
	return result, rows.Err()
}
