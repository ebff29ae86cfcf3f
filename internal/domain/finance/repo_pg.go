package finance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bidancare/clinic/internal/platform/db"
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
	return r.pool
}

const txCols = `id, tx_date, description, category, type, amount, quantity,
	medicine_id, visit_id, created_at, updated_at`

func scanTx(row pgx.Row) (*Transaction, error) {
	var t Transaction
	err := row.Scan(&t.ID, &t.TxDate, &t.Description, &t.Category, &t.Type, &t.Amount, &t.Quantity,
		&t.MedicineID, &t.VisitID, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &t, err
}

func (r *repoPG) Create(ctx context.Context, t *Transaction) error {
	t.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO transactions (id, tx_date, description, category, type, amount, quantity,
			medicine_id, visit_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		t.ID, t.TxDate, t.Description, t.Category, t.Type, t.Amount, t.Quantity,
		t.MedicineID, t.VisitID)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Transaction, error) {
	return scanTx(r.conn(ctx).QueryRow(ctx, `SELECT `+txCols+` FROM transactions WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, t *Transaction) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE transactions SET tx_date=$2, description=$3, category=$4, type=$5,
			amount=$6, quantity=$7, medicine_id=$8, updated_at=NOW()
		WHERE id = $1`,
		t.ID, t.TxDate, t.Description, t.Category, t.Type,
		t.Amount, t.Quantity, t.MedicineID)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM transactions WHERE id = $1`, id)
	return err
}

func (r *repoPG) List(ctx context.Context, filter ListFilter, limit, offset int) ([]*Transaction, int, error) {
	where := ` WHERE 1=1`
	args := []interface{}{}
	n := 0

	add := func(clause string, val interface{}) {
		n++
		where += fmt.Sprintf(clause, n)
		args = append(args, val)
	}

	if filter.Type != "" {
		add(` AND type = $%d`, filter.Type)
	}
	if filter.Category != "" {
		add(` AND category = $%d`, filter.Category)
	}
	if !filter.From.IsZero() {
		add(` AND tx_date >= $%d`, filter.From)
	}
	if !filter.To.IsZero() {
		add(` AND tx_date <= $%d`, filter.To)
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM transactions`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT `+txCols+` FROM transactions`+where+
		` ORDER BY tx_date DESC, created_at DESC LIMIT $%d OFFSET $%d`, n+1, n+2)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Transaction
	for rows.Next() {
		t, err := scanTx(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, t)
	}
	return items, total, rows.Err()
}

func (r *repoPG) Summarize(ctx context.Context, from, to time.Time) (*Summary, error) {
	var s Summary
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE type = 'in'), 0),
			COALESCE(SUM(amount) FILTER (WHERE type = 'out'), 0)
		FROM transactions
		WHERE tx_date >= $1 AND tx_date <= $2`, from, to).Scan(&s.Income, &s.Expense)
	if err != nil {
		return nil, err
	}
	s.Net = s.Income - s.Expense
	return &s, nil
}

func (r *repoPG) GetByVisitCategory(ctx context.Context, visitID uuid.UUID, category string) (*Transaction, error) {
	return scanTx(r.conn(ctx).QueryRow(ctx, `
		SELECT `+txCols+` FROM transactions WHERE visit_id = $1 AND category = $2 LIMIT 1`,
		visitID, category))
}

func (r *repoPG) DeleteByVisit(ctx context.Context, visitID uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM transactions WHERE visit_id = $1`, visitID)
	return err
}
