package patient

import (
	"context"
	"errors"
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

const patientCols = `id, nik, name, birth_date, gender, phone, address,
	patient_type, husband_name, lmp_date, created_at, updated_at`

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.NIK, &p.Name, &p.BirthDate, &p.Gender, &p.Phone, &p.Address,
		&p.PatientType, &p.HusbandName, &p.LMPDate, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &p, err
}

func (r *repoPG) Create(ctx context.Context, p *Patient) error {
	p.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO patients (id, nik, name, birth_date, gender, phone, address,
			patient_type, husband_name, lmp_date)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		p.ID, p.NIK, p.Name, p.BirthDate, p.Gender, p.Phone, p.Address,
		p.PatientType, p.HusbandName, p.LMPDate)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return scanPatient(r.conn(ctx).QueryRow(ctx, `SELECT `+patientCols+` FROM patients WHERE id = $1`, id))
}

func (r *repoPG) GetByNIK(ctx context.Context, nik string) (*Patient, error) {
	return scanPatient(r.conn(ctx).QueryRow(ctx, `SELECT `+patientCols+` FROM patients WHERE nik = $1`, nik))
}

func (r *repoPG) Update(ctx context.Context, p *Patient) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE patients SET nik=$2, name=$3, birth_date=$4, gender=$5, phone=$6,
			address=$7, patient_type=$8, husband_name=$9, lmp_date=$10, updated_at=NOW()
		WHERE id = $1`,
		p.ID, p.NIK, p.Name, p.BirthDate, p.Gender, p.Phone,
		p.Address, p.PatientType, p.HusbandName, p.LMPDate)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM patients WHERE id = $1`, id)
	return err
}

func (r *repoPG) List(ctx context.Context, search string, limit, offset int) ([]*Patient, int, error) {
	var (
		total int
		rows  pgx.Rows
		err   error
	)
	if search != "" {
		pattern := "%" + search + "%"
		if err = r.conn(ctx).QueryRow(ctx,
			`SELECT COUNT(*) FROM patients WHERE name ILIKE $1 OR nik ILIKE $1 OR phone ILIKE $1`,
			pattern).Scan(&total); err != nil {
			return nil, 0, err
		}
		rows, err = r.conn(ctx).Query(ctx, `
			SELECT `+patientCols+` FROM patients
			WHERE name ILIKE $1 OR nik ILIKE $1 OR phone ILIKE $1
			ORDER BY name ASC LIMIT $2 OFFSET $3`, pattern, limit, offset)
	} else {
		if err = r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM patients`).Scan(&total); err != nil {
			return nil, 0, err
		}
		rows, err = r.conn(ctx).Query(ctx, `
			SELECT `+patientCols+` FROM patients ORDER BY name ASC LIMIT $1 OFFSET $2`, limit, offset)
	}
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, rows.Err()
}

func (r *repoPG) FindByNameAddress(ctx context.Context, name, address string) (*Patient, error) {
	return scanPatient(r.conn(ctx).QueryRow(ctx, `
		SELECT `+patientCols+` FROM patients
		WHERE UPPER(name) = UPPER($1) AND COALESCE(UPPER(address), '') = UPPER($2)
		LIMIT 1`, name, address))
}

func (r *repoPG) UpsertObstetric(ctx context.Context, id uuid.UUID, lmpDate *time.Time, husbandName *string) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE patients SET
			lmp_date = COALESCE($2, lmp_date),
			husband_name = COALESCE($3, husband_name),
			updated_at = NOW()
		WHERE id = $1`, id, lmpDate, husbandName)
	return err
}

func (r *repoPG) ListExpectant(ctx context.Context) ([]*Patient, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+patientCols+` FROM patients WHERE lmp_date IS NOT NULL ORDER BY lmp_date ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}
