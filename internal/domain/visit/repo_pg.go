package visit

import (
	"context"
	"errors"
	"fmt"

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

const recordCols = `id, patient_id, visit_date, patient_name, patient_address, patient_age,
	weight, blood_pressure, heart_rate, temperature, oxygen_saturation,
	diagnosis, action, therapy, staff_name, risk_level,
	service_fee, medicine_cost, total_price,
	anc, gravida_code, usg_type, leopold1, leopold2, leopold3, leopold4, fetal_heart_rate,
	created_at, updated_at`

func scanRecord(row pgx.Row) (*MedicalRecord, error) {
	var rec MedicalRecord
	err := row.Scan(&rec.ID, &rec.PatientID, &rec.VisitDate, &rec.PatientName, &rec.PatientAddress,
		&rec.PatientAge, &rec.Weight, &rec.BloodPressure, &rec.HeartRate, &rec.Temperature,
		&rec.OxygenSaturation, &rec.Diagnosis, &rec.Action, &rec.Therapy, &rec.StaffName,
		&rec.RiskLevel, &rec.ServiceFee, &rec.MedicineCost, &rec.TotalPrice,
		&rec.ANC, &rec.GravidaCode, &rec.USGType, &rec.Leopold1, &rec.Leopold2, &rec.Leopold3,
		&rec.Leopold4, &rec.FetalHeartRate, &rec.CreatedAt, &rec.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &rec, err
}

func (r *repoPG) CreateRecord(ctx context.Context, rec *MedicalRecord) error {
	rec.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO medical_records (id, patient_id, visit_date, patient_name, patient_address,
			patient_age, weight, blood_pressure, heart_rate, temperature, oxygen_saturation,
			diagnosis, action, therapy, staff_name, risk_level,
			service_fee, medicine_cost, total_price,
			anc, gravida_code, usg_type, leopold1, leopold2, leopold3, leopold4, fetal_heart_rate)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,
			$20,$21,$22,$23,$24,$25,$26,$27)`,
		rec.ID, rec.PatientID, rec.VisitDate, rec.PatientName, rec.PatientAddress,
		rec.PatientAge, rec.Weight, rec.BloodPressure, rec.HeartRate, rec.Temperature,
		rec.OxygenSaturation, rec.Diagnosis, rec.Action, rec.Therapy, rec.StaffName,
		rec.RiskLevel, rec.ServiceFee, rec.MedicineCost, rec.TotalPrice,
		rec.ANC, rec.GravidaCode, rec.USGType, rec.Leopold1, rec.Leopold2, rec.Leopold3,
		rec.Leopold4, rec.FetalHeartRate)
	return err
}

func (r *repoPG) GetRecord(ctx context.Context, id uuid.UUID) (*MedicalRecord, error) {
	return scanRecord(r.conn(ctx).QueryRow(ctx,
		`SELECT `+recordCols+` FROM medical_records WHERE id = $1`, id))
}

func (r *repoPG) UpdateRecord(ctx context.Context, rec *MedicalRecord) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE medical_records SET patient_id=$2, visit_date=$3, patient_name=$4,
			patient_address=$5, patient_age=$6, weight=$7, blood_pressure=$8, heart_rate=$9,
			temperature=$10, oxygen_saturation=$11, diagnosis=$12, action=$13, therapy=$14,
			staff_name=$15, risk_level=$16, service_fee=$17, medicine_cost=$18, total_price=$19,
			anc=$20, gravida_code=$21, usg_type=$22, leopold1=$23, leopold2=$24, leopold3=$25,
			leopold4=$26, fetal_heart_rate=$27, updated_at=NOW()
		WHERE id = $1`,
		rec.ID, rec.PatientID, rec.VisitDate, rec.PatientName, rec.PatientAddress,
		rec.PatientAge, rec.Weight, rec.BloodPressure, rec.HeartRate, rec.Temperature,
		rec.OxygenSaturation, rec.Diagnosis, rec.Action, rec.Therapy, rec.StaffName,
		rec.RiskLevel, rec.ServiceFee, rec.MedicineCost, rec.TotalPrice,
		rec.ANC, rec.GravidaCode, rec.USGType, rec.Leopold1, rec.Leopold2, rec.Leopold3,
		rec.Leopold4, rec.FetalHeartRate)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) DeleteRecord(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM medical_records WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) ListRecords(ctx context.Context, filter ListFilter, limit, offset int) ([]*MedicalRecord, int, error) {
	where := ` WHERE 1=1`
	args := []interface{}{}
	add := func(clause string, v interface{}) {
		args = append(args, v)
		where += fmt.Sprintf(clause, len(args))
	}
	if filter.PatientID != uuid.Nil {
		add(` AND patient_id = $%d`, filter.PatientID)
	}
	if !filter.From.IsZero() {
		add(` AND visit_date >= $%d`, filter.From)
	}
	if !filter.To.IsZero() {
		add(` AND visit_date <= $%d`, filter.To)
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		where += fmt.Sprintf(` AND (patient_name ILIKE $%d OR diagnosis ILIKE $%d)`,
			len(args), len(args))
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM medical_records`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+recordCols+` FROM medical_records`+where+
			fmt.Sprintf(` ORDER BY visit_date DESC, created_at DESC LIMIT $%d OFFSET $%d`,
				len(args)-1, len(args)),
		args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var records []*MedicalRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, 0, err
		}
		records = append(records, rec)
	}
	return records, total, rows.Err()
}

func (r *repoPG) CountByPatient(ctx context.Context, patientID uuid.UUID) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM medical_records WHERE patient_id = $1`, patientID).Scan(&n)
	return n, err
}

func (r *repoPG) CreateItem(ctx context.Context, item *Item) error {
	item.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO visit_items (id, visit_id, medicine_id, name, qty, price_at_sale, subtotal)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		item.ID, item.VisitID, item.MedicineID, item.Name, item.Quantity, item.PriceAtSale,
		item.Subtotal)
	return err
}

func (r *repoPG) ListItemsByVisit(ctx context.Context, visitID uuid.UUID) ([]*Item, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, visit_id, medicine_id, name, qty, price_at_sale, subtotal
		FROM visit_items WHERE visit_id = $1 ORDER BY name`, visitID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.VisitID, &it.MedicineID, &it.Name, &it.Quantity,
			&it.PriceAtSale, &it.Subtotal); err != nil {
			return nil, err
		}
		items = append(items, &it)
	}
	return items, rows.Err()
}

func (r *repoPG) DeleteItemsByVisit(ctx context.Context, visitID uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM visit_items WHERE visit_id = $1`, visitID)
	return err
}
