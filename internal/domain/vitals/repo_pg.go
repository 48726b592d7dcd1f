package vitals

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SwapnilGotsurve/health-care-system-sub000/internal/domain/identity"
	"github.com/SwapnilGotsurve/health-care-system-sub000/internal/platform/db"
)

type querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

type recordRepoPG struct {
	pool *pgxpool.Pool
}

func NewRecordRepoPG(pool *pgxpool.Pool) RecordRepository {
	return &recordRepoPG{pool: pool}
}

func (r *recordRepoPG) conn(ctx context.Context) querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const recordCols = `id, patient_id, systolic, diastolic, sugar, heart_rate, created_at, seq`

func (r *recordRepoPG) Create(ctx context.Context, rec *HealthRecord) error {
	rec.ID = uuid.New()
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO health_record (id, patient_id, systolic, diastolic, sugar, heart_rate, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING seq`,
		rec.ID, rec.PatientID, rec.Systolic, rec.Diastolic, rec.Sugar, rec.HeartRate, rec.CreatedAt,
	).Scan(&rec.Seq)
	if db.IsForeignKeyViolation(err) {
		return identity.ErrUnknownAccount
	}
	if err != nil {
		return fmt.Errorf("health record create: %w", err)
	}
	return nil
}

func (r *recordRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*HealthRecord, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM health_record WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+recordCols+` FROM health_record
		WHERE patient_id = $1
		ORDER BY created_at DESC, seq DESC
		LIMIT $2 OFFSET $3`, patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	records, err := collectRecords(rows)
	return records, total, err
}

func (r *recordRepoPG) ListByPatientAfter(ctx context.Context, patientID uuid.UUID, after Cursor, limit int) ([]*HealthRecord, error) {
	var rows pgx.Rows
	var err error
	if after.IsZero() {
		rows, err = r.conn(ctx).Query(ctx, `SELECT `+recordCols+` FROM health_record
			WHERE patient_id = $1
			ORDER BY created_at DESC, seq DESC
			LIMIT $2`, patientID, limit)
	} else {
		rows, err = r.conn(ctx).Query(ctx, `SELECT `+recordCols+` FROM health_record
			WHERE patient_id = $1 AND (created_at, seq) < ($2, $3)
			ORDER BY created_at DESC, seq DESC
			LIMIT $4`, patientID, after.CreatedAt, after.Seq, limit)
	}
	if err != nil {
		return nil, err
	}
	return collectRecords(rows)
}

func (r *recordRepoPG) Count(ctx context.Context) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM health_record`).Scan(&n)
	return n, err
}

func collectRecords(rows pgx.Rows) ([]*HealthRecord, error) {
	defer rows.Close()
	var out []*HealthRecord
	for rows.Next() {
		var rec HealthRecord
		if err := rows.Scan(&rec.ID, &rec.PatientID, &rec.Systolic, &rec.Diastolic,
			&rec.Sugar, &rec.HeartRate, &rec.CreatedAt, &rec.Seq); err != nil {
			return nil, err
		}
		out = append(out, &rec)
	}
	return out, rows.Err()
}
