package careteam

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

type assignmentRepoPG struct {
	pool *pgxpool.Pool
}

func NewAssignmentRepoPG(pool *pgxpool.Pool) AssignmentRepository {
	return &assignmentRepoPG{pool: pool}
}

func (r *assignmentRepoPG) conn(ctx context.Context) querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *assignmentRepoPG) Create(ctx context.Context, a *Assignment) error {
	_, err := r.conn(ctx).Exec(ctx,
		`INSERT INTO assignment (doctor_id, patient_id, created_at) VALUES ($1, $2, $3)`,
		a.DoctorID, a.PatientID, a.CreatedAt)
	switch {
	case db.IsUniqueViolation(err):
		return ErrDuplicateAssignment
	case db.IsForeignKeyViolation(err):
		return identity.ErrUnknownAccount
	case err != nil:
		return fmt.Errorf("assignment create: %w", err)
	}
	return nil
}

func (r *assignmentRepoPG) Delete(ctx context.Context, doctorID, patientID uuid.UUID) (bool, error) {
	tag, err := r.conn(ctx).Exec(ctx,
		`DELETE FROM assignment WHERE doctor_id = $1 AND patient_id = $2`, doctorID, patientID)
	if err != nil {
		return false, fmt.Errorf("assignment delete: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *assignmentRepoPG) Exists(ctx context.Context, doctorID, patientID uuid.UUID) (bool, error) {
	var ok bool
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM assignment WHERE doctor_id = $1 AND patient_id = $2)`,
		doctorID, patientID).Scan(&ok)
	return ok, err
}

func (r *assignmentRepoPG) ListPatients(ctx context.Context, doctorID uuid.UUID) ([]*PatientSummary, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT p.id, p.name, p.email, asg.created_at, COUNT(hr.id), MAX(hr.created_at)
		FROM assignment asg
		JOIN account p ON p.id = asg.patient_id
		LEFT JOIN health_record hr ON hr.patient_id = asg.patient_id
		WHERE asg.doctor_id = $1
		GROUP BY p.id, p.name, p.email, asg.created_at
		ORDER BY p.name, p.id`, doctorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*PatientSummary
	for rows.Next() {
		var ps PatientSummary
		if err := rows.Scan(&ps.PatientID, &ps.Name, &ps.Email, &ps.AssignedAt, &ps.RecordCount, &ps.LastRecordAt); err != nil {
			return nil, err
		}
		out = append(out, &ps)
	}
	return out, rows.Err()
}

func (r *assignmentRepoPG) ListDoctors(ctx context.Context, patientID uuid.UUID) ([]*DoctorSummary, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT d.id, d.name, d.email, asg.created_at
		FROM assignment asg
		JOIN account d ON d.id = asg.doctor_id
		WHERE asg.patient_id = $1
		ORDER BY d.name, d.id`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*DoctorSummary
	for rows.Next() {
		var ds DoctorSummary
		if err := rows.Scan(&ds.DoctorID, &ds.Name, &ds.Email, &ds.AssignedAt); err != nil {
			return nil, err
		}
		out = append(out, &ds)
	}
	return out, rows.Err()
}

func (r *assignmentRepoPG) Count(ctx context.Context) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM assignment`).Scan(&n)
	return n, err
}
