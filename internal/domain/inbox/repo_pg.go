package inbox

import (
	"context"
	"fmt"
	"strings"
	"time"

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

type alertRepoPG struct {
	pool *pgxpool.Pool
}

func NewAlertRepoPG(pool *pgxpool.Pool) AlertRepository {
	return &alertRepoPG{pool: pool}
}

func (r *alertRepoPG) conn(ctx context.Context) querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const alertCols = `al.id, al.doctor_id, al.patient_id, al.message, al.state, al.created_at, al.seen_at, al.seq`

func (r *alertRepoPG) Create(ctx context.Context, a *Alert) error {
	a.ID = uuid.New()
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO alert (id, doctor_id, patient_id, message, state, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING seq`,
		a.ID, a.DoctorID, a.PatientID, a.Message, a.State, a.CreatedAt,
	).Scan(&a.Seq)
	if db.IsForeignKeyViolation(err) {
		return identity.ErrUnknownAccount
	}
	if err != nil {
		return fmt.Errorf("alert create: %w", err)
	}
	return nil
}

func (r *alertRepoPG) ListBySender(ctx context.Context, q SenderQuery) ([]*Alert, error) {
	conds := []string{"al.doctor_id = $1"}
	args := []interface{}{q.DoctorID}
	if q.State != "" {
		args = append(args, q.State)
		conds = append(conds, fmt.Sprintf("al.state = $%d", len(args)))
	}
	if q.PatientID != uuid.Nil {
		args = append(args, q.PatientID)
		conds = append(conds, fmt.Sprintf("al.patient_id = $%d", len(args)))
	}
	if !q.Since.IsZero() {
		args = append(args, q.Since)
		conds = append(conds, fmt.Sprintf("al.created_at >= $%d", len(args)))
	}

	rows, err := r.conn(ctx).Query(ctx, `SELECT `+alertCols+`, p.name
		FROM alert al
		JOIN account p ON p.id = al.patient_id
		WHERE `+strings.Join(conds, " AND ")+`
		ORDER BY al.created_at DESC, al.seq DESC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Alert
	for rows.Next() {
		var a Alert
		if err := rows.Scan(&a.ID, &a.DoctorID, &a.PatientID, &a.Message, &a.State,
			&a.CreatedAt, &a.SeenAt, &a.Seq, &a.PatientName); err != nil {
			return nil, err
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}

func (r *alertRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Alert, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+alertCols+`, d.name
		FROM alert al
		JOIN account d ON d.id = al.doctor_id
		WHERE al.patient_id = $1
		ORDER BY al.created_at DESC, al.seq DESC`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Alert
	for rows.Next() {
		var a Alert
		if err := rows.Scan(&a.ID, &a.DoctorID, &a.PatientID, &a.Message, &a.State,
			&a.CreatedAt, &a.SeenAt, &a.Seq, &a.DoctorName); err != nil {
			return nil, err
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}

func (r *alertRepoPG) MarkSeen(ctx context.Context, alertID, patientID uuid.UUID, at time.Time) (bool, error) {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE alert SET state = $3, seen_at = $4
		WHERE id = $1 AND patient_id = $2 AND state = $5`,
		alertID, patientID, StateSeen, at, StateSent)
	if err != nil {
		return false, fmt.Errorf("alert mark seen: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *alertRepoPG) CountUnseen(ctx context.Context, patientID uuid.UUID) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM alert WHERE patient_id = $1 AND state = $2`, patientID, StateSent).Scan(&n)
	return n, err
}

func (r *alertRepoPG) CountByState(ctx context.Context) (sent, seen int, err error) {
	err = r.conn(ctx).QueryRow(ctx, `
		SELECT COUNT(*) FILTER (WHERE state = $1), COUNT(*) FILTER (WHERE state = $2)
		FROM alert`, StateSent, StateSeen).Scan(&sent, &seen)
	return sent, seen, err
}
