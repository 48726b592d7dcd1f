package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SwapnilGotsurve/health-care-system-sub000/internal/platform/db"
)

type querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

type accountRepoPG struct {
	pool *pgxpool.Pool
}

func NewAccountRepoPG(pool *pgxpool.Pool) AccountRepository {
	return &accountRepoPG{pool: pool}
}

func (r *accountRepoPG) conn(ctx context.Context) querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const accountCols = `id, name, email, credential, role, status, created_at`

func (r *accountRepoPG) Create(ctx context.Context, a *Account) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO account (`+accountCols+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		a.ID, a.Name, a.Email, a.Credential, a.Role, a.Status, a.CreatedAt,
	)
	if db.IsUniqueViolation(err) {
		return ErrDuplicateIdentity
	}
	if err != nil {
		return fmt.Errorf("account create: %w", err)
	}
	return nil
}

func (r *accountRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Account, error) {
	return scanAccount(r.conn(ctx).QueryRow(ctx, `SELECT `+accountCols+` FROM account WHERE id = $1`, id))
}

func (r *accountRepoPG) GetByEmail(ctx context.Context, email string) (*Account, error) {
	return scanAccount(r.conn(ctx).QueryRow(ctx,
		`SELECT `+accountCols+` FROM account WHERE lower(email) = lower($1)`, strings.TrimSpace(email)))
}

func (r *accountRepoPG) List(ctx context.Context, filter ListFilter, limit, offset int) ([]*Account, int, error) {
	where, args := filterClause(filter)

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM account`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	query := fmt.Sprintf(`SELECT %s FROM account%s ORDER BY created_at, id LIMIT $%d OFFSET $%d`,
		accountCols, where, len(args)-1, len(args))
	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var accounts []*Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, 0, err
		}
		accounts = append(accounts, a)
	}
	return accounts, total, rows.Err()
}

func (r *accountRepoPG) Count(ctx context.Context, filter ListFilter) (int, error) {
	where, args := filterClause(filter)
	var total int
	err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM account`+where, args...).Scan(&total)
	return total, err
}

func (r *accountRepoPG) TransitionStatus(ctx context.Context, id uuid.UUID, role Role, from, to Status) (bool, error) {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE account SET status = $4 WHERE id = $1 AND role = $2 AND status = $3`,
		id, role, from, to)
	if err != nil {
		return false, fmt.Errorf("account transition: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *accountRepoPG) DeleteMatching(ctx context.Context, id uuid.UUID, role Role, status Status) (bool, error) {
	tag, err := r.conn(ctx).Exec(ctx,
		`DELETE FROM account WHERE id = $1 AND role = $2 AND status = $3`, id, role, status)
	if err != nil {
		return false, fmt.Errorf("account delete: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *accountRepoPG) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM account WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("account delete: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func filterClause(f ListFilter) (string, []interface{}) {
	var conds []string
	var args []interface{}
	if f.Role != "" {
		args = append(args, f.Role)
		conds = append(conds, fmt.Sprintf("role = $%d", len(args)))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func scanAccount(row pgx.Row) (*Account, error) {
	var a Account
	err := row.Scan(&a.ID, &a.Name, &a.Email, &a.Credential, &a.Role, &a.Status, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}
