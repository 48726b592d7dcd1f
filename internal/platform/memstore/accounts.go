package memstore

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/SwapnilGotsurve/health-care-system-sub000/internal/domain/identity"
)

type accountRepo struct{ s *Store }

func (r accountRepo) Create(ctx context.Context, a *identity.Account) error {
	unlock, err := r.s.write(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	key := identity.NormalizeEmail(a.Email)
	if _, taken := r.s.emails[key]; taken {
		return identity.ErrDuplicateIdentity
	}
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	cp := *a
	r.s.accounts[a.ID] = &cp
	r.s.emails[key] = a.ID
	return nil
}

func (r accountRepo) GetByID(ctx context.Context, id uuid.UUID) (*identity.Account, error) {
	defer r.s.read(ctx)()
	a, ok := r.s.accounts[id]
	if !ok {
		return nil, identity.ErrAccountNotFound
	}
	cp := *a
	return &cp, nil
}

func (r accountRepo) GetByEmail(ctx context.Context, email string) (*identity.Account, error) {
	defer r.s.read(ctx)()
	id, ok := r.s.emails[identity.NormalizeEmail(email)]
	if !ok {
		return nil, identity.ErrAccountNotFound
	}
	cp := *r.s.accounts[id]
	return &cp, nil
}

func (r accountRepo) matching(f identity.ListFilter) []*identity.Account {
	var out []*identity.Account
	for _, a := range r.s.accounts {
		if f.Role != "" && a.Role != f.Role {
			continue
		}
		if f.Status != "" && a.Status != f.Status {
			continue
		}
		cp := *a
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (r accountRepo) List(ctx context.Context, f identity.ListFilter, limit, offset int) ([]*identity.Account, int, error) {
	defer r.s.read(ctx)()
	all := r.matching(f)
	return window(all, limit, offset), len(all), nil
}

func (r accountRepo) Count(ctx context.Context, f identity.ListFilter) (int, error) {
	defer r.s.read(ctx)()
	n := 0
	for _, a := range r.s.accounts {
		if (f.Role == "" || a.Role == f.Role) && (f.Status == "" || a.Status == f.Status) {
			n++
		}
	}
	return n, nil
}

func (r accountRepo) TransitionStatus(ctx context.Context, id uuid.UUID, role identity.Role, from, to identity.Status) (bool, error) {
	unlock, err := r.s.write(ctx)
	if err != nil {
		return false, err
	}
	defer unlock()

	a, ok := r.s.accounts[id]
	if !ok || a.Role != role || a.Status != from {
		return false, nil
	}
	a.Status = to
	return true, nil
}

func (r accountRepo) DeleteMatching(ctx context.Context, id uuid.UUID, role identity.Role, status identity.Status) (bool, error) {
	unlock, err := r.s.write(ctx)
	if err != nil {
		return false, err
	}
	defer unlock()

	a, ok := r.s.accounts[id]
	if !ok || a.Role != role || a.Status != status {
		return false, nil
	}
	r.s.removeAccount(id)
	return true, nil
}

func (r accountRepo) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	unlock, err := r.s.write(ctx)
	if err != nil {
		return false, err
	}
	defer unlock()

	if _, ok := r.s.accounts[id]; !ok {
		return false, nil
	}
	r.s.removeAccount(id)
	return true, nil
}

func window[T any](all []T, limit, offset int) []T {
	if offset >= len(all) {
		return nil
	}
	end := len(all)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return all[offset:end]
}
