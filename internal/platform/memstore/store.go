// Package memstore keeps the whole portal state in process memory. It backs
// the "memory" storage driver and the engine-level tests.
//
// Every repository view shares one lock, so a cascade delete removes an
// account and everything that references it in a single step.
package memstore

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/SwapnilGotsurve/health-care-system-sub000/internal/domain/careteam"
	"github.com/SwapnilGotsurve/health-care-system-sub000/internal/domain/identity"
	"github.com/SwapnilGotsurve/health-care-system-sub000/internal/domain/inbox"
	"github.com/SwapnilGotsurve/health-care-system-sub000/internal/domain/vitals"
)

// ErrReadOnly is returned for writes attempted inside InTx.
var ErrReadOnly = errors.New("memstore: write inside read-only snapshot")

type pair struct {
	doctor, patient uuid.UUID
}

type Store struct {
	mu sync.RWMutex

	accounts    map[uuid.UUID]*identity.Account
	emails      map[string]uuid.UUID
	assignments map[pair]*careteam.Assignment
	records     map[uuid.UUID]*vitals.HealthRecord
	alerts      map[uuid.UUID]*inbox.Alert
	seq         int64
}

func New() *Store {
	return &Store{
		accounts:    make(map[uuid.UUID]*identity.Account),
		emails:      make(map[string]uuid.UUID),
		assignments: make(map[pair]*careteam.Assignment),
		records:     make(map[uuid.UUID]*vitals.HealthRecord),
		alerts:      make(map[uuid.UUID]*inbox.Alert),
	}
}

func (s *Store) Accounts() identity.AccountRepository { return accountRepo{s} }
func (s *Store) Assignments() careteam.AssignmentRepository { return assignmentRepo{s} }
func (s *Store) Records() vitals.RecordRepository { return recordRepo{s} }
func (s *Store) Alerts() inbox.AlertRepository { return alertRepo{s} }

type snapshotKey struct{}

// InTx runs fn while holding the read lock, so every read fn makes through
// this store sees the same state. Writes inside fn fail with ErrReadOnly.
func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.inSnapshot(ctx) {
		return fn(ctx)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(context.WithValue(ctx, snapshotKey{}, s))
}

func (s *Store) inSnapshot(ctx context.Context) bool {
	held, _ := ctx.Value(snapshotKey{}).(*Store)
	return held == s
}

func (s *Store) read(ctx context.Context) func() {
	if s.inSnapshot(ctx) {
		return func() {}
	}
	s.mu.RLock()
	return s.mu.RUnlock
}

func (s *Store) write(ctx context.Context) (func(), error) {
	if s.inSnapshot(ctx) {
		return nil, ErrReadOnly
	}
	s.mu.Lock()
	return s.mu.Unlock, nil
}

func (s *Store) nextSeq() int64 {
	s.seq++
	return s.seq
}

// removeAccount deletes the account and every row that references it.
// Callers hold the write lock.
func (s *Store) removeAccount(id uuid.UUID) {
	a, ok := s.accounts[id]
	if !ok {
		return
	}
	delete(s.emails, identity.NormalizeEmail(a.Email))
	delete(s.accounts, id)
	for k := range s.assignments {
		if k.doctor == id || k.patient == id {
			delete(s.assignments, k)
		}
	}
	for k, r := range s.records {
		if r.PatientID == id {
			delete(s.records, k)
		}
	}
	for k, al := range s.alerts {
		if al.DoctorID == id || al.PatientID == id {
			delete(s.alerts, k)
		}
	}
}

func (s *Store) exists(ids ...uuid.UUID) bool {
	for _, id := range ids {
		if _, ok := s.accounts[id]; !ok {
			return false
		}
	}
	return true
}
