package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// CredentialHasher turns a submitted secret into its stored form and checks a
// submitted secret against a stored one.
type CredentialHasher interface {
	Hash(secret string) (string, error)
	Verify(stored, secret string) bool
}

// PlainHasher stores and compares secrets verbatim.
type PlainHasher struct{}

func (PlainHasher) Hash(secret string) (string, error) { return secret, nil }

func (PlainHasher) Verify(stored, secret string) bool { return stored == secret }

type Service struct {
	accounts AccountRepository
	hasher   CredentialHasher
	now      func() time.Time
	logger   zerolog.Logger

	// decoy is a stored-form secret checked on unknown emails so that both
	// failure paths cost one Verify.
	decoyOnce sync.Once
	decoy     string
}

func NewService(accounts AccountRepository, hasher CredentialHasher) *Service {
	if hasher == nil {
		hasher = PlainHasher{}
	}
	return &Service{
		accounts: accounts,
		hasher:   hasher,
		now:      time.Now,
		logger:   zerolog.Nop(),
	}
}

// SetLogger attaches a logger to the service.
func (s *Service) SetLogger(l zerolog.Logger) { s.logger = l }

// SetClock overrides the time source used for creation timestamps.
func (s *Service) SetClock(now func() time.Time) { s.now = now }

// Register creates an account. Doctors start pending; patients and admins are
// approved immediately.
func (s *Service) Register(ctx context.Context, name, email, credential string, role Role) (*Account, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: a valid email is required", ErrInvalidInput)
	}
	if credential == "" {
		return nil, fmt.Errorf("%w: password is required", ErrInvalidInput)
	}
	if !role.Valid() {
		return nil, fmt.Errorf("%w: invalid role %q", ErrInvalidInput, role)
	}

	stored, err := s.hasher.Hash(credential)
	if err != nil {
		return nil, fmt.Errorf("hash credential: %w", err)
	}

	a := &Account{
		Name:       name,
		Email:      email,
		Credential: stored,
		Role:       role,
		Status:     InitialStatus(role),
		CreatedAt:  s.now().UTC(),
	}
	if err := s.accounts.Create(ctx, a); err != nil {
		return nil, err
	}
	s.logger.Info().
		Str("account_id", a.ID.String()).
		Str("role", string(a.Role)).
		Str("status", string(a.Status)).
		Msg("account registered")
	return a, nil
}

// Authenticate resolves an email/secret pair to a Caller. A pending doctor
// with a correct secret gets ErrPendingApproval; every other failure is
// ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, email, credential string) (Caller, error) {
	a, err := s.accounts.GetByEmail(ctx, NormalizeEmail(email))
	if errors.Is(err, ErrAccountNotFound) {
		s.hasher.Verify(s.decoyDigest(), credential)
		return Caller{}, ErrInvalidCredentials
	}
	if err != nil {
		return Caller{}, err
	}
	if !s.hasher.Verify(a.Credential, credential) {
		return Caller{}, ErrInvalidCredentials
	}
	if a.IsPendingDoctor() {
		return Caller{}, ErrPendingApproval
	}
	return Caller{ID: a.ID, Role: a.Role}, nil
}

func (s *Service) decoyDigest() string {
	s.decoyOnce.Do(func() {
		d, err := s.hasher.Hash("decoy-" + uuid.NewString())
		if err != nil {
			s.logger.Warn().Err(err).Msg("hash decoy credential")
			return
		}
		s.decoy = d
	})
	return s.decoy
}

func (s *Service) GetAccount(ctx context.Context, id uuid.UUID) (*Account, error) {
	return s.accounts.GetByID(ctx, id)
}

// ListAccounts is the admin user directory.
func (s *Service) ListAccounts(ctx context.Context, caller Caller, filter ListFilter, limit, offset int) ([]*Account, int, error) {
	if !caller.IsAdmin() {
		return nil, 0, ErrForbidden
	}
	return s.accounts.List(ctx, filter, limit, offset)
}

// DeleteAccount removes an account and everything that references it.
// Deleting an id that no longer exists is a no-op.
func (s *Service) DeleteAccount(ctx context.Context, caller Caller, id uuid.UUID) (bool, error) {
	if !caller.IsAdmin() {
		return false, ErrForbidden
	}
	if caller.ID == id {
		return false, fmt.Errorf("%w: administrators cannot delete their own account", ErrInvalidInput)
	}
	deleted, err := s.accounts.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	s.logger.Info().
		Str("account_id", id.String()).
		Str("admin_id", caller.ID.String()).
		Bool("applied", deleted).
		Msg("account deleted")
	return deleted, nil
}
