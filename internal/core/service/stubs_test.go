package service

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/commuteplanner/planner/internal/core/domain"
)

var discardLogger = zerolog.Nop()

// ---------------------------------------------------------------------------
// Identity provider
// ---------------------------------------------------------------------------

type stubIdentity struct {
	accounts  map[string]*domain.Account // by email
	passwords map[string]string          // by account id
	findErr   error
	setErr    error
}

func newStubIdentity(accounts ...*domain.Account) *stubIdentity {
	s := &stubIdentity{accounts: make(map[string]*domain.Account), passwords: make(map[string]string)}
	for _, a := range accounts {
		s.accounts[a.Email] = a
	}
	return s
}

func (s *stubIdentity) ResolveSession(context.Context, string) (*domain.Account, error) {
	return nil, domain.ErrSessionNotFound
}

func (s *stubIdentity) RevokeSession(context.Context, string) error { return nil }

func (s *stubIdentity) FindAccountByEmail(_ context.Context, email string) (*domain.Account, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	a, ok := s.accounts[email]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	clone := *a
	return &clone, nil
}

func (s *stubIdentity) CreateAccount(_ context.Context, in domain.NewAccountInput) (*domain.Account, error) {
	in = in.WithDefaults()
	a := &domain.Account{ID: in.Email, Href: "identities/" + in.Email, Email: in.Email, GivenName: in.GivenName, Surname: in.Surname}
	s.accounts[in.Email] = a
	s.passwords[a.ID] = in.Password
	return a, nil
}

func (s *stubIdentity) SetPassword(_ context.Context, id, password string) error {
	if s.setErr != nil {
		return s.setErr
	}
	s.passwords[id] = password
	return nil
}

// ---------------------------------------------------------------------------
// Reset keys
// ---------------------------------------------------------------------------

type stubKeys struct {
	issued map[string]string
	next   int
}

func newStubKeys() *stubKeys { return &stubKeys{issued: make(map[string]string)} }

func (k *stubKeys) Issue(_ context.Context, accountID string) (string, error) {
	k.next++
	key := accountID + "-key-" + strings.Repeat("x", k.next)
	k.issued[key] = accountID
	return key, nil
}

func (k *stubKeys) Verify(_ context.Context, key string) (string, error) {
	id, ok := k.issued[key]
	if !ok {
		return "", domain.ErrResetKeyInvalid
	}
	return id, nil
}

func (k *stubKeys) Redeem(_ context.Context, key string) error {
	if _, ok := k.issued[key]; !ok {
		return domain.ErrResetKeyInvalid
	}
	delete(k.issued, key)
	return nil
}

// ---------------------------------------------------------------------------
// Email queue, commuters, analytics
// ---------------------------------------------------------------------------

type recordingQueue struct {
	mu   sync.Mutex
	jobs []domain.EmailJob
}

func (q *recordingQueue) Enqueue(job domain.EmailJob) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.jobs = append(q.jobs, job)
}

type stubCommuterRepo struct {
	byAccount map[string]*domain.Commuter
	createErr error
}

func newStubCommuterRepo() *stubCommuterRepo {
	return &stubCommuterRepo{byAccount: make(map[string]*domain.Commuter)}
}

func (r *stubCommuterRepo) Create(_ context.Context, c *domain.Commuter) (*domain.Commuter, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	if existing, ok := r.byAccount[c.Account]; ok {
		return existing, nil
	}
	clone := *c
	clone.ID = "c-" + c.Account
	r.byAccount[c.Account] = &clone
	return &clone, nil
}

func (r *stubCommuterRepo) FindByAccount(_ context.Context, href string) (*domain.Commuter, error) {
	c, ok := r.byAccount[href]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return c, nil
}

type stubAnalytics struct {
	identified []string
	err        error
}

func (a *stubAnalytics) Identify(account *domain.Account) error {
	a.identified = append(a.identified, account.ID)
	return a.err
}
