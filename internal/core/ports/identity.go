package ports

import (
	"context"

	"github.com/commuteplanner/planner/internal/core/domain"
)

// IdentityProvider is the external identity service. It owns accounts and
// sessions; the application never stores either.
type IdentityProvider interface {
	// ResolveSession returns the account behind a session cookie value.
	// domain.ErrSessionNotFound means the cookie is missing, invalid or expired.
	ResolveSession(ctx context.Context, cookie string) (*domain.Account, error)
	// RevokeSession disables a session by id.
	RevokeSession(ctx context.Context, sessionID string) error
	FindAccountByEmail(ctx context.Context, email string) (*domain.Account, error)
	CreateAccount(ctx context.Context, in domain.NewAccountInput) (*domain.Account, error)
	SetPassword(ctx context.Context, accountID, password string) error
}

// SessionCache keeps resolved sessions for a short time so every request
// does not round-trip to the identity provider.
type SessionCache interface {
	Get(ctx context.Context, cookie string) (*domain.Account, bool, error)
	Set(ctx context.Context, cookie string, account *domain.Account) error
	Delete(ctx context.Context, cookie string) error
}
