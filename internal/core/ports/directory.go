package ports

import (
	"context"
	"iter"

	"github.com/commuteplanner/planner/internal/core/domain"
)

// GroupDirectory stores groups and account memberships.
type GroupDirectory interface {
	// Groups enumerates the account's groups in directory order. A failure
	// is yielded as a non-nil error and ends the sequence.
	Groups(ctx context.Context, accountHref string) iter.Seq2[domain.Group, error]
	// CreateGroup creates one group. It returns created=false when a group
	// with that name already exists.
	CreateGroup(ctx context.Context, name string) (created bool, err error)
	// AddToGroup adds the account to an existing group. Re-adding is a no-op.
	AddToGroup(ctx context.Context, accountHref, groupName string) error
}

// Authorizer decides whether an account satisfies a group requirement.
type Authorizer interface {
	Authorize(ctx context.Context, account *domain.Account, required domain.RequiredGroupSet) (bool, error)
}
