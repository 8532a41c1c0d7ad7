package ports

import "github.com/commuteplanner/planner/internal/core/domain"

// Analytics records user identities with the analytics provider.
type Analytics interface {
	Identify(account *domain.Account) error
}
