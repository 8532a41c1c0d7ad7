package ports

import (
	"context"

	"github.com/commuteplanner/planner/internal/core/domain"
)

// CommuterRepository persists commuter profiles.
type CommuterRepository interface {
	// Create inserts the commuter, or returns the existing one for the same account.
	Create(ctx context.Context, c *domain.Commuter) (*domain.Commuter, error)
	FindByAccount(ctx context.Context, accountHref string) (*domain.Commuter, error)
}
