package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/commuteplanner/planner/internal/core/domain"
	"github.com/commuteplanner/planner/internal/core/ports"
)

// AuthorizationService checks group requirements against the directory.
type AuthorizationService struct {
	directory ports.GroupDirectory
	logger    zerolog.Logger
}

func NewAuthorizationService(directory ports.GroupDirectory, logger zerolog.Logger) *AuthorizationService {
	return &AuthorizationService{directory: directory, logger: logger}
}

// Authorize walks the account's groups and reports whether they satisfy
// required. Matching is done on distinct names: with RequireAll every
// required name must be held, otherwise one is enough and enumeration stops
// at the first match. Enumeration failures are wrapped in domain.ErrGroupLookup.
func (s *AuthorizationService) Authorize(ctx context.Context, account *domain.Account, required domain.RequiredGroupSet) (bool, error) {
	if account == nil {
		return false, domain.ErrNotAuthenticated
	}

	held := make(map[string]struct{}, required.Len())
	for group, err := range s.directory.Groups(ctx, account.Href) {
		if err != nil {
			return false, fmt.Errorf("%w: %w", domain.ErrGroupLookup, err)
		}
		if !required.Contains(group.Name) {
			continue
		}
		if !required.RequireAll() {
			s.logger.Debug().Str("account", account.Href).Str("group", group.Name).Msg("group requirement met")
			return true, nil
		}
		held[group.Name] = struct{}{}
		if len(held) == required.Len() {
			return true, nil
		}
	}

	return false, nil
}
