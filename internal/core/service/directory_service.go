package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/commuteplanner/planner/internal/core/domain"
	"github.com/commuteplanner/planner/internal/core/ports"
)

const maxConcurrentGroupCreates = 4

// DirectoryService manages the group directory.
type DirectoryService struct {
	directory ports.GroupDirectory
	logger    zerolog.Logger
}

func NewDirectoryService(directory ports.GroupDirectory, logger zerolog.Logger) *DirectoryService {
	return &DirectoryService{directory: directory, logger: logger}
}

// CreateGroups creates every named group concurrently. Names that already
// exist are reported with Created=false rather than failing the batch.
// Results keep the order of names.
func (s *DirectoryService) CreateGroups(ctx context.Context, names []string) ([]domain.GroupCreation, error) {
	for i, name := range names {
		if name == "" {
			return nil, fmt.Errorf("create groups: empty group name at index %d", i)
		}
	}

	results := make([]domain.GroupCreation, len(names))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentGroupCreates)
	for i, name := range names {
		g.Go(func() error {
			created, err := s.directory.CreateGroup(ctx, name)
			if err != nil {
				return fmt.Errorf("create group %q: %w", name, err)
			}
			results[i] = domain.GroupCreation{Name: name, Created: created}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, r := range results {
		if r.Created {
			s.logger.Info().Str("group", r.Name).Msg("group created")
		} else {
			s.logger.Debug().Str("group", r.Name).Msg("group exists")
		}
	}
	return results, nil
}
