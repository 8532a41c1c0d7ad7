package ports

import (
	"context"

	"github.com/commuteplanner/planner/internal/core/domain"
)

// PasswordService handles forgotten passwords and key-based changes.
type PasswordService interface {
	RequestReset(ctx context.Context, email string) error
	ChangePassword(ctx context.Context, key, password string) error
}

// RegistrationService reacts to identity provider lifecycle hooks.
type RegistrationService interface {
	AfterRegistration(ctx context.Context, account *domain.Account) (*domain.Commuter, error)
	AfterLogin(ctx context.Context, account *domain.Account) error
}

// DirectoryService manages groups.
type DirectoryService interface {
	CreateGroups(ctx context.Context, names []string) ([]domain.GroupCreation, error)
}
