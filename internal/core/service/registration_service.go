package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/commuteplanner/planner/internal/core/domain"
	"github.com/commuteplanner/planner/internal/core/ports"
)

const (
	welcomeTemplate = "welcome"
	welcomeSubject  = "Welcome to your commute planner"
)

// RegistrationService runs the post-registration and post-login steps the
// identity provider reports through web-hooks.
type RegistrationService struct {
	commuters ports.CommuterRepository
	directory ports.GroupDirectory
	emails    ports.EmailQueue
	analytics ports.Analytics
	appURL    string
	logger    zerolog.Logger
}

func NewRegistrationService(
	commuters ports.CommuterRepository,
	directory ports.GroupDirectory,
	emails ports.EmailQueue,
	analytics ports.Analytics,
	appURL string,
	logger zerolog.Logger,
) *RegistrationService {
	return &RegistrationService{
		commuters: commuters,
		directory: directory,
		emails:    emails,
		analytics: analytics,
		appURL:    appURL,
		logger:    logger,
	}
}

// AfterRegistration creates the commuter profile, adds the account to the
// commuter group and queues the welcome email.
func (s *RegistrationService) AfterRegistration(ctx context.Context, account *domain.Account) (*domain.Commuter, error) {
	if account == nil || account.Href == "" {
		return nil, domain.ErrAccountNotFound
	}

	commuter, err := s.commuters.Create(ctx, &domain.Commuter{
		Account:   account.Href,
		Email:     account.Email,
		GivenName: account.GivenName,
		Surname:   account.Surname,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("create commuter: %w", err)
	}

	if err := s.directory.AddToGroup(ctx, account.Href, domain.GroupCommuter); err != nil {
		return nil, fmt.Errorf("add %s to %s: %w", account.Href, domain.GroupCommuter, err)
	}

	if account.Email != "" {
		s.emails.Enqueue(domain.EmailJob{
			To:       domain.Recipient{Email: account.Email, Name: account.GivenName},
			Template: welcomeTemplate,
			Subject:  welcomeSubject,
			Data: map[string]any{
				"givenName": account.GivenName,
				"link":      s.appURL + "/planner",
			},
		})
	}

	s.logger.Info().Str("account", account.Href).Msg("commuter registered")
	return commuter, nil
}

// AfterLogin identifies the account with analytics. Analytics failures are
// logged, never returned: they must not block a login.
func (s *RegistrationService) AfterLogin(_ context.Context, account *domain.Account) error {
	if account == nil || account.Href == "" {
		return domain.ErrAccountNotFound
	}
	if err := s.analytics.Identify(account); err != nil {
		s.logger.Warn().Err(err).Str("account", account.Href).Msg("analytics identify failed")
	}
	return nil
}
