package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/rs/zerolog"

	"github.com/commuteplanner/planner/internal/core/domain"
	"github.com/commuteplanner/planner/internal/core/ports"
)

const (
	forgotPasswordTemplate = "forgot-password"
	forgotPasswordSubject  = "Change your password"
)

// PasswordService issues change-password keys and redeems them.
type PasswordService struct {
	identity ports.IdentityProvider
	keys     ports.ResetKeyStore
	emails   ports.EmailQueue
	appURL   string
	logger   zerolog.Logger
}

func NewPasswordService(identity ports.IdentityProvider, keys ports.ResetKeyStore, emails ports.EmailQueue, appURL string, logger zerolog.Logger) *PasswordService {
	return &PasswordService{identity: identity, keys: keys, emails: emails, appURL: appURL, logger: logger}
}

// RequestReset emails a change-password link to the account with this
// address. Unknown addresses succeed silently.
func (s *PasswordService) RequestReset(ctx context.Context, email string) error {
	account, err := s.identity.FindAccountByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			s.logger.Info().Msg("password reset requested for unknown address")
			return nil
		}
		return fmt.Errorf("find account: %w", err)
	}

	key, err := s.keys.Issue(ctx, account.ID)
	if err != nil {
		return fmt.Errorf("issue change password key: %w", err)
	}

	s.emails.Enqueue(domain.EmailJob{
		To:       domain.Recipient{Email: account.Email, Name: account.GivenName},
		Template: forgotPasswordTemplate,
		Subject:  forgotPasswordSubject,
		Data: map[string]any{
			"givenName": account.GivenName,
			"link":      s.appURL + "/change-password/" + url.PathEscape(key),
		},
	})
	s.logger.Info().Str("account", account.ID).Msg("change password key issued")
	return nil
}

// ChangePassword sets the account's new password and then redeems key. A
// failed update leaves the key usable for another attempt.
func (s *PasswordService) ChangePassword(ctx context.Context, key, password string) error {
	if key == "" {
		return domain.ErrResetKeyInvalid
	}

	accountID, err := s.keys.Verify(ctx, key)
	if err != nil {
		return err
	}

	if err := s.identity.SetPassword(ctx, accountID, password); err != nil {
		s.logger.Error().Err(err).Str("account", accountID).Msg("failed to set password")
		return err
	}

	if err := s.keys.Redeem(ctx, key); err != nil {
		s.logger.Warn().Err(err).Str("account", accountID).Msg("password changed but key not redeemed")
	}
	s.logger.Info().Str("account", accountID).Msg("password changed")
	return nil
}
