// Package identity adapts Ory Kratos to ports.IdentityProvider.
package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	kratos "github.com/ory/kratos-client-go"

	"github.com/commuteplanner/planner/internal/core/domain"
)

const defaultTimeout = 5 * time.Second

// Config captures the Kratos endpoints and identity schema.
type Config struct {
	PublicURL string
	AdminURL  string
	SchemaID  string
	Timeout   time.Duration
}

// KratosProvider talks to the Kratos public API for sessions and to the
// admin API for account management.
type KratosProvider struct {
	public   *kratos.APIClient
	admin    *kratos.APIClient
	adminURL string
	schemaID string
	timeout  time.Duration
}

func NewKratosProvider(cfg Config) *KratosProvider {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	httpClient := &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 20,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	return &KratosProvider{
		public:   newAPIClient(cfg.PublicURL, httpClient),
		admin:    newAPIClient(cfg.AdminURL, httpClient),
		adminURL: cfg.AdminURL,
		schemaID: cfg.SchemaID,
		timeout:  timeout,
	}
}

func newAPIClient(baseURL string, httpClient *http.Client) *kratos.APIClient {
	configuration := kratos.NewConfiguration()
	configuration.Servers = []kratos.ServerConfiguration{{URL: baseURL}}
	configuration.HTTPClient = httpClient
	return kratos.NewAPIClient(configuration)
}

// ResolveSession validates the Cookie header value with Kratos.
func (p *KratosProvider) ResolveSession(ctx context.Context, cookie string) (*domain.Account, error) {
	if cookie == "" {
		return nil, domain.ErrSessionNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	session, resp, err := p.public.FrontendAPI.ToSession(ctx).Cookie(cookie).Execute()
	if err != nil {
		return nil, mapError(resp, err, domain.ErrSessionNotFound)
	}
	if session.Active != nil && !*session.Active {
		return nil, domain.ErrSessionNotFound
	}
	if session.Identity == nil {
		return nil, domain.ErrSessionNotFound
	}

	account := p.toAccount(session.Identity)
	account.SessionID = session.Id
	return account, nil
}

// RevokeSession disables the session through the admin API.
func (p *KratosProvider) RevokeSession(ctx context.Context, sessionID string) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	resp, err := p.admin.IdentityAPI.DisableSession(ctx, sessionID).Execute()
	if err != nil {
		return mapError(resp, err, domain.ErrSessionNotFound)
	}
	return nil
}

// FindAccountByEmail looks the account up by its login identifier.
func (p *KratosProvider) FindAccountByEmail(ctx context.Context, email string) (*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	identities, resp, err := p.admin.IdentityAPI.ListIdentities(ctx).CredentialsIdentifier(email).Execute()
	if err != nil {
		return nil, mapError(resp, err, domain.ErrAccountNotFound)
	}
	if len(identities) == 0 {
		return nil, domain.ErrAccountNotFound
	}
	return p.toAccount(&identities[0]), nil
}

// CreateAccount creates a password account. Empty names and password are
// replaced by placeholders.
func (p *KratosProvider) CreateAccount(ctx context.Context, in domain.NewAccountInput) (*domain.Account, error) {
	in = in.WithDefaults()

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	body := kratos.NewCreateIdentityBody(p.schemaID, map[string]interface{}{
		"email": in.Email,
		"name": map[string]interface{}{
			"first": in.GivenName,
			"last":  in.Surname,
		},
	})
	body.Credentials = passwordCredentials(in.Password)

	identity, resp, err := p.admin.IdentityAPI.CreateIdentity(ctx).CreateIdentityBody(*body).Execute()
	if err != nil {
		return nil, mapError(resp, err, domain.ErrAccountNotFound)
	}
	return p.toAccount(identity), nil
}

// SetPassword replaces the account's password credential, keeping its
// traits and metadata.
func (p *KratosProvider) SetPassword(ctx context.Context, accountID, password string) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	identity, resp, err := p.admin.IdentityAPI.GetIdentity(ctx, accountID).Execute()
	if err != nil {
		return mapError(resp, err, domain.ErrAccountNotFound)
	}

	traits, _ := identity.Traits.(map[string]interface{})
	body := kratos.UpdateIdentityBody{
		SchemaId:       identity.SchemaId,
		State:          identity.GetState(),
		Traits:         traits,
		MetadataPublic: identity.MetadataPublic,
		MetadataAdmin:  identity.MetadataAdmin,
		Credentials:    passwordCredentials(password),
	}

	_, resp, err = p.admin.IdentityAPI.UpdateIdentity(ctx, accountID).UpdateIdentityBody(body).Execute()
	if err != nil {
		return mapError(resp, err, domain.ErrAccountNotFound)
	}
	return nil
}

func passwordCredentials(password string) *kratos.IdentityWithCredentials {
	return &kratos.IdentityWithCredentials{
		Password: &kratos.IdentityWithCredentialsPassword{
			Config: &kratos.IdentityWithCredentialsPasswordConfig{
				Password: &password,
			},
		},
	}
}

func (p *KratosProvider) toAccount(identity *kratos.Identity) *domain.Account {
	account := &domain.Account{
		Href: domain.AccountHref(p.adminURL, identity.Id),
		ID:   identity.Id,
	}

	if traits, ok := identity.Traits.(map[string]interface{}); ok {
		account.Email, _ = traits["email"].(string)
		if name, ok := traits["name"].(map[string]interface{}); ok {
			account.GivenName, _ = name["first"].(string)
			account.Surname, _ = name["last"].(string)
		}
	}
	if meta, ok := identity.MetadataPublic.(map[string]interface{}); ok {
		account.CustomData = meta
	}
	if identity.CreatedAt != nil {
		account.CreatedAt = *identity.CreatedAt
	}
	return account
}

// mapError turns a Kratos client failure into a domain error. 401/403/404
// map to notFound, 400 and 422 carry Kratos' reason, 409 means the
// identifier is taken and anything else means Kratos is unavailable.
func mapError(resp *http.Response, err error, notFound error) error {
	if resp == nil {
		return fmt.Errorf("%w: %w", domain.ErrIdentityUnavailable, err)
	}
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
		return notFound
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		if reason := kratosReason(err); reason != "" {
			return fmt.Errorf("%w: %s", domain.ErrIdentityRejected, reason)
		}
		return domain.ErrIdentityRejected
	case http.StatusConflict:
		return domain.ErrAccountExists
	}
	return fmt.Errorf("%w: kratos returned status %d", domain.ErrIdentityUnavailable, resp.StatusCode)
}

// kratosReason digs the human-readable reason out of a Kratos error body.
func kratosReason(err error) string {
	var apiErr *kratos.GenericOpenAPIError
	if !errors.As(err, &apiErr) {
		return ""
	}
	var body struct {
		Error struct {
			Reason  string `json:"reason"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(apiErr.Body(), &body) != nil {
		return ""
	}
	if body.Error.Reason != "" {
		return body.Error.Reason
	}
	return body.Error.Message
}
