package domain

import (
	"strings"
	"time"
)

// Account models an identity-provider account attached to a request.
// The provider owns it; the application only holds a transient copy.
type Account struct {
	Href       string         `json:"href"`
	ID         string         `json:"id"`
	GivenName  string         `json:"givenName"`
	Surname    string         `json:"surname"`
	Email      string         `json:"email"`
	CustomData map[string]any `json:"customData,omitempty"`
	CreatedAt  time.Time      `json:"createdAt,omitempty"`
	SessionID  string         `json:"-"`
}

// AccountID returns the last path segment of an account href.
func AccountID(href string) string {
	href = strings.TrimRight(href, "/")
	if i := strings.LastIndex(href, "/"); i >= 0 {
		return href[i+1:]
	}
	return href
}

// AccountHref builds the href of an identity under the provider's admin base URL.
func AccountHref(adminURL, id string) string {
	return strings.TrimRight(adminURL, "/") + "/admin/identities/" + id
}

// NewAccountInput carries the fields needed to create an account.
// Missing names and password fall back to placeholders.
type NewAccountInput struct {
	Email     string
	Password  string
	GivenName string
	Surname   string
}

// WithDefaults fills the placeholder values used for provisioned accounts.
func (in NewAccountInput) WithDefaults() NewAccountInput {
	if in.Password == "" {
		in.Password = "password"
	}
	if in.GivenName == "" {
		in.GivenName = "None"
	}
	if in.Surname == "" {
		in.Surname = "none"
	}
	return in
}
