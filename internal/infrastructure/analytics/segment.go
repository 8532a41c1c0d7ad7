// Package analytics reports account identities to Segment.
package analytics

import (
	"fmt"

	segment "github.com/segmentio/analytics-go/v3"

	"github.com/commuteplanner/planner/internal/core/domain"
)

// enqueuer is the part of segment.Client used here.
type enqueuer interface {
	Enqueue(segment.Message) error
}

// Segment implements ports.Analytics.
type Segment struct {
	client enqueuer
}

// NewSegment returns a Segment reporter, or nil and no error when writeKey
// is empty; callers should then use Noop.
func NewSegment(writeKey string) (*Segment, segment.Client, error) {
	if writeKey == "" {
		return nil, nil, nil
	}
	client, err := segment.NewWithConfig(writeKey, segment.Config{})
	if err != nil {
		return nil, nil, fmt.Errorf("segment client: %w", err)
	}
	return &Segment{client: client}, client, nil
}

// Identify sends the account's traits keyed by its id.
func (s *Segment) Identify(account *domain.Account) error {
	traits := segment.NewTraits().
		SetFirstName(account.GivenName).
		SetLastName(account.Surname).
		SetEmail(account.Email).
		Set("customData", account.CustomData)

	return s.client.Enqueue(segment.Identify{
		UserId: domain.AccountID(account.Href),
		Traits: traits,
	})
}

// Noop drops every identity. It is used when no Segment key is configured.
type Noop struct{}

func (Noop) Identify(*domain.Account) error { return nil }
