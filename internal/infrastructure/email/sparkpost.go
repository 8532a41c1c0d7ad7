package email

import (
	"context"
	"fmt"

	sp "github.com/SparkPost/gosparkpost"

	"github.com/commuteplanner/planner/internal/core/domain"
	"github.com/commuteplanner/planner/internal/core/ports"
)

// sparkClient is the subset of *sp.Client the transmitter needs.
type sparkClient interface {
	SendContext(ctx context.Context, t *sp.Transmission) (string, *sp.Response, error)
	TransmissionContext(ctx context.Context, t *sp.Transmission) (*sp.Response, error)
}

// SparkPostConfig captures the SparkPost API settings.
type SparkPostConfig struct {
	APIKey  string
	BaseURL string
}

// SparkPostTransmitter implements ports.Transmitter against SparkPost.
type SparkPostTransmitter struct {
	client sparkClient
}

// NewSparkPostTransmitter initialises a SparkPost API client.
func NewSparkPostTransmitter(cfg SparkPostConfig) (*SparkPostTransmitter, error) {
	client := &sp.Client{}
	if err := client.Init(&sp.Config{
		BaseUrl:    cfg.BaseURL,
		ApiKey:     cfg.APIKey,
		ApiVersion: 1,
	}); err != nil {
		return nil, fmt.Errorf("sparkpost init: %w", err)
	}
	return &SparkPostTransmitter{client: client}, nil
}

// Transmit sends one tracked, transactional message.
func (t *SparkPostTransmitter) Transmit(ctx context.Context, msg ports.Message) (*domain.Receipt, error) {
	on := true
	tx := &sp.Transmission{
		Recipients: []sp.Recipient{
			{Address: sp.Address{Email: msg.To.Email, Name: msg.To.Name}},
		},
		Content: sp.Content{
			From:    sp.From{Email: msg.FromEmail, Name: msg.FromName},
			Subject: msg.Subject,
			HTML:    msg.HTML,
		},
		Options: &sp.TxOptions{
			TmplOptions: sp.TmplOptions{
				ClickTracking: &on,
				OpenTracking:  &on,
				Transactional: &on,
			},
		},
	}

	id, _, err := t.client.SendContext(ctx, tx)
	if err != nil {
		return nil, err
	}
	return &domain.Receipt{ID: id, Status: "submitted", Accepted: 1}, nil
}

// Transmission retrieves the delivery state of a sent transmission.
func (t *SparkPostTransmitter) Transmission(ctx context.Context, id string) (*domain.TransmissionInfo, error) {
	tx := &sp.Transmission{ID: id}
	if _, err := t.client.TransmissionContext(ctx, tx); err != nil {
		return nil, err
	}
	return &domain.TransmissionInfo{
		ID:          tx.ID,
		State:       tx.State,
		Description: tx.Description,
	}, nil
}
