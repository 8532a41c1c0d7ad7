// Package email delivers transactional email: templates are compiled once
// per process, rendered per message and handed to the provider.
package email

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/commuteplanner/planner/internal/api/metrics"
	"github.com/commuteplanner/planner/internal/core/domain"
	"github.com/commuteplanner/planner/internal/core/ports"
)

// Sender is the identity emails are sent from.
type Sender struct {
	Email string
	Name  string
}

// Gateway is the production Mailer.
type Gateway struct {
	cache       *TemplateCache
	transmitter ports.Transmitter
	from        Sender
	log         zerolog.Logger
}

func NewGateway(cache *TemplateCache, transmitter ports.Transmitter, from Sender, log zerolog.Logger) *Gateway {
	return &Gateway{cache: cache, transmitter: transmitter, from: from, log: log}
}

// Send renders job.Template against the job and transmits it. There is one
// attempt per call; every failure is returned to the caller.
func (g *Gateway) Send(ctx context.Context, job domain.EmailJob) (*domain.Receipt, error) {
	if !job.Complete() {
		return nil, domain.ErrIncompleteEmail
	}

	tpl, err := g.cache.Get(job.Template)
	if err != nil {
		metrics.EmailsSentTotal.WithLabelValues(job.Template, "template_error").Inc()
		return nil, err
	}

	html, err := tpl.Exec(job.RenderContext())
	if err != nil {
		metrics.EmailsSentTotal.WithLabelValues(job.Template, "render_error").Inc()
		return nil, fmt.Errorf("render %s: %w", job.Template, err)
	}

	receipt, err := g.transmitter.Transmit(ctx, ports.Message{
		FromEmail: g.from.Email,
		FromName:  g.from.Name,
		To:        job.To,
		Subject:   job.Subject,
		HTML:      html,
	})
	if err != nil {
		metrics.EmailsSentTotal.WithLabelValues(job.Template, "provider_error").Inc()
		return nil, fmt.Errorf("%w: %w", domain.ErrProviderDispatch, err)
	}

	metrics.EmailsSentTotal.WithLabelValues(job.Template, "sent").Inc()
	g.log.Info().
		Str("template", job.Template).
		Str("transmission_id", receipt.ID).
		Msg("email sent")
	return receipt, nil
}

// Info fetches the provider's delivery record for a transmission.
func (g *Gateway) Info(ctx context.Context, id string) (*domain.TransmissionInfo, error) {
	info, err := g.transmitter.Transmission(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrProviderDispatch, err)
	}
	return info, nil
}
