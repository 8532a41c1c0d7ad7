package ports

import (
	"context"

	"github.com/commuteplanner/planner/internal/core/domain"
)

// Mailer sends transactional emails. The production gateway and the
// test-mode stub are separate implementations.
type Mailer interface {
	Send(ctx context.Context, job domain.EmailJob) (*domain.Receipt, error)
	Info(ctx context.Context, id string) (*domain.TransmissionInfo, error)
}

// Message is a rendered email ready for the provider.
type Message struct {
	FromEmail string
	FromName  string
	To        domain.Recipient
	Subject   string
	HTML      string
}

// Transmitter is the transactional email provider.
type Transmitter interface {
	Transmit(ctx context.Context, msg Message) (*domain.Receipt, error)
	Transmission(ctx context.Context, id string) (*domain.TransmissionInfo, error)
}

// EmailQueue accepts emails for asynchronous delivery.
type EmailQueue interface {
	Enqueue(job domain.EmailJob)
}
