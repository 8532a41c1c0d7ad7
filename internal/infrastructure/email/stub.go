package email

import (
	"context"

	"github.com/commuteplanner/planner/internal/core/domain"
)

// StubReceiptID is the transmission id every test-mode send returns.
const StubReceiptID = "123"

// StubMailer is the test-mode Mailer. It never touches the network and
// answers deterministically.
type StubMailer struct{}

func NewStubMailer() *StubMailer { return &StubMailer{} }

func (StubMailer) Send(_ context.Context, job domain.EmailJob) (*domain.Receipt, error) {
	if !job.Complete() {
		return nil, domain.ErrIncompleteEmail
	}
	return &domain.Receipt{ID: StubReceiptID, Status: "sent"}, nil
}

func (StubMailer) Info(_ context.Context, id string) (*domain.TransmissionInfo, error) {
	return &domain.TransmissionInfo{ID: id, State: "Success"}, nil
}
