package service

import (
	"context"
	"errors"
	"testing"

	"github.com/commuteplanner/planner/internal/core/domain"
)

func TestRegistrationService_AfterRegistration(t *testing.T) {
	commuters := newStubCommuterRepo()
	dir := newStubDirectory()
	queue := &recordingQueue{}
	svc := NewRegistrationService(commuters, dir, queue, &stubAnalytics{}, "https://planner.example.com", discardLogger)

	acct := &domain.Account{Href: "identities/u1", ID: "u1", Email: "ana@example.com", GivenName: "Ana", Surname: "Diaz"}
	c, err := svc.AfterRegistration(context.Background(), acct)
	if err != nil {
		t.Fatalf("AfterRegistration returned error: %v", err)
	}
	if c.Account != acct.Href || c.Email != acct.Email {
		t.Fatalf("unexpected commuter: %+v", c)
	}
	if got := dir.added[acct.Href]; len(got) != 1 || got[0] != domain.GroupCommuter {
		t.Fatalf("expected commuter group membership, got %v", got)
	}
	if len(queue.jobs) != 1 || queue.jobs[0].Template != "welcome" {
		t.Fatalf("expected welcome email, got %+v", queue.jobs)
	}
}

func TestRegistrationService_AfterRegistration_GroupFailure(t *testing.T) {
	dir := newStubDirectory()
	dir.addErr = domain.ErrGroupNotFound
	queue := &recordingQueue{}
	svc := NewRegistrationService(newStubCommuterRepo(), dir, queue, &stubAnalytics{}, "", discardLogger)

	_, err := svc.AfterRegistration(context.Background(), &domain.Account{Href: "identities/u1", Email: "a@b.com"})
	if !errors.Is(err, domain.ErrGroupNotFound) {
		t.Fatalf("expected ErrGroupNotFound, got %v", err)
	}
	if len(queue.jobs) != 0 {
		t.Fatalf("no welcome email expected on failure")
	}
}

func TestRegistrationService_AfterLogin_IgnoresAnalyticsErrors(t *testing.T) {
	analytics := &stubAnalytics{err: errors.New("segment down")}
	svc := NewRegistrationService(newStubCommuterRepo(), newStubDirectory(), &recordingQueue{}, analytics, "", discardLogger)

	if err := svc.AfterLogin(context.Background(), &domain.Account{Href: "identities/u1", ID: "u1"}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(analytics.identified) != 1 || analytics.identified[0] != "u1" {
		t.Fatalf("expected identify call, got %v", analytics.identified)
	}
}

func TestRegistrationService_AfterLogin_MissingAccount(t *testing.T) {
	svc := NewRegistrationService(newStubCommuterRepo(), newStubDirectory(), &recordingQueue{}, &stubAnalytics{}, "", discardLogger)
	if err := svc.AfterLogin(context.Background(), nil); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}
