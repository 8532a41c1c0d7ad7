package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/commuteplanner/planner/internal/core/domain"
)

func TestPasswordService_RequestReset_QueuesEmail(t *testing.T) {
	identity := newStubIdentity(&domain.Account{ID: "u1", Email: "ana@example.com", GivenName: "Ana"})
	keys := newStubKeys()
	queue := &recordingQueue{}
	svc := NewPasswordService(identity, keys, queue, "https://planner.example.com", discardLogger)

	if err := svc.RequestReset(context.Background(), "ana@example.com"); err != nil {
		t.Fatalf("RequestReset returned error: %v", err)
	}

	if len(queue.jobs) != 1 {
		t.Fatalf("expected 1 queued email, got %d", len(queue.jobs))
	}
	job := queue.jobs[0]
	if job.To.Email != "ana@example.com" || job.Template != "forgot-password" {
		t.Fatalf("unexpected job: %+v", job)
	}
	link, _ := job.Data["link"].(string)
	if !strings.HasPrefix(link, "https://planner.example.com/change-password/") {
		t.Fatalf("unexpected link: %q", link)
	}
	if len(keys.issued) != 1 {
		t.Fatalf("expected one issued key")
	}
}

func TestPasswordService_RequestReset_UnknownEmail(t *testing.T) {
	queue := &recordingQueue{}
	svc := NewPasswordService(newStubIdentity(), newStubKeys(), queue, "", discardLogger)

	if err := svc.RequestReset(context.Background(), "ghost@example.com"); err != nil {
		t.Fatalf("expected silent success, got %v", err)
	}
	if len(queue.jobs) != 0 {
		t.Fatalf("no email expected for unknown address")
	}
}

func TestPasswordService_RequestReset_IdentityDown(t *testing.T) {
	identity := newStubIdentity()
	identity.findErr = domain.ErrIdentityUnavailable
	svc := NewPasswordService(identity, newStubKeys(), &recordingQueue{}, "", discardLogger)

	if err := svc.RequestReset(context.Background(), "ana@example.com"); !errors.Is(err, domain.ErrIdentityUnavailable) {
		t.Fatalf("expected ErrIdentityUnavailable, got %v", err)
	}
}

func TestPasswordService_ChangePassword(t *testing.T) {
	identity := newStubIdentity()
	keys := newStubKeys()
	svc := NewPasswordService(identity, keys, &recordingQueue{}, "", discardLogger)

	key, _ := keys.Issue(context.Background(), "u1")
	if err := svc.ChangePassword(context.Background(), key, "new-secret"); err != nil {
		t.Fatalf("ChangePassword returned error: %v", err)
	}
	if identity.passwords["u1"] != "new-secret" {
		t.Fatalf("password not updated")
	}

	if err := svc.ChangePassword(context.Background(), key, "again"); !errors.Is(err, domain.ErrResetKeyInvalid) {
		t.Fatalf("expected reused key to be rejected, got %v", err)
	}
}

func TestPasswordService_ChangePassword_FailedUpdateKeepsKey(t *testing.T) {
	identity := newStubIdentity()
	keys := newStubKeys()
	svc := NewPasswordService(identity, keys, &recordingQueue{}, "", discardLogger)
	key, _ := keys.Issue(context.Background(), "u1")

	for _, setErr := range []error{domain.ErrIdentityUnavailable, domain.ErrIdentityRejected} {
		identity.setErr = setErr
		if err := svc.ChangePassword(context.Background(), key, "new-secret"); !errors.Is(err, setErr) {
			t.Fatalf("expected %v, got %v", setErr, err)
		}
		if _, ok := keys.issued[key]; !ok {
			t.Fatalf("key must survive a failed update (%v)", setErr)
		}
	}

	identity.setErr = nil
	if err := svc.ChangePassword(context.Background(), key, "new-secret"); err != nil {
		t.Fatalf("retry with the same key failed: %v", err)
	}
	if identity.passwords["u1"] != "new-secret" {
		t.Fatalf("password not updated on retry")
	}
	if _, ok := keys.issued[key]; ok {
		t.Fatalf("key must be redeemed after success")
	}
}

func TestPasswordService_ChangePassword_EmptyKey(t *testing.T) {
	svc := NewPasswordService(newStubIdentity(), newStubKeys(), &recordingQueue{}, "", discardLogger)
	if err := svc.ChangePassword(context.Background(), "", "pwd"); !errors.Is(err, domain.ErrResetKeyInvalid) {
		t.Fatalf("expected ErrResetKeyInvalid, got %v", err)
	}
}
