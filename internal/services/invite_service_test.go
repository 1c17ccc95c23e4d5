package services

import (
	"context"
	"errors"
	"testing"

	"bilancio/internal/core"
)

type fakeInvitationStore struct {
	saved     []core.Invitation
	accepted  []string
	acceptErr error
}

func (f *fakeInvitationStore) CreateInvitation(_ context.Context, inv core.Invitation) error {
	f.saved = append(f.saved, inv)
	return nil
}

func (f *fakeInvitationStore) ListInvitations(_ context.Context, _ string) ([]core.Invitation, error) {
	return f.saved, nil
}

func (f *fakeInvitationStore) AcceptInvitation(_ context.Context, token string) error {
	if f.acceptErr != nil {
		return f.acceptErr
	}
	f.accepted = append(f.accepted, token)
	return nil
}

func TestInviteGeneratesTokenAndID(t *testing.T) {
	store := &fakeInvitationStore{}
	svc := NewInviteService(store)

	inv, err := svc.Invite(context.Background(), "u1", "friend@example.com")
	if err != nil {
		t.Fatalf("Invite() error = %v", err)
	}

	if len(inv.ID) != 16 {
		t.Errorf("invitation ID length = %d, want 16 hex chars", len(inv.ID))
	}
	if len(inv.Token) != 32 {
		t.Errorf("invitation token length = %d, want 32 hex chars", len(inv.Token))
	}
	if inv.Status != InvitationPending {
		t.Errorf("invitation status = %q, want pending", inv.Status)
	}
	if inv.CreatedAt.IsZero() {
		t.Error("invitation CreatedAt should be set")
	}
	if len(store.saved) != 1 {
		t.Fatalf("expected invitation to be saved, got %d", len(store.saved))
	}

	// Tokens must not repeat.
	inv2, err := svc.Invite(context.Background(), "u1", "other@example.com")
	if err != nil {
		t.Fatalf("Invite() error = %v", err)
	}
	if inv2.Token == inv.Token {
		t.Error("two invitations got the same token")
	}
}

func TestInviteValidatesInput(t *testing.T) {
	svc := NewInviteService(&fakeInvitationStore{})

	tests := []struct {
		name    string
		ownerID string
		email   string
	}{
		{"empty owner", "", "friend@example.com"},
		{"empty email", "u1", ""},
		{"email without at sign", "u1", "not-an-email"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Invite(context.Background(), tt.ownerID, tt.email); err == nil {
				t.Error("Invite() expected validation error, got nil")
			}
		})
	}
}

func TestAcceptPassesTokenThrough(t *testing.T) {
	store := &fakeInvitationStore{}
	svc := NewInviteService(store)

	if err := svc.Accept(context.Background(), "tok-1"); err != nil {
		t.Fatalf("Accept() error = %v", err)
	}
	if len(store.accepted) != 1 || store.accepted[0] != "tok-1" {
		t.Errorf("accepted tokens = %v, want [tok-1]", store.accepted)
	}
}

func TestAcceptWrapsStoreError(t *testing.T) {
	sentinel := errors.New("not found")
	svc := NewInviteService(&fakeInvitationStore{acceptErr: sentinel})

	err := svc.Accept(context.Background(), "bad-token")
	if !errors.Is(err, sentinel) {
		t.Errorf("Accept() error = %v, want wrapped sentinel", err)
	}
}
