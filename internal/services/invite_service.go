package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"bilancio/internal/core"
)

const (
	InvitationPending  = "pending"
	InvitationAccepted = "accepted"
)

// InvitationStore is the slice of the repository the invite service needs.
type InvitationStore interface {
	CreateInvitation(ctx context.Context, inv core.Invitation) error
	ListInvitations(ctx context.Context, ownerID string) ([]core.Invitation, error)
	AcceptInvitation(ctx context.Context, token string) error
}

// InviteService issues and redeems single-use invitation tokens that let
// another person view an owner's reports.
type InviteService struct {
	store InvitationStore
}

func NewInviteService(store InvitationStore) *InviteService {
	return &InviteService{store: store}
}

// Invite creates a pending invitation for the given email and returns it,
// token included. The token is 32 hex chars from crypto/rand.
func (s *InviteService) Invite(ctx context.Context, ownerID, email string) (core.Invitation, error) {
	inv := core.Invitation{
		OwnerID:   ownerID,
		Email:     email,
		Status:    InvitationPending,
		CreatedAt: time.Now().UTC(),
	}
	if err := inv.Validate(); err != nil {
		return core.Invitation{}, err
	}

	id, err := randomHex(8)
	if err != nil {
		return core.Invitation{}, fmt.Errorf("generate invitation id: %w", err)
	}
	token, err := randomHex(16)
	if err != nil {
		return core.Invitation{}, fmt.Errorf("generate invitation token: %w", err)
	}
	inv.ID = id
	inv.Token = token

	if err := s.store.CreateInvitation(ctx, inv); err != nil {
		return core.Invitation{}, fmt.Errorf("save invitation: %w", err)
	}

	slog.InfoContext(ctx, "Invitation created",
		"id", inv.ID,
		"owner_id", ownerID,
		"email", email)

	return inv, nil
}

// List returns the owner's invitations.
func (s *InviteService) List(ctx context.Context, ownerID string) ([]core.Invitation, error) {
	return s.store.ListInvitations(ctx, ownerID)
}

// Accept redeems a pending token. Redeeming an unknown or already used
// token surfaces the store's not-found error.
func (s *InviteService) Accept(ctx context.Context, token string) error {
	if err := s.store.AcceptInvitation(ctx, token); err != nil {
		return fmt.Errorf("accept invitation: %w", err)
	}
	return nil
}

func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
