package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"bilancio/internal/core"
	"bilancio/internal/storage"
)

type invitationResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Token     string    `json:"token"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

func (s *Server) handleInvitations(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleCreateInvitation(w, r)
	case http.MethodGet:
		s.handleListInvitations(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleCreateInvitation(w http.ResponseWriter, r *http.Request) {
	ownerID := OwnerFromContext(r.Context())

	var req struct {
		Email string `json:"email"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	inv, err := s.invites.Invite(r.Context(), ownerID, strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, core.ErrEmptyEmail) || errors.Is(err, core.ErrEmptyOwner) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		slog.ErrorContext(r.Context(), "Failed to create invitation",
			"error", err,
			"owner_id", ownerID)
		writeError(w, http.StatusInternalServerError, "could not create invitation")
		return
	}

	writeJSON(w, http.StatusCreated, invitationResponse{
		ID:        inv.ID,
		Email:     inv.Email,
		Token:     inv.Token,
		Status:    inv.Status,
		CreatedAt: inv.CreatedAt,
	})
}

func (s *Server) handleListInvitations(w http.ResponseWriter, r *http.Request) {
	ownerID := OwnerFromContext(r.Context())

	invitations, err := s.invites.List(r.Context(), ownerID)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to list invitations", "error", err, "owner_id", ownerID)
		writeError(w, http.StatusInternalServerError, "could not list invitations")
		return
	}

	out := make([]invitationResponse, 0, len(invitations))
	for _, inv := range invitations {
		out = append(out, invitationResponse{
			ID:        inv.ID,
			Email:     inv.Email,
			Token:     inv.Token,
			Status:    inv.Status,
			CreatedAt: inv.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAcceptInvitation(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req struct {
		Token string `json:"token"`
	}
	if err := decodeJSON(r, &req); err != nil || strings.TrimSpace(req.Token) == "" {
		writeError(w, http.StatusBadRequest, "invalid request body, expected {\"token\": ...}")
		return
	}

	if err := s.invites.Accept(r.Context(), req.Token); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "invitation not found or already used")
			return
		}
		slog.ErrorContext(r.Context(), "Failed to accept invitation", "error", err)
		writeError(w, http.StatusInternalServerError, "could not accept invitation")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
