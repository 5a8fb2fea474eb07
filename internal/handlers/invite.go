package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stanstork/stratum-spaces/internal/authz"
	"github.com/stanstork/stratum-spaces/internal/models"
	"github.com/stanstork/stratum-spaces/internal/repository"
)

// DeliveryStarter kicks off the out-of-band email for a saved invite.
type DeliveryStarter interface {
	StartDelivery(ctx context.Context, invite models.Invite) error
}

type InviteHandler struct {
	invites  repository.InviteRepository
	spaces   repository.SpaceRepository
	delivery DeliveryStarter
	logger   zerolog.Logger
}

func NewInviteHandler(
	invites repository.InviteRepository,
	spaces repository.SpaceRepository,
	delivery DeliveryStarter,
	logger zerolog.Logger,
) *InviteHandler {
	return &InviteHandler{
		invites:  invites,
		spaces:   spaces,
		delivery: delivery,
		logger:   logger.With().Str("component", "invite_handler").Logger(),
	}
}

// CreateInvite stores a sealed invite sent by the invite dialog. The server never sees the
// space key: only the sealed payload and the public routing fields are accepted.
func (h *InviteHandler) CreateInvite(w http.ResponseWriter, r *http.Request) {
	spaceID, ok := spaceIDFromRequest(r)
	if !ok {
		http.Error(w, "space id is required", http.StatusBadRequest)
		return
	}

	var payload models.Invite
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "invalid request payload", http.StatusBadRequest)
		return
	}

	email := models.NormalizeEmail(payload.ToUser)
	if !models.LooksLikeEmail(email) {
		http.Error(w, "to_user must be an email address", http.StatusBadRequest)
		return
	}
	role, known := models.ParseRole(string(payload.Role))
	if !known || !role.Info().Assignable {
		http.Error(w, "unknown role", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(payload.Title) == "" {
		http.Error(w, "title is required", http.StatusBadRequest)
		return
	}
	if !payload.IsSealed() {
		http.Error(w, "invite must be sealed", http.StatusBadRequest)
		return
	}

	members, err := h.spaces.ListMembers(spaceID)
	if err != nil {
		h.logger.Error().Err(err).Str("space_id", spaceID).Msg("load members failed")
		http.Error(w, "failed to load space", http.StatusInternalServerError)
		return
	}
	if models.NewMemberSet(members...).Contains(email) {
		http.Error(w, models.ErrAlreadyMember.Error(), http.StatusConflict)
		return
	}

	invite := models.Invite{
		SpaceID: spaceID,
		ToUser:  email,
		Role:    role,
		Title:   strings.TrimSpace(payload.Title),
		Sealed:  payload.Sealed,
	}
	if uid, ok := authz.AccountIDFromRequest(r); ok {
		invite.FromUser = uid
	}

	saved, err := h.invites.CreateInvite(invite)
	if errors.Is(err, repository.ErrDuplicateInvite) {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	if err != nil {
		h.logger.Error().Err(err).Str("space_id", spaceID).Str("to_user", email).Msg("create invite failed")
		http.Error(w, "failed to create invite", http.StatusInternalServerError)
		return
	}

	if h.delivery != nil {
		if err := h.delivery.StartDelivery(r.Context(), saved); err != nil {
			h.logger.Warn().Err(err).Str("invite_id", saved.ID).Msg("invite saved but delivery not started")
		}
	}

	h.logger.Info().Str("invite_id", saved.ID).Str("space_id", spaceID).Str("role", string(role)).Msg("invite created")
	writeJSON(w, http.StatusCreated, saved)
}

func (h *InviteHandler) CancelInvite(w http.ResponseWriter, r *http.Request) {
	spaceID, _ := spaceIDFromRequest(r)
	inviteID := mux.Vars(r)["inviteID"]

	err := h.invites.CancelInvite(inviteID, spaceID)
	if errors.Is(err, sql.ErrNoRows) {
		http.Error(w, "invite not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Error().Err(err).Str("invite_id", inviteID).Msg("cancel invite failed")
		http.Error(w, "failed to cancel invite", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
