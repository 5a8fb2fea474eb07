package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stanstork/stratum-spaces/internal/authz"
	"github.com/stanstork/stratum-spaces/internal/repository"
)

type SpaceHandler struct {
	spaces repository.SpaceRepository
	logger zerolog.Logger
}

func NewSpaceHandler(spaces repository.SpaceRepository, logger zerolog.Logger) *SpaceHandler {
	return &SpaceHandler{
		spaces: spaces,
		logger: logger.With().Str("component", "space_handler").Logger(),
	}
}

func (h *SpaceHandler) CreateSpace(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := authz.AccountIDFromRequest(r)
	if !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}
	var payload struct {
		Title string `json:"title"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "invalid request payload", http.StatusBadRequest)
		return
	}

	snap, err := h.spaces.CreateSpace(strings.TrimSpace(payload.Title), ownerID)
	if err != nil {
		h.logger.Error().Err(err).Msg("create space failed")
		http.Error(w, "failed to create space", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, snap)
}

// GetSpace returns the members and pending invites of a space.
func (h *SpaceHandler) GetSpace(w http.ResponseWriter, r *http.Request) {
	spaceID, ok := spaceIDFromRequest(r)
	if !ok {
		http.Error(w, "space id is required", http.StatusBadRequest)
		return
	}

	snap, err := h.spaces.GetSpace(spaceID)
	if errors.Is(err, sql.ErrNoRows) {
		http.Error(w, "space not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Error().Err(err).Str("space_id", spaceID).Msg("load space failed")
		http.Error(w, "failed to load space", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}
