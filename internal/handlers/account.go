package handlers

import (
	"database/sql"
	"net/http"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stanstork/stratum-spaces/internal/models"
	"github.com/stanstork/stratum-spaces/internal/repository"
)

type AccountHandler struct {
	accounts repository.AccountRepository
	logger   zerolog.Logger
}

func NewAccountHandler(accounts repository.AccountRepository, logger zerolog.Logger) *AccountHandler {
	return &AccountHandler{
		accounts: accounts,
		logger:   logger.With().Str("component", "account_handler").Logger(),
	}
}

// Lookup answers GET /api/accounts/lookup?email=. Only the public fields of the account are
// returned; an unknown email is a 404.
func (h *AccountHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	email := models.NormalizeEmail(r.URL.Query().Get("email"))
	if !models.LooksLikeEmail(email) {
		http.Error(w, "email is required", http.StatusBadRequest)
		return
	}

	account, err := h.accounts.FindByEmail(email)
	if errors.Is(err, sql.ErrNoRows) {
		http.Error(w, "account not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Error().Err(err).Msg("account lookup failed")
		http.Error(w, "failed to look up account", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, models.Account{
		ID:        account.ID,
		Email:     account.Email,
		Confirmed: account.Confirmed,
		PublicKey: account.PublicKey,
	})
}
