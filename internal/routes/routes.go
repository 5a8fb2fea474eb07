package routes

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/stanstork/stratum-spaces/internal/authz"
	"github.com/stanstork/stratum-spaces/internal/handlers"
	"github.com/stanstork/stratum-spaces/internal/models"
)

type Handlers struct {
	Health   *handlers.HealthHandler
	Auth     *handlers.AuthHandler
	Accounts *handlers.AccountHandler
	Spaces   *handlers.SpaceHandler
	Invites  *handlers.InviteHandler
	Members  authz.MembershipLookup
}

// NewRouter sets up the API routes.
func NewRouter(h Handlers) *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/health", h.Health.HealthCheck).Methods(http.MethodGet)

	// Public auth endpoints
	router.HandleFunc("/api/signup", h.Auth.SignUp).Methods(http.MethodPost)
	router.HandleFunc("/api/login", h.Auth.Login).Methods(http.MethodPost)

	api := router.PathPrefix("/api").Subrouter()
	api.Use(h.Auth.JWTMiddleware)

	api.HandleFunc("/accounts/lookup", h.Accounts.Lookup).Methods(http.MethodGet)
	api.HandleFunc("/spaces", h.Spaces.CreateSpace).Methods(http.MethodPost)
	api.Handle("/spaces/{spaceID}",
		authz.RequireSpaceRoleHandler(h.Members, models.RoleGuest, h.Spaces.GetSpace)).Methods(http.MethodGet)
	api.Handle("/spaces/{spaceID}/invites",
		authz.RequireSpaceRoleHandler(h.Members, models.RoleAdmin, h.Invites.CreateInvite)).Methods(http.MethodPost)
	api.Handle("/spaces/{spaceID}/invites/{inviteID}",
		authz.RequireSpaceRoleHandler(h.Members, models.RoleAdmin, h.Invites.CancelInvite)).Methods(http.MethodDelete)

	return router
}
