package authz

import (
	"database/sql"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/stanstork/stratum-spaces/internal/models"
)

// MembershipLookup resolves the role an account holds in a space. It returns sql.ErrNoRows
// for non-members.
type MembershipLookup interface {
	MemberRole(spaceID, accountID string) (models.SpaceRole, error)
}

// RequireSpaceRole ensures the requester holds at least the required role in the space named
// by the {spaceID} route variable.
func RequireSpaceRole(members MembershipLookup, required models.SpaceRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			accountID, ok := AccountIDFromRequest(r)
			if !ok {
				http.Error(w, "authentication required", http.StatusUnauthorized)
				return
			}
			spaceID := mux.Vars(r)["spaceID"]
			role, err := members.MemberRole(spaceID, accountID)
			if errors.Is(err, sql.ErrNoRows) {
				http.Error(w, "space not found", http.StatusNotFound)
				return
			}
			if err != nil {
				http.Error(w, "failed to load membership", http.StatusInternalServerError)
				return
			}
			if !role.HasAtLeast(required) {
				http.Error(w, "insufficient permissions", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireSpaceRoleHandler applies the role middleware inline when registering routes.
func RequireSpaceRoleHandler(members MembershipLookup, required models.SpaceRole, next http.HandlerFunc) http.Handler {
	return RequireSpaceRole(members, required)(next)
}
