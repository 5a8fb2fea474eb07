package workflow

import (
	"context"

	"github.com/stanstork/stratum-spaces/internal/models"
)

// AccountFinder looks up registered accounts. It returns nil, nil when nobody holds email.
type AccountFinder interface {
	FindAccountByEmail(ctx context.Context, email string) (*models.Account, error)
}

// InviteSaver persists a sealed invite and returns the stored copy.
type InviteSaver interface {
	SaveInvite(ctx context.Context, invite models.Invite) (models.Invite, error)
}

// Pinger reports whether the server can be reached.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Sealer encrypts invite plaintext. *seal.Sealer implements it.
type Sealer interface {
	Seal(fields models.InviteFields, recipient *[32]byte, passphrase string) (*models.SealedPayload, error)
}

// Feedback is the non-blocking notification surface shown to the user.
type Feedback interface {
	Message(text string)
	Error(text string, err error)
}

// LoadingIndicator is the global busy toggle. Calls must be idempotent.
type LoadingIndicator interface {
	SetLoading(loading bool)
}

// View re-renders the dialog. Render is called with the controller locked and must not call
// back into the controller.
type View interface {
	Render(snap Snapshot)
}
