package activities

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pkg/errors"
	"github.com/stanstork/stratum-spaces/internal/models"
	"github.com/stanstork/stratum-spaces/internal/notification"
	"github.com/stanstork/stratum-spaces/internal/repository"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"
)

// ErrTypeInviteGone marks a delivery for an invite that was cancelled before it went out.
const ErrTypeInviteGone = "InviteGone"

type Activities struct {
	Invites           repository.InviteRepository
	Spaces            repository.SpaceRepository
	Mailer            notification.InviteMailer
	InviteURLTemplate string
}

// SendInviteEmailActivity emails the recipient a link to the invite and returns their address.
func (a *Activities) SendInviteEmailActivity(ctx context.Context, inviteID, spaceID string) (string, error) {
	logger := activity.GetLogger(ctx)
	logger.Info("Sending invite email", "inviteID", inviteID, "spaceID", spaceID)

	invite, err := a.Invites.GetInvite(inviteID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", temporal.NewNonRetryableApplicationError("invite no longer exists", ErrTypeInviteGone, err)
	}
	if err != nil {
		return "", errors.Wrap(err, "failed to load invite")
	}

	space, err := a.Spaces.GetSpace(invite.SpaceID)
	if err != nil {
		return "", errors.Wrap(err, "failed to load space")
	}

	msg := notification.InviteEmail{
		To:         invite.ToUser,
		SpaceTitle: space.Title,
		Title:      invite.Title,
		Role:       string(invite.Role),
		InviteURL:  fmt.Sprintf(a.InviteURLTemplate, invite.SpaceID, invite.ID),
		Protected:  invite.Sealed != nil && invite.Sealed.Protection != models.ProtectionNone,
	}
	if err := a.Mailer.SendInvite(msg); err != nil {
		logger.Warn("Invite email failed", "inviteID", inviteID, "error", err)
		return "", err
	}
	return invite.ToUser, nil
}

// MarkInviteSentActivity records that the email went out.
func (a *Activities) MarkInviteSentActivity(ctx context.Context, inviteID string) error {
	logger := activity.GetLogger(ctx)
	logger.Info("Marking invite as sent", "inviteID", inviteID)

	err := a.Invites.MarkInviteSent(inviteID)
	if errors.Is(err, sql.ErrNoRows) {
		return temporal.NewNonRetryableApplicationError("invite no longer exists", ErrTypeInviteGone, err)
	}
	return err
}
