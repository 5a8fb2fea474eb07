package workflows

import (
	"github.com/pkg/errors"
	"github.com/stanstork/stratum-spaces/internal/temporal"
	"github.com/stanstork/stratum-spaces/internal/temporal/activities"
	sdktemporal "go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

// DeliverInviteWorkflow emails a freshly saved invite and then marks it as sent. An invite
// cancelled in the meantime ends the workflow without error.
func DeliverInviteWorkflow(ctx workflow.Context, params temporal.DeliverInviteParams) (temporal.DeliverInviteResult, error) {
	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: temporal.DefaultActivityTimeout,
		RetryPolicy:         temporal.DeliveryRetryPolicy,
	})

	logger := workflow.GetLogger(ctx)
	logger.Info("Starting invite delivery", "InviteID", params.InviteID, "SpaceID", params.SpaceID)

	var a *activities.Activities
	result := temporal.DeliverInviteResult{InviteID: params.InviteID}

	err := workflow.ExecuteActivity(ctx, a.SendInviteEmailActivity, params.InviteID, params.SpaceID).Get(ctx, &result.Recipient)
	if isInviteGone(err) {
		logger.Info("Invite was cancelled before delivery", "InviteID", params.InviteID)
		return result, nil
	}
	if err != nil {
		logger.Error("Invite email failed", "InviteID", params.InviteID, "error", err)
		return result, err
	}

	err = workflow.ExecuteActivity(ctx, a.MarkInviteSentActivity, params.InviteID).Get(ctx, nil)
	if err != nil && !isInviteGone(err) {
		logger.Error("Failed to mark invite as sent", "InviteID", params.InviteID, "error", err)
		return result, err
	}

	result.Sent = true
	logger.Info("Invite delivered", "InviteID", params.InviteID)
	return result, nil
}

func isInviteGone(err error) bool {
	var appErr *sdktemporal.ApplicationError
	return errors.As(err, &appErr) && appErr.Type() == activities.ErrTypeInviteGone
}
