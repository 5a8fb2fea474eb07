package temporal

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stanstork/stratum-spaces/internal/models"
	"go.temporal.io/sdk/client"
)

// Dispatcher starts one delivery workflow per saved invite.
type Dispatcher struct {
	client client.Client
	logger zerolog.Logger
}

func NewDispatcher(c client.Client, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{client: c, logger: logger.With().Str("component", "invite_dispatcher").Logger()}
}

func (d *Dispatcher) StartDelivery(ctx context.Context, invite models.Invite) error {
	if invite.ID == "" {
		return errors.New("invite has no id")
	}
	opts := client.StartWorkflowOptions{
		ID:        WorkflowID(invite.ID),
		TaskQueue: TaskQueueName,
	}
	params := DeliverInviteParams{InviteID: invite.ID, SpaceID: invite.SpaceID}

	run, err := d.client.ExecuteWorkflow(ctx, opts, DeliverInviteWorkflowName, params)
	if err != nil {
		return errors.Wrapf(err, "start delivery for invite %s", invite.ID)
	}
	d.logger.Info().Str("workflow_id", run.GetID()).Str("run_id", run.GetRunID()).Msg("invite delivery started")
	return nil
}
