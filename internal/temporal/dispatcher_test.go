package temporal

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stanstork/stratum-spaces/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/mocks"
)

func TestStartDelivery(t *testing.T) {
	c := &mocks.Client{}
	run := &mocks.WorkflowRun{}
	run.On("GetID").Return("space-invite-delivery-inv-1")
	run.On("GetRunID").Return("run-1")

	matchOpts := mock.MatchedBy(func(o client.StartWorkflowOptions) bool {
		return o.ID == "space-invite-delivery-inv-1" && o.TaskQueue == TaskQueueName
	})
	c.On("ExecuteWorkflow", mock.Anything, matchOpts, DeliverInviteWorkflowName,
		DeliverInviteParams{InviteID: "inv-1", SpaceID: "space-1"}).Return(run, nil).Once()

	d := NewDispatcher(c, zerolog.Nop())
	require.NoError(t, d.StartDelivery(context.Background(), models.Invite{ID: "inv-1", SpaceID: "space-1"}))
	c.AssertExpectations(t)
}

func TestStartDeliveryErrors(t *testing.T) {
	c := &mocks.Client{}
	c.On("ExecuteWorkflow", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("frontend unavailable"))

	d := NewDispatcher(c, zerolog.Nop())
	err := d.StartDelivery(context.Background(), models.Invite{ID: "inv-1", SpaceID: "space-1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "inv-1")

	assert.Error(t, d.StartDelivery(context.Background(), models.Invite{}))
}
