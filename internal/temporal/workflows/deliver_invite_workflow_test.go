package workflows

import (
	"testing"

	"github.com/stanstork/stratum-spaces/internal/temporal"
	"github.com/stanstork/stratum-spaces/internal/temporal/activities"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	sdktemporal "go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/testsuite"
)

type DeliverInviteSuite struct {
	suite.Suite
	testsuite.WorkflowTestSuite

	env *testsuite.TestWorkflowEnvironment
	a   *activities.Activities
}

func TestDeliverInviteSuite(t *testing.T) {
	suite.Run(t, new(DeliverInviteSuite))
}

func (s *DeliverInviteSuite) SetupTest() {
	s.env = s.NewTestWorkflowEnvironment()
	s.a = &activities.Activities{}
	s.env.RegisterActivity(s.a)
}

func (s *DeliverInviteSuite) AfterTest(_, _ string) {
	s.env.AssertExpectations(s.T())
}

var params = temporal.DeliverInviteParams{InviteID: "inv-1", SpaceID: "space-1"}

func (s *DeliverInviteSuite) TestSendsAndMarks() {
	s.env.OnActivity(s.a.SendInviteEmailActivity, mock.Anything, "inv-1", "space-1").Return("bob@example.com", nil).Once()
	s.env.OnActivity(s.a.MarkInviteSentActivity, mock.Anything, "inv-1").Return(nil).Once()

	s.env.ExecuteWorkflow(DeliverInviteWorkflow, params)

	s.True(s.env.IsWorkflowCompleted())
	s.NoError(s.env.GetWorkflowError())
	var result temporal.DeliverInviteResult
	s.NoError(s.env.GetWorkflowResult(&result))
	s.Equal(temporal.DeliverInviteResult{InviteID: "inv-1", Recipient: "bob@example.com", Sent: true}, result)
}

func (s *DeliverInviteSuite) TestCancelledInviteEndsQuietly() {
	gone := sdktemporal.NewNonRetryableApplicationError("invite no longer exists", activities.ErrTypeInviteGone, nil)
	s.env.OnActivity(s.a.SendInviteEmailActivity, mock.Anything, "inv-1", "space-1").Return("", gone).Once()

	s.env.ExecuteWorkflow(DeliverInviteWorkflow, params)

	s.True(s.env.IsWorkflowCompleted())
	s.NoError(s.env.GetWorkflowError())
	var result temporal.DeliverInviteResult
	s.NoError(s.env.GetWorkflowResult(&result))
	s.False(result.Sent)
}

func (s *DeliverInviteSuite) TestMailFailureFailsWorkflow() {
	smtpErr := sdktemporal.NewNonRetryableApplicationError("relay refused", "SMTPError", nil)
	s.env.OnActivity(s.a.SendInviteEmailActivity, mock.Anything, "inv-1", "space-1").Return("", smtpErr).Once()

	s.env.ExecuteWorkflow(DeliverInviteWorkflow, params)

	s.True(s.env.IsWorkflowCompleted())
	s.Error(s.env.GetWorkflowError())
}

func (s *DeliverInviteSuite) TestInviteCancelledAfterSendStillCompletes() {
	gone := sdktemporal.NewNonRetryableApplicationError("invite no longer exists", activities.ErrTypeInviteGone, nil)
	s.env.OnActivity(s.a.SendInviteEmailActivity, mock.Anything, "inv-1", "space-1").Return("bob@example.com", nil).Once()
	s.env.OnActivity(s.a.MarkInviteSentActivity, mock.Anything, "inv-1").Return(gone).Once()

	s.env.ExecuteWorkflow(DeliverInviteWorkflow, params)

	s.NoError(s.env.GetWorkflowError())
	var result temporal.DeliverInviteResult
	s.NoError(s.env.GetWorkflowResult(&result))
	s.True(result.Sent)
}
