package temporal

import (
	"time"

	"go.temporal.io/sdk/temporal"
)

// TaskQueueName is the Temporal task queue that delivers space invites.
const TaskQueueName = "STRATUM_SPACE_INVITES"

// DeliverInviteWorkflowName is the registered name of the delivery workflow.
const DeliverInviteWorkflowName = "DeliverInviteWorkflow"

// DeliverWorkflowIDPrefix prefixes delivery workflow IDs; the invite ID follows it, so a
// second start for the same invite is rejected by Temporal.
const DeliverWorkflowIDPrefix = "space-invite-delivery-"

// DefaultActivityTimeout bounds each delivery activity.
const DefaultActivityTimeout = 2 * time.Minute

// DeliveryRetryPolicy retries SMTP hiccups for a while before giving up.
var DeliveryRetryPolicy = &temporal.RetryPolicy{
	InitialInterval:    5 * time.Second,
	BackoffCoefficient: 2.0,
	MaximumInterval:    5 * time.Minute,
	MaximumAttempts:    8,
}

// DeliverInviteParams is the input of DeliverInviteWorkflow.
type DeliverInviteParams struct {
	InviteID string
	SpaceID  string
}

// DeliverInviteResult reports what the workflow did.
type DeliverInviteResult struct {
	InviteID  string
	Recipient string
	Sent      bool
}

// WorkflowID returns the delivery workflow ID for an invite.
func WorkflowID(inviteID string) string {
	return DeliverWorkflowIDPrefix + inviteID
}
