// Package worker hosts the Temporal worker that delivers space invites.
package worker

import (
	"github.com/rs/zerolog"
	"github.com/stanstork/stratum-spaces/internal/temporal"
	"github.com/stanstork/stratum-spaces/internal/temporal/activities"
	"github.com/stanstork/stratum-spaces/internal/temporal/workflows"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"
)

// Worker wraps a Temporal worker bound to the invite delivery task queue.
type Worker struct {
	w      worker.Worker
	logger zerolog.Logger
}

// New registers the delivery workflow and its activities.
func New(c client.Client, acts *activities.Activities, logger zerolog.Logger) *Worker {
	w := worker.New(c, temporal.TaskQueueName, worker.Options{})
	w.RegisterWorkflowWithOptions(workflows.DeliverInviteWorkflow, workflow.RegisterOptions{
		Name: temporal.DeliverInviteWorkflowName,
	})
	w.RegisterActivity(acts)
	return &Worker{w: w, logger: logger.With().Str("component", "invite_worker").Logger()}
}

// Start runs the worker in the background.
func (w *Worker) Start() error {
	w.logger.Info().Str("task_queue", temporal.TaskQueueName).Msg("starting Temporal worker")
	return w.w.Start()
}

func (w *Worker) Stop() {
	w.logger.Info().Msg("stopping Temporal worker")
	w.w.Stop()
	w.logger.Info().Msg("Temporal worker stopped")
}
