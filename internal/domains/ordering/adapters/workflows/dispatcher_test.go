package workflows

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"

	"github.com/Apurer/go-gin-pos-server/internal/domains/ordering/domain"
	fulfillmentworkflows "github.com/Apurer/go-gin-pos-server/internal/platform/temporal/workflows/fulfillment"
)

type fakeStarter struct {
	options client.StartWorkflowOptions
	name    interface{}
	args    []interface{}
	err     error
}

func (f *fakeStarter) ExecuteWorkflow(_ context.Context, options client.StartWorkflowOptions, workflow interface{}, args ...interface{}) (client.WorkflowRun, error) {
	f.options, f.name, f.args = options, workflow, args
	return nil, f.err
}

type recordingPublisher struct{ ids []string }

func (p *recordingPublisher) PublishSubmitted(_ context.Context, order domain.SubmittedOrder) error {
	p.ids = append(p.ids, order.ID)
	return nil
}

func TestTemporalDispatcher_StartsWorkflowPerOrder(t *testing.T) {
	starter := &fakeStarter{}
	err := NewTemporalDispatcher(starter).Dispatch(context.Background(), domain.SubmittedOrder{ID: "o1", Status: domain.StatusPending})
	require.NoError(t, err)

	assert.Equal(t, "fulfillment-o1", starter.options.ID)
	assert.Equal(t, fulfillmentworkflows.TaskQueue, starter.options.TaskQueue)
	assert.Equal(t, fulfillmentworkflows.WorkflowName, starter.name)
	require.Len(t, starter.args, 1)
	input, ok := starter.args[0].(fulfillmentworkflows.WorkflowInput)
	require.True(t, ok)
	assert.Equal(t, "o1", input.Order.ID)
	assert.Equal(t, "pending", input.Order.Status)
}

func TestTemporalDispatcher_AlreadyStartedIsSuccess(t *testing.T) {
	starter := &fakeStarter{err: serviceerror.NewWorkflowExecutionAlreadyStarted("exists", "", "run")}
	require.NoError(t, NewTemporalDispatcher(starter).Dispatch(context.Background(), domain.SubmittedOrder{ID: "o1"}))
}

func TestInlineDispatcher_Publishes(t *testing.T) {
	publisher := &recordingPublisher{}
	require.NoError(t, NewInlineDispatcher(publisher).Dispatch(context.Background(), domain.SubmittedOrder{ID: "o9"}))
	assert.Equal(t, []string{"o9"}, publisher.ids)
}
