package fulfillment

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/testsuite"

	"github.com/Apurer/go-gin-pos-server/internal/domains/ordering/adapters/persistence/documents"
	"github.com/Apurer/go-gin-pos-server/internal/domains/ordering/domain"
	fulfillmentactivities "github.com/Apurer/go-gin-pos-server/internal/platform/temporal/activities/fulfillment"
)

type recordingPublisher struct {
	published []string
	err       error
}

func (p *recordingPublisher) PublishSubmitted(_ context.Context, order domain.SubmittedOrder) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, order.ID)
	return nil
}

type WorkflowSuite struct {
	suite.Suite
	testsuite.WorkflowTestSuite
}

func TestWorkflowSuite(t *testing.T) {
	suite.Run(t, new(WorkflowSuite))
}

func (s *WorkflowSuite) TestPublishesSubmittedOrder() {
	env := s.NewTestWorkflowEnvironment()
	publisher := &recordingPublisher{}
	activities := fulfillmentactivities.NewActivities(publisher)
	env.RegisterActivityWithOptions(activities.PublishSubmittedOrder, activity.RegisterOptions{Name: fulfillmentactivities.PublishSubmittedOrderActivityName})

	env.ExecuteWorkflow(Workflow, WorkflowInput{Order: documents.OrderDocument{ID: "o1", Status: "pending"}})

	s.True(env.IsWorkflowCompleted())
	s.NoError(env.GetWorkflowError())
	s.Equal([]string{"o1"}, publisher.published)
}

func (s *WorkflowSuite) TestRetriesUntilPublishSucceeds() {
	env := s.NewTestWorkflowEnvironment()
	activities := fulfillmentactivities.NewActivities(&recordingPublisher{})
	env.RegisterActivityWithOptions(activities.PublishSubmittedOrder, activity.RegisterOptions{Name: fulfillmentactivities.PublishSubmittedOrderActivityName})

	calls := 0
	env.OnActivity(fulfillmentactivities.PublishSubmittedOrderActivityName, mock.Anything, mock.Anything).
		Return(func(context.Context, documents.OrderDocument) error {
			calls++
			if calls < 3 {
				return errors.New("broker unavailable")
			}
			return nil
		})

	env.ExecuteWorkflow(Workflow, WorkflowInput{Order: documents.OrderDocument{ID: "o2"}})

	s.True(env.IsWorkflowCompleted())
	s.NoError(env.GetWorkflowError())
	s.Equal(3, calls)
}

func TestWorkflowID(t *testing.T) {
	require.Equal(t, "fulfillment-abc", WorkflowID("abc"))
}
