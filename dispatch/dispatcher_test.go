package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"realtime-lab/domain"
	"realtime-lab/errors"
	"realtime-lab/mocks"
	"realtime-lab/observability"
)

func TestDispatcher_Publish_NobodyListening(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	router := mocks.NewMockIRouter(ctrl)
	transport := mocks.NewMockTransport(ctrl)

	// Given a target resolving to no connection
	router.EXPECT().Resolve(gomock.Any()).Return(nil).Times(1)

	dispatcher := NewDispatcher(slog.Default(), router, transport, observability.NewMetrics())

	// When publishing
	delivered, err := dispatcher.Publish(context.Background(), domain.ToUser("ghost"), "new-notification", nil)

	// Then zero delivered is a valid outcome, not an error
	req.NoError(err)
	req.Zero(delivered)
}

func TestDispatcher_Publish_PartialFailureSkipsConnection(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	router := mocks.NewMockIRouter(ctrl)
	transport := mocks.NewMockTransport(ctrl)

	healthy := domain.ConnectionID(uuid.NewString())
	stalled := domain.ConnectionID(uuid.NewString())
	other := domain.ConnectionID(uuid.NewString())

	// Given three resolved connections, one refusing the emit
	router.EXPECT().Resolve(gomock.Any()).
		Return([]domain.ConnectionID{healthy, stalled, other}).Times(1)
	transport.EXPECT().Emit(gomock.Any(), healthy, "new-message", gomock.Any()).Return(nil)
	transport.EXPECT().Emit(gomock.Any(), stalled, "new-message", gomock.Any()).
		Return(errors.ErrSlowConsumer)
	transport.EXPECT().Emit(gomock.Any(), other, "new-message", gomock.Any()).Return(nil)

	dispatcher := NewDispatcher(slog.Default(), router, transport, observability.NewMetrics())

	// When publishing
	delivered, err := dispatcher.Publish(context.Background(), domain.ToChat("support"), "new-message", "payload")

	// Then the failure is absorbed and the rest is delivered exactly once
	req.NoError(err)
	req.Equal(2, delivered)
}

func TestDispatcher_Publish_AllConnectionsFail(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	router := mocks.NewMockIRouter(ctrl)
	transport := mocks.NewMockTransport(ctrl)

	first := domain.ConnectionID(uuid.NewString())
	second := domain.ConnectionID(uuid.NewString())

	router.EXPECT().Resolve(gomock.Any()).
		Return([]domain.ConnectionID{first, second}).Times(1)
	transport.EXPECT().Emit(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(fmt.Errorf("socket gone")).Times(2)

	dispatcher := NewDispatcher(slog.Default(), router, transport, observability.NewMetrics())

	delivered, err := dispatcher.Publish(context.Background(), domain.ToChat("support"), "new-message", nil)

	req.ErrorIs(err, errors.ErrDispatchFailed)
	req.Zero(delivered)
}
