package dispatcher

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/garyjia/billed/internal/domain/entity"
	"github.com/garyjia/billed/internal/domain/event"
)

// MockNotifier mocks the port.Notifier interface
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) NotifyReview(ctx context.Context, bill entity.Bill) error {
	args := m.Called(ctx, bill)
	return args.Error(0)
}

func TestReviewNotificationHandler(t *testing.T) {
	refused := entity.Bill{ID: "47qAXb6fIm2zOKkLzMro", Email: "a@a", Status: entity.BillStatusRefused, CommentAdmin: "pas de justificatif"}

	t.Run("notifies the owner of a review", func(t *testing.T) {
		notifier := new(MockNotifier)
		notifier.On("NotifyReview", mock.Anything, refused).Return(nil).Once()

		h := ReviewNotificationHandler(notifier)
		assert.NoError(t, h(context.Background(), event.NewEvent(event.TypeBillRefused, refused, "admin@a")))
		notifier.AssertExpectations(t)
	})

	t.Run("ignores submissions", func(t *testing.T) {
		notifier := new(MockNotifier)

		h := ReviewNotificationHandler(notifier)
		pending := refused
		pending.Status = entity.BillStatusPending
		assert.NoError(t, h(context.Background(), event.NewEvent(event.TypeBillSubmitted, pending, "a@a")))
		notifier.AssertNotCalled(t, "NotifyReview", mock.Anything, mock.Anything)
	})

	t.Run("wraps notifier errors", func(t *testing.T) {
		notifier := new(MockNotifier)
		sendErr := errors.New("lark unavailable")
		notifier.On("NotifyReview", mock.Anything, mock.AnythingOfType("entity.Bill")).Return(sendErr)

		h := ReviewNotificationHandler(notifier)
		err := h(context.Background(), event.NewEvent(event.TypeBillRefused, refused, "admin@a"))
		assert.ErrorIs(t, err, sendErr)
		assert.Contains(t, err.Error(), refused.ID)
	})
}
