package dispatcher

import (
	"context"
	"fmt"

	"github.com/garyjia/billed/internal/application/port"
	"github.com/garyjia/billed/internal/domain/event"
)

// Handler processes domain events
type Handler func(ctx context.Context, evt *event.Event) error

// HandlerInfo contains handler metadata for debugging
type HandlerInfo struct {
	Name      string
	EventType event.Type
	Handler   Handler
}

// ReviewNotificationHandler tells a bill's owner that it was accepted or
// refused. Other event types are ignored.
func ReviewNotificationHandler(notifier port.Notifier) Handler {
	return func(ctx context.Context, evt *event.Event) error {
		if evt.Type != event.TypeBillAccepted && evt.Type != event.TypeBillRefused {
			return nil
		}
		if err := notifier.NotifyReview(ctx, evt.Bill); err != nil {
			return fmt.Errorf("notify %s about bill %s: %w", evt.Bill.Email, evt.BillID(), err)
		}
		return nil
	}
}

// RegisterReviewNotifications subscribes notifier to both review outcomes
func RegisterReviewNotifications(d Dispatcher, notifier port.Notifier) {
	h := ReviewNotificationHandler(notifier)
	d.SubscribeNamed(event.TypeBillAccepted, "notify-owner-accepted", h)
	d.SubscribeNamed(event.TypeBillRefused, "notify-owner-refused", h)
}
