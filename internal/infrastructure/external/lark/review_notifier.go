package lark

import (
	"context"
	"fmt"
	"strings"

	"github.com/garyjia/billed/internal/application/port"
	"github.com/garyjia/billed/internal/domain/entity"
	"github.com/garyjia/billed/internal/domain/format"
)

// ReviewNotifier implements port.Notifier over Lark direct messages
type ReviewNotifier struct {
	messenger *Messenger
}

// NewReviewNotifier creates a new ReviewNotifier
func NewReviewNotifier(messenger *Messenger) *ReviewNotifier {
	return &ReviewNotifier{messenger: messenger}
}

// NotifyReview tells the bill's owner about the decision
func (n *ReviewNotifier) NotifyReview(ctx context.Context, bill entity.Bill) error {
	return n.messenger.SendText(ctx, bill.Email, ReviewMessage(bill))
}

// ReviewMessage is the text sent to a bill's owner after review
func ReviewMessage(bill entity.Bill) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Votre note de frais \"%s\" du %s (%d €) est : %s.",
		bill.Name, format.Date(bill.Date), bill.Amount, format.Status(bill.Status))
	if c := strings.TrimSpace(bill.CommentAdmin); c != "" {
		fmt.Fprintf(&b, "\nCommentaire : %s", c)
	}
	return b.String()
}

var _ port.Notifier = (*ReviewNotifier)(nil)
