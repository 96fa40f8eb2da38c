// Package notification holds the fallback notifier used when Lark is not
// configured.
package notification

import (
	"context"

	"go.uber.org/zap"

	"github.com/garyjia/billed/internal/application/port"
	"github.com/garyjia/billed/internal/domain/entity"
)

// LogNotifier implements port.Notifier by writing the decision to the log
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a new LogNotifier
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// NotifyReview logs the review outcome for the bill's owner
func (n *LogNotifier) NotifyReview(ctx context.Context, bill entity.Bill) error {
	n.logger.Info("Review notification",
		zap.String("email", bill.Email),
		zap.String("bill_id", bill.ID),
		zap.String("status", bill.Status),
		zap.String("comment_admin", bill.CommentAdmin))
	return nil
}

var _ port.Notifier = (*LogNotifier)(nil)
