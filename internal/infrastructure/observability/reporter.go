// Package observability holds the error sink transport failures are sent to.
package observability

import (
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/garyjia/billed/internal/application/port"
)

// ZapReporter implements port.ErrorReporter by logging each failure once
type ZapReporter struct {
	logger *zap.Logger
	count  atomic.Int64
}

// NewZapReporter creates a new ZapReporter
func NewZapReporter(logger *zap.Logger) *ZapReporter {
	return &ZapReporter{logger: logger.Named("error_sink")}
}

// Report logs err. Nil errors are ignored.
func (r *ZapReporter) Report(err error) {
	if err == nil {
		return
	}
	n := r.count.Add(1)
	r.logger.Error("Transport failure", zap.Error(err), zap.Int64("seq", n))
}

// Count returns how many errors have been reported
func (r *ZapReporter) Count() int64 {
	return r.count.Load()
}

var _ port.ErrorReporter = (*ZapReporter)(nil)
