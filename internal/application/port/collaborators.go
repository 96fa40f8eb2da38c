package port

import (
	"context"

	"github.com/garyjia/billed/internal/domain/entity"
	"github.com/garyjia/billed/internal/domain/event"
)

// Identity is the authenticated caller
type Identity struct {
	Email string `json:"email"`
	Type  string `json:"type"`
}

// IsAdmin reports whether the caller may review bills
func (i Identity) IsAdmin() bool {
	return i.Type == entity.UserTypeAdmin
}

// Route is a logical page identifier
type Route string

const (
	RouteLogin     Route = "/"
	RouteBills     Route = "#employee/bills"
	RouteNewBill   Route = "#employee/bill/new"
	RouteDashboard Route = "#admin/dashboard"
)

// Navigator moves the caller to another page. Fire and forget.
type Navigator interface {
	Navigate(route Route)
}

// NavigatorFunc adapts a function to Navigator
type NavigatorFunc func(route Route)

// Navigate calls f(route)
func (f NavigatorFunc) Navigate(route Route) {
	f(route)
}

// ErrorReporter receives transport failures, once per failure
type ErrorReporter interface {
	Report(err error)
}

// Notifier tells a bill's owner about a review decision
type Notifier interface {
	NotifyReview(ctx context.Context, bill entity.Bill) error
}

// EventPublisher hands domain events to subscribers without waiting for them
type EventPublisher interface {
	DispatchAsync(ctx context.Context, evt *event.Event)
}

// ImageResizer scales an image attachment down to a maximum width
type ImageResizer interface {
	Resize(data []byte, contentType string, maxWidth int) ([]byte, string, error)
}

// BillSheet is one sheet of an exported workbook
type BillSheet struct {
	Name  string
	Bills []entity.BillView
}

// BillExporter renders bills as a spreadsheet document
type BillExporter interface {
	Export(sheets []BillSheet) ([]byte, error)
}
