// Package service holds the bill workflows: submission, employee listing and
// administrative review. Services talk to the outside world only through
// the interfaces in package port.
package service

import (
	"errors"
	"fmt"
	"sort"

	"github.com/garyjia/billed/internal/application/port"
	"github.com/garyjia/billed/internal/domain/entity"
	"github.com/garyjia/billed/internal/domain/format"
)

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

var (
	// ErrMissingField marks a required form field or attachment left empty
	ErrMissingField = errors.New("required field missing")

	// ErrInvalidField marks a form field whose value cannot be used
	ErrInvalidField = errors.New("invalid field")

	// ErrUnsupportedAttachment marks an attachment outside the allowed image types
	ErrUnsupportedAttachment = errors.New("unsupported attachment type")
)

// ValidationError is raised before any gateway call. It is shown to the
// user and never reported to the ErrorReporter.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// IsValidationError reports whether err carries a ValidationError
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// reportTransport hands err to reporter unless the caller caused it.
// Authorization and malformed-record errors stay with the caller.
func reportTransport(reporter port.ErrorReporter, err error) {
	if reporter == nil || IsValidationError(err) ||
		errors.Is(err, port.ErrForbidden) || errors.Is(err, port.ErrMalformedBill) {
		return
	}
	reporter.Report(err)
}

// ProofView describes the overlay showing a bill's attachment
type ProofView struct {
	ModalID  string `json:"modalId"`
	BillID   string `json:"billId"`
	FileURL  string `json:"fileUrl"`
	FileName string `json:"fileName"`
	Width    int    `json:"width"`
}

// RenderedProof is an attachment scaled for display
type RenderedProof struct {
	FileName    string
	ContentType string
	Data        []byte
}

const (
	employeeProofModal = "modaleFile"
	adminProofModal    = "modaleFileAdmin"
)

// proofWidth caps the image at half the viewport; zero keeps natural size
func proofWidth(viewportWidth int) int {
	if viewportWidth <= 0 {
		return 0
	}
	return viewportWidth / 2
}

// SortByDateDesc orders bills most recent first on their stored date.
// Dates that cannot be parsed go last, in their original order.
func SortByDateDesc(bills []entity.Bill) {
	sort.SliceStable(bills, func(i, j int) bool {
		di, iok := format.ParseDate(bills[i].Date)
		dj, jok := format.ParseDate(bills[j].Date)
		switch {
		case iok && jok:
			return di.After(dj)
		case iok != jok:
			return iok
		default:
			return false
		}
	})
}

// ToView formats a bill for display. Each bill's date and status are
// formatted exactly once.
func ToView(bill entity.Bill) entity.BillView {
	view := entity.BillView{
		Bill:       bill,
		RawDate:    bill.Date,
		StatusCode: bill.Status,
	}
	view.Date = format.Date(bill.Date)
	view.Status = format.Status(bill.Status)
	return view
}

// toViews sorts on the raw dates first, then formats
func toViews(bills []entity.Bill) []entity.BillView {
	SortByDateDesc(bills)
	views := make([]entity.BillView, 0, len(bills))
	for _, b := range bills {
		views = append(views, ToView(b))
	}
	return views
}

// canSee reports whether viewer may read bill
func canSee(viewer port.Identity, bill *entity.Bill) bool {
	return viewer.IsAdmin() || (viewer.Email != "" && viewer.Email == bill.Email)
}
