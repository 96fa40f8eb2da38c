package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/garyjia/billed/internal/application/port"
	"github.com/garyjia/billed/internal/domain/entity"
	"github.com/garyjia/billed/internal/domain/event"
	"github.com/garyjia/billed/internal/domain/format"
	"github.com/garyjia/billed/internal/domain/workflow"
)

// StatusGroup is one collapsible region of the review dashboard
type StatusGroup struct {
	Index    int               `json:"index"`
	Status   string            `json:"status"`
	Label    string            `json:"label"`
	Expanded bool              `json:"expanded"`
	Count    int               `json:"count"`
	Bills    []entity.BillView `json:"bills"`
}

// Board is the review dashboard: one group per status, in a fixed order
type Board struct {
	Groups []*StatusGroup `json:"groups"`
}

// boardStatuses fixes group order and index; the index also names the
// group's proof modal
var boardStatuses = []string{
	entity.BillStatusPending,
	entity.BillStatusAccepted,
	entity.BillStatusRefused,
}

// GroupByStatus partitions bills into the pending, accepted and refused
// groups, each sorted most recent first. Bills with any other status are
// left out. Every group starts collapsed.
func GroupByStatus(bills []entity.Bill) *Board {
	buckets := make(map[string][]entity.Bill, len(boardStatuses))
	for _, b := range bills {
		buckets[b.Status] = append(buckets[b.Status], b)
	}

	board := &Board{Groups: make([]*StatusGroup, 0, len(boardStatuses))}
	for i, status := range boardStatuses {
		views := toViews(buckets[status])
		board.Groups = append(board.Groups, &StatusGroup{
			Index:  i + 1,
			Status: status,
			Label:  format.Status(status),
			Count:  len(views),
			Bills:  views,
		})
	}
	return board
}

// Group returns the group for status, nil for an unknown status
func (b *Board) Group(status string) *StatusGroup {
	for _, g := range b.Groups {
		if g.Status == status {
			return g
		}
	}
	return nil
}

// Toggle opens a collapsed group or collapses an open one. Groups are
// independent of each other.
func (b *Board) Toggle(status string) bool {
	g := b.Group(status)
	if g == nil {
		return false
	}
	g.Expanded = !g.Expanded
	return true
}

// DetailView is the review panel for one bill
type DetailView struct {
	Bill            entity.BillView    `json:"bill"`
	Variant         string             `json:"variant"`
	Actions         []workflow.Trigger `json:"actions"`
	CommentEditable bool               `json:"commentEditable"`
	CommentAdmin    string             `json:"commentAdmin"`
	Proof           ProofView          `json:"proof"`
}

const (
	VariantReview   = "review"
	VariantReadOnly = "readonly"
)

// detailVariants maps every lifecycle state to how its detail renders
var detailVariants = map[workflow.State]struct {
	name     string
	editable bool
}{
	workflow.StatePending:  {name: VariantReview, editable: true},
	workflow.StateAccepted: {name: VariantReadOnly},
	workflow.StateRefused:  {name: VariantReadOnly},
}

// ReviewService is the administrator's dashboard
type ReviewService interface {
	// Board lists every bill grouped by status. The groups named in
	// expanded start open.
	Board(ctx context.Context, reviewer port.Identity, expanded []string) (*Board, error)

	// OpenDetail returns the review panel for a bill
	OpenDetail(ctx context.Context, reviewer port.Identity, id string) (*DetailView, error)

	// AcceptSubmit accepts a pending bill with comment, then navigates to the dashboard
	AcceptSubmit(ctx context.Context, reviewer port.Identity, id, comment string, nav port.Navigator) (*entity.Bill, error)

	// RefuseSubmit refuses a pending bill with comment, then navigates to the dashboard
	RefuseSubmit(ctx context.Context, reviewer port.Identity, id, comment string, nav port.Navigator) (*entity.Bill, error)

	// OpenProof describes the dashboard overlay for a bill's attachment
	OpenProof(ctx context.Context, reviewer port.Identity, id string, viewportWidth int) (*ProofView, error)

	// RenderProof returns the attachment scaled down to width
	RenderProof(ctx context.Context, reviewer port.Identity, id string, width int) (*RenderedProof, error)

	// Export renders every bill as a workbook with one sheet per status
	Export(ctx context.Context, reviewer port.Identity) ([]byte, error)
}

type reviewServiceImpl struct {
	gateway   port.BillGateway
	resizer   port.ImageResizer
	exporter  port.BillExporter
	reporter  port.ErrorReporter
	publisher port.EventPublisher
	logger    Logger
}

// NewReviewService creates a new ReviewService
func NewReviewService(
	gateway port.BillGateway,
	resizer port.ImageResizer,
	exporter port.BillExporter,
	reporter port.ErrorReporter,
	publisher port.EventPublisher,
	logger Logger,
) ReviewService {
	return &reviewServiceImpl{
		gateway:   gateway,
		resizer:   resizer,
		exporter:  exporter,
		reporter:  reporter,
		publisher: publisher,
		logger:    logger,
	}
}

func (s *reviewServiceImpl) Board(ctx context.Context, reviewer port.Identity, expanded []string) (*Board, error) {
	bills, err := s.listAll(ctx, reviewer)
	if err != nil {
		return nil, err
	}

	board := GroupByStatus(bills)
	for _, status := range expanded {
		if g := board.Group(status); g != nil && !g.Expanded {
			board.Toggle(status)
		}
	}
	return board, nil
}

func (s *reviewServiceImpl) OpenDetail(ctx context.Context, reviewer port.Identity, id string) (*DetailView, error) {
	bill, err := s.loadForReview(ctx, reviewer, id)
	if err != nil {
		return nil, err
	}

	variant, ok := detailVariants[workflow.State(bill.Status)]
	if !ok {
		return nil, fmt.Errorf("bill %s: %w: %q", id, workflow.ErrInvalidState, bill.Status)
	}

	view := &DetailView{
		Bill:            ToView(*bill),
		Variant:         variant.name,
		Actions:         workflow.ActionsFor(bill.Status),
		CommentEditable: variant.editable,
		Proof:           s.proofView(bill, 0),
	}
	if !variant.editable {
		view.CommentAdmin = bill.CommentAdmin
	}
	return view, nil
}

func (s *reviewServiceImpl) AcceptSubmit(ctx context.Context, reviewer port.Identity, id, comment string, nav port.Navigator) (*entity.Bill, error) {
	return s.review(ctx, reviewer, id, comment, workflow.TriggerAccept, nav)
}

func (s *reviewServiceImpl) RefuseSubmit(ctx context.Context, reviewer port.Identity, id, comment string, nav port.Navigator) (*entity.Bill, error) {
	return s.review(ctx, reviewer, id, comment, workflow.TriggerRefuse, nav)
}

// review applies trigger to the bill. comment is what the reviewer typed at
// submit time and replaces any earlier commentAdmin, even when empty.
func (s *reviewServiceImpl) review(
	ctx context.Context,
	reviewer port.Identity,
	id, comment string,
	trigger workflow.Trigger,
	nav port.Navigator,
) (*entity.Bill, error) {
	bill, err := s.loadForReview(ctx, reviewer, id)
	if err != nil {
		return nil, err
	}

	machine, err := workflow.NewBillMachine(bill.Status)
	if err != nil {
		return nil, fmt.Errorf("bill %s: %w", id, err)
	}
	if err := machine.Fire(ctx, trigger); err != nil {
		return nil, fmt.Errorf("bill %s: %w", id, err)
	}

	updated := *bill
	updated.Status = machine.State().String()
	updated.CommentAdmin = comment

	data, err := json.Marshal(updated)
	if err != nil {
		return nil, fmt.Errorf("marshal bill: %w", err)
	}

	if err := s.gateway.Update(ctx, updated.ID, data); err != nil {
		reportTransport(s.reporter, err)
		s.logger.Error("Failed to update bill", "error", err, "bill_id", updated.ID, "trigger", trigger)
		return nil, fmt.Errorf("update bill %s: %w", updated.ID, err)
	}

	s.logger.Info("Bill reviewed", "bill_id", updated.ID, "status", updated.Status, "reviewer", reviewer.Email)

	if nav != nil {
		nav.Navigate(port.RouteDashboard)
	}
	if evtType, ok := event.ReviewTypeFor(updated.Status); ok && s.publisher != nil {
		s.publisher.DispatchAsync(context.WithoutCancel(ctx), event.NewEvent(evtType, updated, reviewer.Email))
	}

	return &updated, nil
}

func (s *reviewServiceImpl) OpenProof(ctx context.Context, reviewer port.Identity, id string, viewportWidth int) (*ProofView, error) {
	bill, err := s.loadForReview(ctx, reviewer, id)
	if err != nil {
		return nil, err
	}
	view := s.proofView(bill, viewportWidth)
	return &view, nil
}

func (s *reviewServiceImpl) RenderProof(ctx context.Context, reviewer port.Identity, id string, width int) (*RenderedProof, error) {
	bill, err := s.loadForReview(ctx, reviewer, id)
	if err != nil {
		return nil, err
	}
	return renderProof(ctx, s.gateway, s.resizer, s.reporter, bill, width)
}

func (s *reviewServiceImpl) Export(ctx context.Context, reviewer port.Identity) ([]byte, error) {
	bills, err := s.listAll(ctx, reviewer)
	if err != nil {
		return nil, err
	}

	board := GroupByStatus(bills)
	sheets := make([]port.BillSheet, 0, len(board.Groups))
	for _, g := range board.Groups {
		sheets = append(sheets, port.BillSheet{Name: g.Label, Bills: g.Bills})
	}

	data, err := s.exporter.Export(sheets)
	if err != nil {
		s.logger.Error("Failed to export bills", "error", err)
		return nil, fmt.Errorf("export bills: %w", err)
	}
	return data, nil
}

// proofView keys the overlay by the bill's status group
func (s *reviewServiceImpl) proofView(bill *entity.Bill, viewportWidth int) ProofView {
	index := 0
	for i, status := range boardStatuses {
		if status == bill.Status {
			index = i + 1
			break
		}
	}
	return ProofView{
		ModalID:  fmt.Sprintf("%s%d", adminProofModal, index),
		BillID:   bill.ID,
		FileURL:  bill.FileURL,
		FileName: bill.FileName,
		Width:    proofWidth(viewportWidth),
	}
}

func (s *reviewServiceImpl) listAll(ctx context.Context, reviewer port.Identity) ([]entity.Bill, error) {
	if !reviewer.IsAdmin() {
		return nil, fmt.Errorf("dashboard: %w", port.ErrForbidden)
	}

	bills, err := s.gateway.List(ctx, reviewer)
	if err != nil {
		reportTransport(s.reporter, err)
		s.logger.Error("Failed to list bills", "error", err)
		return nil, err
	}
	return bills, nil
}

func (s *reviewServiceImpl) loadForReview(ctx context.Context, reviewer port.Identity, id string) (*entity.Bill, error) {
	if !reviewer.IsAdmin() {
		return nil, fmt.Errorf("review bill %s: %w", id, port.ErrForbidden)
	}
	bill, err := s.gateway.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get bill %s: %w", id, err)
	}
	return bill, nil
}
