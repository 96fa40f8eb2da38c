package service

import (
	"context"
	"fmt"

	"github.com/garyjia/billed/internal/application/port"
	"github.com/garyjia/billed/internal/domain/entity"
)

// ListingService is the employee's view of their bills
type ListingService interface {
	// GetBills returns the viewer's bills, most recent first, formatted for
	// display. Gateway errors are returned unmodified.
	GetBills(ctx context.Context, viewer port.Identity) ([]entity.BillView, error)

	// OpenProof describes the overlay showing a bill's attachment
	OpenProof(ctx context.Context, viewer port.Identity, id string, viewportWidth int) (*ProofView, error)

	// RenderProof returns the attachment scaled down to width
	RenderProof(ctx context.Context, viewer port.Identity, id string, width int) (*RenderedProof, error)
}

type listingServiceImpl struct {
	gateway  port.BillGateway
	resizer  port.ImageResizer
	reporter port.ErrorReporter
	logger   Logger
}

// NewListingService creates a new ListingService
func NewListingService(
	gateway port.BillGateway,
	resizer port.ImageResizer,
	reporter port.ErrorReporter,
	logger Logger,
) ListingService {
	return &listingServiceImpl{
		gateway:  gateway,
		resizer:  resizer,
		reporter: reporter,
		logger:   logger,
	}
}

func (s *listingServiceImpl) GetBills(ctx context.Context, viewer port.Identity) ([]entity.BillView, error) {
	bills, err := s.gateway.List(ctx, viewer)
	if err != nil {
		reportTransport(s.reporter, err)
		s.logger.Error("Failed to list bills", "error", err, "email", viewer.Email)
		return nil, err
	}
	return toViews(bills), nil
}

func (s *listingServiceImpl) OpenProof(ctx context.Context, viewer port.Identity, id string, viewportWidth int) (*ProofView, error) {
	bill, err := loadVisibleBill(ctx, s.gateway, viewer, id)
	if err != nil {
		return nil, err
	}

	return &ProofView{
		ModalID:  employeeProofModal,
		BillID:   bill.ID,
		FileURL:  bill.FileURL,
		FileName: bill.FileName,
		Width:    proofWidth(viewportWidth),
	}, nil
}

func (s *listingServiceImpl) RenderProof(ctx context.Context, viewer port.Identity, id string, width int) (*RenderedProof, error) {
	bill, err := loadVisibleBill(ctx, s.gateway, viewer, id)
	if err != nil {
		return nil, err
	}
	return renderProof(ctx, s.gateway, s.resizer, s.reporter, bill, width)
}

// loadVisibleBill fetches a bill and checks the viewer may see it
func loadVisibleBill(ctx context.Context, gateway port.BillGateway, viewer port.Identity, id string) (*entity.Bill, error) {
	bill, err := gateway.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get bill %s: %w", id, err)
	}
	if !canSee(viewer, bill) {
		return nil, fmt.Errorf("bill %s: %w", id, port.ErrForbidden)
	}
	return bill, nil
}

// renderProof reads the attachment stored under the bill's key and scales
// it when a width is asked for
func renderProof(
	ctx context.Context,
	gateway port.BillGateway,
	resizer port.ImageResizer,
	reporter port.ErrorReporter,
	bill *entity.Bill,
	width int,
) (*RenderedProof, error) {
	file, err := gateway.Attachment(ctx, bill.ID)
	if err != nil {
		reportTransport(reporter, err)
		return nil, fmt.Errorf("read attachment %s: %w", bill.ID, err)
	}

	proof := &RenderedProof{
		FileName:    file.FileName,
		ContentType: file.ContentType,
		Data:        file.Data,
	}
	if width <= 0 || resizer == nil {
		return proof, nil
	}

	data, contentType, err := resizer.Resize(file.Data, file.ContentType, width)
	if err != nil {
		return nil, fmt.Errorf("resize attachment %s: %w", bill.ID, err)
	}
	proof.Data = data
	proof.ContentType = contentType
	return proof, nil
}
