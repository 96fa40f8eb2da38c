package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/billed/internal/application/port"
	"github.com/garyjia/billed/internal/domain/entity"
)

func TestSortByDateDesc(t *testing.T) {
	bills := []entity.Bill{
		{ID: "a", Date: "2001-01-01"},
		{ID: "b", Date: "not a date"},
		{ID: "c", Date: "2004-04-04"},
		{ID: "d", Date: "2002-02-02"},
		{ID: "e", Date: ""},
	}

	SortByDateDesc(bills)

	ids := make([]string, 0, len(bills))
	for _, b := range bills {
		ids = append(ids, b.ID)
	}
	assert.Equal(t, []string{"c", "d", "a", "b", "e"}, ids)
}

func TestListingService_GetBills(t *testing.T) {
	gw := &mockGateway{
		listFunc: func(ctx context.Context, viewer port.Identity) ([]entity.Bill, error) {
			return []entity.Bill{
				{ID: "1", Date: "2003-03-03", Status: entity.BillStatusRefused},
				{ID: "2", Date: "2004-04-04", Status: entity.BillStatusPending},
				{ID: "3", Date: "2001-01-01", Status: entity.BillStatusAccepted},
			}, nil
		},
	}
	svc := NewListingService(gw, &mockResizer{}, &mockReporter{}, &mockLogger{})

	views, err := svc.GetBills(context.Background(), employee)
	require.NoError(t, err)
	require.Len(t, views, 3)

	assert.Equal(t, "2", views[0].ID)
	assert.Equal(t, "4 Avr. 04", views[0].Date)
	assert.Equal(t, "2004-04-04", views[0].RawDate)
	assert.Equal(t, "En attente", views[0].Status)
	assert.Equal(t, entity.BillStatusPending, views[0].StatusCode)

	assert.Equal(t, "1", views[1].ID)
	assert.Equal(t, "Refusé", views[1].Status)
	assert.Equal(t, "3", views[2].ID)
	assert.Equal(t, "Accepté", views[2].Status)
}

func TestListingService_GetBills_KeepsUnparseableValues(t *testing.T) {
	gw := &mockGateway{
		listFunc: func(ctx context.Context, viewer port.Identity) ([]entity.Bill, error) {
			return []entity.Bill{{ID: "x", Date: "demain", Status: "archived"}}, nil
		},
	}
	svc := NewListingService(gw, nil, &mockReporter{}, &mockLogger{})

	views, err := svc.GetBills(context.Background(), employee)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "demain", views[0].Date)
	assert.Equal(t, "archived", views[0].Status)
}

func TestListingService_GetBills_Error(t *testing.T) {
	listErr := errors.New("Erreur 404")
	gw := &mockGateway{
		listFunc: func(ctx context.Context, viewer port.Identity) ([]entity.Bill, error) {
			return nil, listErr
		},
	}
	reporter := &mockReporter{}
	svc := NewListingService(gw, nil, reporter, &mockLogger{})

	views, err := svc.GetBills(context.Background(), employee)
	assert.Nil(t, views)
	assert.Same(t, listErr, err)
	assert.Equal(t, []error{listErr}, reporter.reported)
}

func TestListingService_GetBills_ForbiddenIsNotReported(t *testing.T) {
	gw := &mockGateway{
		listFunc: func(ctx context.Context, viewer port.Identity) ([]entity.Bill, error) {
			return nil, fmt.Errorf("list bills: %w", port.ErrForbidden)
		},
	}
	reporter := &mockReporter{}
	svc := NewListingService(gw, nil, reporter, &mockLogger{})

	_, err := svc.GetBills(context.Background(), port.Identity{Type: entity.UserTypeEmployee})
	assert.ErrorIs(t, err, port.ErrForbidden)
	assert.Empty(t, reporter.reported)
}

func TestListingService_OpenProof(t *testing.T) {
	gw := &mockGateway{
		getFunc: func(ctx context.Context, id string) (*entity.Bill, error) {
			return &entity.Bill{ID: id, Email: employee.Email, FileURL: "https://localhost/p.png", FileName: "p.png"}, nil
		},
	}
	svc := NewListingService(gw, nil, &mockReporter{}, &mockLogger{})

	view, err := svc.OpenProof(context.Background(), employee, "47qAXb6fIm2zOKkLzMro", 1200)
	require.NoError(t, err)
	assert.Equal(t, "modaleFile", view.ModalID)
	assert.Equal(t, 600, view.Width)
	assert.Equal(t, "https://localhost/p.png", view.FileURL)

	t.Run("other employee", func(t *testing.T) {
		other := port.Identity{Email: "other@test.tld", Type: entity.UserTypeEmployee}
		_, err := svc.OpenProof(context.Background(), other, "47qAXb6fIm2zOKkLzMro", 1200)
		assert.ErrorIs(t, err, port.ErrForbidden)
	})

	t.Run("unknown bill", func(t *testing.T) {
		gw.getFunc = nil
		_, err := svc.OpenProof(context.Background(), employee, "missing", 1200)
		assert.ErrorIs(t, err, port.ErrNotFound)
	})
}

func TestListingService_RenderProof(t *testing.T) {
	gw := &mockGateway{
		getFunc: func(ctx context.Context, id string) (*entity.Bill, error) {
			return &entity.Bill{ID: id, Email: employee.Email}, nil
		},
		attachmentFunc: func(ctx context.Context, key string) (*port.AttachmentFile, error) {
			return &port.AttachmentFile{FileName: "p.png", ContentType: "image/png", Data: pngHeader}, nil
		},
	}
	var gotWidth int
	resizer := &mockResizer{
		resizeFunc: func(data []byte, contentType string, maxWidth int) ([]byte, string, error) {
			gotWidth = maxWidth
			return []byte("small"), "image/jpeg", nil
		},
	}
	svc := NewListingService(gw, resizer, &mockReporter{}, &mockLogger{})

	proof, err := svc.RenderProof(context.Background(), employee, "1", 300)
	require.NoError(t, err)
	assert.Equal(t, 300, gotWidth)
	assert.Equal(t, []byte("small"), proof.Data)
	assert.Equal(t, "image/jpeg", proof.ContentType)

	proof, err = svc.RenderProof(context.Background(), employee, "1", 0)
	require.NoError(t, err)
	assert.Equal(t, pngHeader, proof.Data)
	assert.Equal(t, "image/png", proof.ContentType)
}
