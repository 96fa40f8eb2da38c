package port

import (
	"context"
	"time"

	"github.com/garyjia/billed/internal/domain/entity"
)

// AttachmentPayload is what the create phase uploads: the file bytes paired
// with the owner's email.
type AttachmentPayload struct {
	FileName    string
	ContentType string
	Data        []byte
	Email       string
}

// UploadResult is returned by BillGateway.Create. Key is the identifier the
// following Update must use.
type UploadResult struct {
	FileURL  string `json:"fileUrl"`
	FileName string `json:"fileName"`
	Key      string `json:"key"`
}

// AttachmentFile is a stored attachment read back for display
type AttachmentFile struct {
	FileName    string
	ContentType string
	Data        []byte
}

// BillGateway is the store for the "bills" collection
type BillGateway interface {
	// List returns the bills visible to viewer
	List(ctx context.Context, viewer Identity) ([]entity.Bill, error)

	// Create uploads an attachment and allocates the bill identifier.
	// It is the only operation that allocates one.
	Create(ctx context.Context, payload AttachmentPayload) (*UploadResult, error)

	// Update replaces the stored fields of bill id with data, a JSON
	// serialized Bill. Calling it twice with the same data is harmless.
	Update(ctx context.Context, id string, data []byte) error

	Get(ctx context.Context, id string) (*entity.Bill, error)
	Attachment(ctx context.Context, key string) (*AttachmentFile, error)
}

// OrphanCleaner removes attachments whose bill record was never written
type OrphanCleaner interface {
	DeleteOrphans(ctx context.Context, cutoff time.Time) (int, error)
}
