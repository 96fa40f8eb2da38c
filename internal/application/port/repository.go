package port

import (
	"context"
	"time"

	"github.com/garyjia/billed/internal/domain/entity"
)

// BillRepository defines persistence operations for Bill
type BillRepository interface {
	// Upsert inserts the bill or replaces every field of the existing row
	Upsert(ctx context.Context, bill *entity.Bill) error

	// GetByID returns ErrNotFound when no bill has the id
	GetByID(ctx context.Context, id string) (*entity.Bill, error)

	// List returns the bills owned by email, or every bill when email is empty
	List(ctx context.Context, email string) ([]*entity.Bill, error)
}

// AttachmentRepository defines persistence operations for Attachment
type AttachmentRepository interface {
	Create(ctx context.Context, att *entity.Attachment) error
	GetByKey(ctx context.Context, key string) (*entity.Attachment, error)

	// ListOrphans returns attachments created before cutoff that no bill references
	ListOrphans(ctx context.Context, cutoff time.Time, limit int) ([]*entity.Attachment, error)
	Delete(ctx context.Context, key string) error
}

// TransactionManager handles database transactions
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
