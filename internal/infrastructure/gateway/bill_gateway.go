// Package gateway implements the "bills" collection store on top of the
// sqlite repositories and a blob storage driver.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/garyjia/billed/internal/application/port"
	"github.com/garyjia/billed/internal/domain/entity"
	"github.com/garyjia/billed/internal/domain/workflow"
)

// orphanBatchSize bounds how many orphans one sweep pass loads at once
const orphanBatchSize = 100

// BillGateway implements port.BillGateway and port.OrphanCleaner
type BillGateway struct {
	bills       port.BillRepository
	attachments port.AttachmentRepository
	blobs       port.BlobStorage
	txManager   port.TransactionManager
	logger      *zap.Logger
	newKey      func() string
}

// NewBillGateway creates a new BillGateway
func NewBillGateway(
	bills port.BillRepository,
	attachments port.AttachmentRepository,
	blobs port.BlobStorage,
	txManager port.TransactionManager,
	logger *zap.Logger,
) *BillGateway {
	return &BillGateway{
		bills:       bills,
		attachments: attachments,
		blobs:       blobs,
		txManager:   txManager,
		logger:      logger,
		newKey:      uuid.NewString,
	}
}

// List returns every bill to an admin and the caller's own bills otherwise
func (g *BillGateway) List(ctx context.Context, viewer port.Identity) ([]entity.Bill, error) {
	email := viewer.Email
	if viewer.IsAdmin() {
		email = ""
	} else if email == "" {
		return nil, fmt.Errorf("list bills: %w", port.ErrForbidden)
	}

	rows, err := g.bills.List(ctx, email)
	if err != nil {
		return nil, err
	}

	bills := make([]entity.Bill, 0, len(rows))
	for _, b := range rows {
		bills = append(bills, *b)
	}
	return bills, nil
}

// Create stores the attachment bytes and records them under a fresh key
func (g *BillGateway) Create(ctx context.Context, payload port.AttachmentPayload) (*port.UploadResult, error) {
	if payload.Email == "" {
		return nil, fmt.Errorf("create bill: missing owner email")
	}

	key := g.newKey()
	fileName := payload.FileName
	if fileName == "" {
		fileName = entity.DefaultAttachmentName
	}
	storagePath := path.Join("bills", key, fileName)

	fileURL, err := g.blobs.Put(ctx, storagePath, payload.Data, payload.ContentType)
	if err != nil {
		return nil, fmt.Errorf("store attachment: %w", err)
	}

	att := &entity.Attachment{
		Key:         key,
		Email:       payload.Email,
		FileName:    fileName,
		ContentType: payload.ContentType,
		FileURL:     fileURL,
		StoragePath: storagePath,
		Size:        int64(len(payload.Data)),
		CreatedAt:   time.Now().UTC(),
	}
	if err := g.attachments.Create(ctx, att); err != nil {
		if delErr := g.blobs.Delete(ctx, storagePath); delErr != nil {
			g.logger.Warn("Failed to remove unrecorded attachment",
				zap.String("path", storagePath), zap.Error(delErr))
		}
		return nil, err
	}

	g.logger.Info("Attachment uploaded",
		zap.String("key", key),
		zap.String("email", payload.Email),
		zap.Int64("size", att.Size))

	return &port.UploadResult{FileURL: fileURL, FileName: fileName, Key: key}, nil
}

// Update writes data as the full record of bill id. The id in the URL wins
// over any id inside data, and the bill must have an uploaded attachment.
func (g *BillGateway) Update(ctx context.Context, id string, data []byte) error {
	var bill entity.Bill
	if err := json.Unmarshal(data, &bill); err != nil {
		return fmt.Errorf("%w: %v", port.ErrMalformedBill, err)
	}
	bill.ID = id

	if !workflow.State(bill.Status).IsValid() {
		return fmt.Errorf("%w: status %q", port.ErrMalformedBill, bill.Status)
	}
	if !bill.HasAttachment() {
		return fmt.Errorf("%w: fileUrl and fileName are both required", port.ErrMalformedBill)
	}

	return g.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		if _, err := g.attachments.GetByKey(ctx, id); err != nil {
			return fmt.Errorf("bill %s: %w", id, err)
		}
		return g.bills.Upsert(ctx, &bill)
	})
}

// Get returns one bill
func (g *BillGateway) Get(ctx context.Context, id string) (*entity.Bill, error) {
	return g.bills.GetByID(ctx, id)
}

// Attachment reads back the file uploaded under key
func (g *BillGateway) Attachment(ctx context.Context, key string) (*port.AttachmentFile, error) {
	att, err := g.attachments.GetByKey(ctx, key)
	if err != nil {
		return nil, err
	}

	data, err := g.blobs.Get(ctx, att.StoragePath)
	if err != nil {
		return nil, err
	}

	return &port.AttachmentFile{
		FileName:    att.FileName,
		ContentType: att.ContentType,
		Data:        data,
	}, nil
}

// DeleteOrphans removes attachments older than cutoff that never got a
// bill. The blob goes first so a failure leaves the row for the next pass.
func (g *BillGateway) DeleteOrphans(ctx context.Context, cutoff time.Time) (int, error) {
	deleted := 0
	for {
		orphans, err := g.attachments.ListOrphans(ctx, cutoff, orphanBatchSize)
		if err != nil {
			return deleted, err
		}
		if len(orphans) == 0 {
			return deleted, nil
		}

		for _, att := range orphans {
			if err := ctx.Err(); err != nil {
				return deleted, err
			}
			if err := g.blobs.Delete(ctx, att.StoragePath); err != nil {
				return deleted, fmt.Errorf("delete orphan %s: %w", att.Key, err)
			}
			if err := g.attachments.Delete(ctx, att.Key); err != nil {
				return deleted, fmt.Errorf("delete orphan %s: %w", att.Key, err)
			}
			deleted++
			g.logger.Info("Orphan attachment removed",
				zap.String("key", att.Key),
				zap.String("email", att.Email),
				zap.String("path", att.StoragePath))
		}

		if len(orphans) < orphanBatchSize {
			return deleted, nil
		}
	}
}

var (
	_ port.BillGateway   = (*BillGateway)(nil)
	_ port.OrphanCleaner = (*BillGateway)(nil)
)
