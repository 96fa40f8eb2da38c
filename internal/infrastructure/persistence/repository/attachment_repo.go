package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/garyjia/billed/internal/application/port"
	"github.com/garyjia/billed/internal/domain/entity"
	"github.com/garyjia/billed/internal/infrastructure/persistence/sqlite"
	"go.uber.org/zap"
)

// AttachmentRepository implements port.AttachmentRepository
type AttachmentRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewAttachmentRepository creates a new attachment repository
func NewAttachmentRepository(db *sql.DB, logger *zap.Logger) port.AttachmentRepository {
	return &AttachmentRepository{
		db:     db,
		logger: logger,
	}
}

// Create creates a new attachment record
func (r *AttachmentRepository) Create(ctx context.Context, att *entity.Attachment) error {
	query := `
		INSERT INTO attachments (
			id, email, file_name, content_type, file_url, storage_path, size, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	if att.CreatedAt.IsZero() {
		att.CreatedAt = time.Now().UTC()
	}

	_, err := sqlite.ExecutorFor(ctx, r.db).ExecContext(ctx, query,
		att.Key,
		att.Email,
		att.FileName,
		att.ContentType,
		att.FileURL,
		att.StoragePath,
		att.Size,
		att.CreatedAt.UTC(),
	)
	if err != nil {
		r.logger.Error("Failed to create attachment", zap.String("key", att.Key), zap.Error(err))
		return fmt.Errorf("failed to create attachment: %w", err)
	}
	return nil
}

// GetByKey retrieves an attachment by its key
func (r *AttachmentRepository) GetByKey(ctx context.Context, key string) (*entity.Attachment, error) {
	query := `
		SELECT id, email, file_name, content_type, file_url, storage_path, size, created_at
		FROM attachments
		WHERE id = ?
	`

	att, err := scanAttachment(sqlite.ExecutorFor(ctx, r.db).QueryRowContext(ctx, query, key))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("attachment %s: %w", key, port.ErrNotFound)
	}
	if err != nil {
		r.logger.Error("Failed to get attachment", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("failed to get attachment: %w", err)
	}
	return att, nil
}

// ListOrphans retrieves attachments older than cutoff with no bill row
func (r *AttachmentRepository) ListOrphans(ctx context.Context, cutoff time.Time, limit int) ([]*entity.Attachment, error) {
	query := `
		SELECT a.id, a.email, a.file_name, a.content_type, a.file_url, a.storage_path, a.size, a.created_at
		FROM attachments a
		LEFT JOIN bills b ON b.id = a.id
		WHERE b.id IS NULL AND a.created_at < ?
		ORDER BY a.created_at ASC
		LIMIT ?
	`

	rows, err := sqlite.ExecutorFor(ctx, r.db).QueryContext(ctx, query, cutoff.UTC(), limit)
	if err != nil {
		r.logger.Error("Failed to list orphan attachments", zap.Error(err))
		return nil, fmt.Errorf("failed to list orphan attachments: %w", err)
	}
	defer rows.Close()

	var attachments []*entity.Attachment
	for rows.Next() {
		att, err := scanAttachment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attachment: %w", err)
		}
		attachments = append(attachments, att)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating attachments: %w", err)
	}
	return attachments, nil
}

// Delete removes an attachment record
func (r *AttachmentRepository) Delete(ctx context.Context, key string) error {
	_, err := sqlite.ExecutorFor(ctx, r.db).ExecContext(ctx, `DELETE FROM attachments WHERE id = ?`, key)
	if err != nil {
		r.logger.Error("Failed to delete attachment", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("failed to delete attachment: %w", err)
	}
	return nil
}

func scanAttachment(row rowScanner) (*entity.Attachment, error) {
	var att entity.Attachment
	err := row.Scan(
		&att.Key,
		&att.Email,
		&att.FileName,
		&att.ContentType,
		&att.FileURL,
		&att.StoragePath,
		&att.Size,
		&att.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &att, nil
}
