package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/garyjia/billed/internal/application/port"
	"github.com/garyjia/billed/internal/domain/entity"
	"github.com/garyjia/billed/internal/infrastructure/persistence/sqlite"
	"go.uber.org/zap"
)

const billColumns = `id, email, type, name, date, amount, vat, pct, commentary,
	file_url, file_name, status, comment_admin`

// BillRepository implements port.BillRepository
type BillRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewBillRepository creates a new bill repository
func NewBillRepository(db *sql.DB, logger *zap.Logger) port.BillRepository {
	return &BillRepository{
		db:     db,
		logger: logger,
	}
}

// Upsert writes every field of bill, keeping created_at of an existing row
func (r *BillRepository) Upsert(ctx context.Context, bill *entity.Bill) error {
	query := `
		INSERT INTO bills (` + billColumns + `, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			email = excluded.email,
			type = excluded.type,
			name = excluded.name,
			date = excluded.date,
			amount = excluded.amount,
			vat = excluded.vat,
			pct = excluded.pct,
			commentary = excluded.commentary,
			file_url = excluded.file_url,
			file_name = excluded.file_name,
			status = excluded.status,
			comment_admin = excluded.comment_admin,
			updated_at = CURRENT_TIMESTAMP
	`

	_, err := sqlite.ExecutorFor(ctx, r.db).ExecContext(ctx, query,
		bill.ID,
		bill.Email,
		bill.Type,
		bill.Name,
		bill.Date,
		bill.Amount,
		bill.VAT,
		bill.Pct,
		bill.Commentary,
		bill.FileURL,
		bill.FileName,
		bill.Status,
		bill.CommentAdmin,
	)
	if err != nil {
		r.logger.Error("Failed to upsert bill", zap.String("id", bill.ID), zap.Error(err))
		return fmt.Errorf("failed to upsert bill: %w", err)
	}
	return nil
}

// GetByID retrieves a bill by its identifier
func (r *BillRepository) GetByID(ctx context.Context, id string) (*entity.Bill, error) {
	query := `SELECT ` + billColumns + ` FROM bills WHERE id = ?`

	bill, err := scanBill(sqlite.ExecutorFor(ctx, r.db).QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("bill %s: %w", id, port.ErrNotFound)
	}
	if err != nil {
		r.logger.Error("Failed to get bill by ID", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get bill: %w", err)
	}
	return bill, nil
}

// List retrieves the bills of one owner, or all bills for an empty email
func (r *BillRepository) List(ctx context.Context, email string) ([]*entity.Bill, error) {
	query := `SELECT ` + billColumns + ` FROM bills`
	var args []interface{}
	if email != "" {
		query += ` WHERE email = ?`
		args = append(args, email)
	}
	query += ` ORDER BY created_at ASC, id ASC`

	rows, err := sqlite.ExecutorFor(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list bills", zap.String("email", email), zap.Error(err))
		return nil, fmt.Errorf("failed to list bills: %w", err)
	}
	defer rows.Close()

	var bills []*entity.Bill
	for rows.Next() {
		bill, err := scanBill(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bill: %w", err)
		}
		bills = append(bills, bill)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bills: %w", err)
	}
	return bills, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBill(row rowScanner) (*entity.Bill, error) {
	var b entity.Bill
	err := row.Scan(
		&b.ID,
		&b.Email,
		&b.Type,
		&b.Name,
		&b.Date,
		&b.Amount,
		&b.VAT,
		&b.Pct,
		&b.Commentary,
		&b.FileURL,
		&b.FileName,
		&b.Status,
		&b.CommentAdmin,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}
