package entity

import "time"

// Bill is one expense claim submitted by an employee.
type Bill struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	Type         string `json:"type"`
	Name         string `json:"name"`
	Date         string `json:"date"`
	Amount       int    `json:"amount"`
	VAT          string `json:"vat"`
	Pct          int    `json:"pct"`
	Commentary   string `json:"commentary"`
	FileURL      string `json:"fileUrl"`
	FileName     string `json:"fileName"`
	Status       string `json:"status"`
	CommentAdmin string `json:"commentAdmin,omitempty"`
}

// DefaultAttachmentName names a receipt whose file name was empty once
// sanitized.
const DefaultAttachmentName = "justificatif"

// HasAttachment reports whether both attachment fields are set.
func (b *Bill) HasAttachment() bool {
	return b.FileURL != "" && b.FileName != ""
}

// BillView is a bill prepared for display: Date and Status hold the
// formatted values, RawDate and StatusCode keep what was stored.
type BillView struct {
	Bill
	RawDate    string `json:"rawDate"`
	StatusCode string `json:"statusCode"`
}

// Attachment is the receipt stored by the gateway's create phase.
// A row without a matching bill is an orphan left by a failed update.
type Attachment struct {
	Key         string    `json:"key"`
	Email       string    `json:"email"`
	FileName    string    `json:"file_name"`
	ContentType string    `json:"content_type"`
	FileURL     string    `json:"file_url"`
	StoragePath string    `json:"storage_path"`
	Size        int64     `json:"size"`
	CreatedAt   time.Time `json:"created_at"`
}
