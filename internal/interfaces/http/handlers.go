package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/billed/internal/application/port"
	"github.com/garyjia/billed/internal/application/service"
	"github.com/garyjia/billed/internal/domain/entity"
	"github.com/garyjia/billed/internal/domain/workflow"
)

const exportContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Handlers contains all HTTP request handlers
type Handlers struct {
	services      Services
	maxUploadSize int64
	logger        Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(services Services, maxUploadSize int64, logger Logger) *Handlers {
	return &Handlers{
		services:      services,
		maxUploadSize: maxUploadSize,
		logger:        logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Field   string      `json:"field,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// BillResponse carries a stored bill and the page the client moves to next
type BillResponse struct {
	Bill     *entity.Bill `json:"bill"`
	Navigate port.Route   `json:"navigate,omitempty"`
}

// ReviewRequest is the body of accept and refuse
type ReviewRequest struct {
	CommentAdmin string `json:"commentAdmin"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: HealthResponse{
			Status:    "healthy",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Version:   "1.0.0",
		},
	})
}

// GetBills handles GET /api/bills
func (h *Handlers) GetBills(c *gin.Context) {
	bills, err := h.services.Listing.GetBills(c.Request.Context(), identityFrom(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: bills})
}

// SubmitBill handles POST /api/bills, a multipart form with the bill
// fields and the receipt in "file"
func (h *Handlers) SubmitBill(c *gin.Context) {
	if h.maxUploadSize > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadSize)
	}

	var form service.SubmissionForm
	if err := c.ShouldBind(&form); err != nil {
		h.writeUploadError(c, err)
		return
	}

	owner := identityFrom(c)
	var route port.Route
	submission := h.services.Submission.Begin(owner, port.NavigatorFunc(func(r port.Route) {
		route = r
	}))

	file, err := readAttachment(c)
	if err != nil {
		h.writeUploadError(c, err)
		return
	}
	if file != nil {
		if err := submission.StageAttachment(*file, owner.Email); err != nil {
			h.writeError(c, err)
			return
		}
	}

	bill, err := submission.Submit(c.Request.Context(), form)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{
		Success: true,
		Data:    BillResponse{Bill: bill, Navigate: route},
	})
}

// OpenProof handles GET /api/bills/:id/proof
func (h *Handlers) OpenProof(c *gin.Context) {
	view, err := h.services.Listing.OpenProof(c.Request.Context(), identityFrom(c), c.Param("id"), queryInt(c, "viewport"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: view})
}

// RenderProof handles GET /api/bills/:id/proof/image
func (h *Handlers) RenderProof(c *gin.Context) {
	proof, err := h.services.Listing.RenderProof(c.Request.Context(), identityFrom(c), c.Param("id"), queryInt(c, "width"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	writeProof(c, proof)
}

// Dashboard handles GET /api/dashboard. Groups listed in "expanded",
// repeated or comma separated, start open.
func (h *Handlers) Dashboard(c *gin.Context) {
	var expanded []string
	for _, v := range c.QueryArray("expanded") {
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				expanded = append(expanded, s)
			}
		}
	}

	board, err := h.services.Review.Board(c.Request.Context(), identityFrom(c), expanded)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: board})
}

// GetBillDetail handles GET /api/dashboard/bills/:id
func (h *Handlers) GetBillDetail(c *gin.Context) {
	detail, err := h.services.Review.OpenDetail(c.Request.Context(), identityFrom(c), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: detail})
}

// AcceptBill handles POST /api/dashboard/bills/:id/accept
func (h *Handlers) AcceptBill(c *gin.Context) {
	h.review(c, h.services.Review.AcceptSubmit)
}

// RefuseBill handles POST /api/dashboard/bills/:id/refuse
func (h *Handlers) RefuseBill(c *gin.Context) {
	h.review(c, h.services.Review.RefuseSubmit)
}

type reviewFunc func(ctx context.Context, reviewer port.Identity, id, comment string, nav port.Navigator) (*entity.Bill, error)

func (h *Handlers) review(c *gin.Context, submit reviewFunc) {
	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}

	var route port.Route
	nav := port.NavigatorFunc(func(r port.Route) { route = r })

	bill, err := submit(c.Request.Context(), identityFrom(c), c.Param("id"), req.CommentAdmin, nav)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    BillResponse{Bill: bill, Navigate: route},
	})
}

// OpenAdminProof handles GET /api/dashboard/bills/:id/proof
func (h *Handlers) OpenAdminProof(c *gin.Context) {
	view, err := h.services.Review.OpenProof(c.Request.Context(), identityFrom(c), c.Param("id"), queryInt(c, "viewport"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: view})
}

// RenderAdminProof handles GET /api/dashboard/bills/:id/proof/image
func (h *Handlers) RenderAdminProof(c *gin.Context) {
	proof, err := h.services.Review.RenderProof(c.Request.Context(), identityFrom(c), c.Param("id"), queryInt(c, "width"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	writeProof(c, proof)
}

// ExportBills handles GET /api/dashboard/export
func (h *Handlers) ExportBills(c *gin.Context) {
	data, err := h.services.Review.Export(c.Request.Context(), identityFrom(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="notes-de-frais.xlsx"`)
	c.Data(http.StatusOK, exportContentType, data)
}

// writeError maps an error to its status code. Validation messages are
// shown as is; anything unclassified is a transport failure.
func (h *Handlers) writeError(c *gin.Context, err error) {
	var validationErr *service.ValidationError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: validationErr.Message, Field: validationErr.Field})
		return
	case errors.Is(err, port.ErrMalformedBill):
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	case errors.Is(err, port.ErrNotFound):
		c.JSON(http.StatusNotFound, Response{Success: false, Error: "bill not found"})
		return
	case errors.Is(err, port.ErrForbidden):
		c.JSON(http.StatusForbidden, Response{Success: false, Error: "forbidden"})
		return
	case errors.Is(err, workflow.ErrInvalidTransition), errors.Is(err, workflow.ErrInvalidState):
		c.JSON(http.StatusConflict, Response{Success: false, Error: err.Error()})
		return
	}

	h.logger.Error("Request failed", "path", c.Request.URL.Path, "error", err)
	c.JSON(http.StatusBadGateway, Response{Success: false, Error: err.Error()})
}

// writeUploadError answers a request body that could not be parsed
func (h *Handlers) writeUploadError(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		c.JSON(http.StatusRequestEntityTooLarge, Response{Success: false, Error: fmt.Sprintf("upload exceeds %d bytes", tooLarge.Limit)})
		return
	}
	c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid form: " + err.Error()})
}

// readAttachment returns the uploaded "file" part, nil when there is none
func readAttachment(c *gin.Context) (*service.AttachmentInput, error) {
	header, err := c.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	f, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}

	return &service.AttachmentInput{
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func writeProof(c *gin.Context, proof *service.RenderedProof) {
	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", proof.FileName))
	c.Data(http.StatusOK, proof.ContentType, proof.Data)
}

// queryInt reads a non-negative integer query parameter, 0 when absent or invalid
func queryInt(c *gin.Context, name string) int {
	n, err := strconv.Atoi(c.Query(name))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
