package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"

	"github.com/garyjia/billed/internal/application/port"
	"github.com/garyjia/billed/internal/domain/entity"
	"github.com/garyjia/billed/internal/domain/event"
	"github.com/garyjia/billed/internal/domain/format"
	"github.com/garyjia/billed/pkg/utils"
)

// allowedAttachmentTypes is the declared media type allow-list
var allowedAttachmentTypes = map[string]bool{
	"image/png":  true,
	"image/jpg":  true,
	"image/jpeg": true,
}

// AttachmentInput is a file picked in the new-bill form
type AttachmentInput struct {
	FileName    string
	ContentType string
	Data        []byte
}

// SubmissionForm holds the new-bill form fields as typed by the employee
type SubmissionForm struct {
	Type       string `form:"type" validate:"required,expense_type"`
	Name       string `form:"name" validate:"required"`
	Amount     string `form:"amount" validate:"required,leading_int"`
	Date       string `form:"date" validate:"required,bill_date"`
	VAT        string `form:"vat" validate:"required"`
	Pct        string `form:"pct" validate:"required,leading_int"`
	Commentary string `form:"commentary" validate:"required"`
}

// SubmissionService starts new-bill submissions
type SubmissionService interface {
	// Begin opens a form session for owner. Navigation after a successful
	// submission goes through nav.
	Begin(owner port.Identity, nav port.Navigator) *Submission
}

type submissionServiceImpl struct {
	gateway   port.BillGateway
	reporter  port.ErrorReporter
	publisher port.EventPublisher
	validate  *validator.Validate
	logger    Logger
}

// NewSubmissionService creates a new SubmissionService
func NewSubmissionService(
	gateway port.BillGateway,
	reporter port.ErrorReporter,
	publisher port.EventPublisher,
	logger Logger,
) SubmissionService {
	return &submissionServiceImpl{
		gateway:   gateway,
		reporter:  reporter,
		publisher: publisher,
		validate:  newFormValidator(),
		logger:    logger,
	}
}

// Begin creates an empty Submission
func (s *submissionServiceImpl) Begin(owner port.Identity, nav port.Navigator) *Submission {
	return &Submission{
		svc:       s,
		owner:     owner,
		navigator: nav,
	}
}

// Submission is one new-bill form session. It is owned by a single caller
// and must not be shared between goroutines.
type Submission struct {
	svc       *submissionServiceImpl
	owner     port.Identity
	navigator port.Navigator

	staged   *port.AttachmentPayload
	uploaded *port.UploadResult
}

// ValidateAttachment accepts PNG and JPEG images. The declared type must be
// on the allow-list and, when there is content, the bytes must sniff as PNG
// or JPEG too.
func ValidateAttachment(file AttachmentInput) error {
	declared := strings.ToLower(strings.TrimSpace(file.ContentType))
	if !allowedAttachmentTypes[declared] {
		return &ValidationError{
			Field:   "file",
			Message: "Veuillez sélectionner un fichier au format JPG, JPEG ou PNG.",
			Err:     fmt.Errorf("%w: %q", ErrUnsupportedAttachment, file.ContentType),
		}
	}

	if len(file.Data) > 0 {
		detected := mimetype.Detect(file.Data)
		if !detected.Is("image/png") && !detected.Is("image/jpeg") {
			return &ValidationError{
				Field:   "file",
				Message: "Le contenu du fichier ne correspond pas à une image JPG, JPEG ou PNG.",
				Err:     fmt.Errorf("%w: content is %s", ErrUnsupportedAttachment, detected.String()),
			}
		}
	}

	return nil
}

// StageAttachment validates file and holds it, paired with ownerEmail,
// until Submit. A rejected file clears whatever was staged before, as the
// form's file input is reset.
func (s *Submission) StageAttachment(file AttachmentInput, ownerEmail string) error {
	if err := ValidateAttachment(file); err != nil {
		s.staged = nil
		s.uploaded = nil
		return err
	}

	name := utils.SanitizeFileName(file.FileName)
	if name == "" {
		name = entity.DefaultAttachmentName
	}

	s.staged = &port.AttachmentPayload{
		FileName:    name,
		ContentType: strings.ToLower(strings.TrimSpace(file.ContentType)),
		Data:        file.Data,
		Email:       ownerEmail,
	}
	// a new file means a new upload
	s.uploaded = nil
	return nil
}

// Staged returns the staged attachment, nil when none is held
func (s *Submission) Staged() *port.AttachmentPayload {
	return s.staged
}

// Uploaded returns the result of a create phase whose update has not yet
// succeeded, nil otherwise
func (s *Submission) Uploaded() *port.UploadResult {
	return s.uploaded
}

// Submit validates form, uploads the staged attachment, then writes the
// bill under the key the upload returned. Navigation to the bill list only
// happens once both calls succeeded.
//
// When the update fails the upload result is kept, so calling Submit again
// resumes with the update instead of uploading a second copy.
func (s *Submission) Submit(ctx context.Context, form SubmissionForm) (*entity.Bill, error) {
	email := s.owner.Email

	if strings.TrimSpace(form.Pct) == "" {
		form.Pct = fmt.Sprint(entity.DefaultPct)
	}
	if err := s.checkFields(email, form); err != nil {
		return nil, err
	}

	amount, _ := utils.ParseLeadingInt(form.Amount)
	pct, _ := utils.ParseLeadingInt(form.Pct)

	upload := s.uploaded
	if upload == nil {
		res, err := s.svc.gateway.Create(ctx, *s.staged)
		if err != nil {
			reportTransport(s.svc.reporter, err)
			s.svc.logger.Error("Failed to upload attachment", "error", err, "email", email)
			return nil, fmt.Errorf("upload attachment: %w", err)
		}
		s.uploaded = res
		upload = res
	}

	fileName := upload.FileName
	if fileName == "" {
		fileName = s.staged.FileName
	}

	bill := entity.Bill{
		ID:         upload.Key,
		Email:      email,
		Type:       form.Type,
		Name:       form.Name,
		Date:       form.Date,
		Amount:     amount,
		VAT:        form.VAT,
		Pct:        pct,
		Commentary: form.Commentary,
		FileURL:    upload.FileURL,
		FileName:   fileName,
		Status:     entity.BillStatusPending,
	}

	data, err := json.Marshal(bill)
	if err != nil {
		return nil, fmt.Errorf("marshal bill: %w", err)
	}

	if err := s.svc.gateway.Update(ctx, upload.Key, data); err != nil {
		reportTransport(s.svc.reporter, err)
		s.svc.logger.Error("Failed to persist bill", "error", err, "bill_id", upload.Key)
		return nil, fmt.Errorf("persist bill %s: %w", upload.Key, err)
	}

	s.svc.logger.Info("Bill submitted", "bill_id", bill.ID, "email", email)

	s.staged = nil
	s.uploaded = nil
	if s.navigator != nil {
		s.navigator.Navigate(port.RouteBills)
	}
	if s.svc.publisher != nil {
		s.svc.publisher.DispatchAsync(context.WithoutCancel(ctx), event.NewEvent(event.TypeBillSubmitted, bill, email))
	}

	return &bill, nil
}

// checkFields runs every synchronous check; nothing leaves the process
// before it passes
func (s *Submission) checkFields(email string, form SubmissionForm) error {
	if strings.TrimSpace(email) == "" {
		return &ValidationError{Field: "email", Message: "utilisateur non identifié", Err: ErrMissingField}
	}

	if err := s.svc.validate.Struct(form); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fieldError(verrs[0])
		}
		return &ValidationError{Field: "form", Message: err.Error(), Err: ErrInvalidField}
	}

	if s.staged == nil {
		return &ValidationError{
			Field:   "file",
			Message: "Tous les champs obligatoires, y compris le justificatif, doivent être remplis.",
			Err:     ErrMissingField,
		}
	}
	return nil
}

func fieldError(fe validator.FieldError) *ValidationError {
	if fe.Tag() == "required" {
		return &ValidationError{
			Field:   fe.Field(),
			Message: "Tous les champs obligatoires, y compris le justificatif, doivent être remplis.",
			Err:     ErrMissingField,
		}
	}
	return &ValidationError{
		Field:   fe.Field(),
		Message: fmt.Sprintf("valeur invalide: %v", fe.Value()),
		Err:     ErrInvalidField,
	}
}

// newFormValidator registers the form-specific tags and reports fields by
// their form name
func newFormValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})

	_ = v.RegisterValidation("leading_int", func(fl validator.FieldLevel) bool {
		_, ok := utils.ParseLeadingInt(fl.Field().String())
		return ok
	})
	_ = v.RegisterValidation("bill_date", func(fl validator.FieldLevel) bool {
		_, ok := format.ParseDate(fl.Field().String())
		return ok
	})
	_ = v.RegisterValidation("expense_type", func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		for _, t := range entity.ExpenseTypes {
			if t == value {
				return true
			}
		}
		return false
	})

	return v
}
