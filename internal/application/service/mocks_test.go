package service

import (
	"context"
	"sync"

	"github.com/garyjia/billed/internal/application/port"
	"github.com/garyjia/billed/internal/domain/entity"
	"github.com/garyjia/billed/internal/domain/event"
)

type mockLogger struct{}

func (m *mockLogger) Info(msg string, keysAndValues ...interface{})  {}
func (m *mockLogger) Error(msg string, keysAndValues ...interface{}) {}

type updateCall struct {
	id   string
	data []byte
}

type mockGateway struct {
	listFunc       func(ctx context.Context, viewer port.Identity) ([]entity.Bill, error)
	createFunc     func(ctx context.Context, payload port.AttachmentPayload) (*port.UploadResult, error)
	updateFunc     func(ctx context.Context, id string, data []byte) error
	getFunc        func(ctx context.Context, id string) (*entity.Bill, error)
	attachmentFunc func(ctx context.Context, key string) (*port.AttachmentFile, error)

	creates []port.AttachmentPayload
	updates []updateCall
}

func (m *mockGateway) List(ctx context.Context, viewer port.Identity) ([]entity.Bill, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, viewer)
	}
	return nil, nil
}

func (m *mockGateway) Create(ctx context.Context, payload port.AttachmentPayload) (*port.UploadResult, error) {
	m.creates = append(m.creates, payload)
	if m.createFunc != nil {
		return m.createFunc(ctx, payload)
	}
	return &port.UploadResult{FileURL: "https://localhost/a.jpg", Key: "1234"}, nil
}

func (m *mockGateway) Update(ctx context.Context, id string, data []byte) error {
	m.updates = append(m.updates, updateCall{id: id, data: data})
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, data)
	}
	return nil
}

func (m *mockGateway) Get(ctx context.Context, id string) (*entity.Bill, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, id)
	}
	return nil, port.ErrNotFound
}

func (m *mockGateway) Attachment(ctx context.Context, key string) (*port.AttachmentFile, error) {
	if m.attachmentFunc != nil {
		return m.attachmentFunc(ctx, key)
	}
	return nil, port.ErrNotFound
}

type mockReporter struct {
	reported []error
}

func (m *mockReporter) Report(err error) {
	m.reported = append(m.reported, err)
}

type mockNavigator struct {
	routes []port.Route
}

func (m *mockNavigator) Navigate(route port.Route) {
	m.routes = append(m.routes, route)
}

type mockPublisher struct {
	mu     sync.Mutex
	events []*event.Event
}

func (m *mockPublisher) DispatchAsync(ctx context.Context, evt *event.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, evt)
}

type mockResizer struct {
	resizeFunc func(data []byte, contentType string, maxWidth int) ([]byte, string, error)
}

func (m *mockResizer) Resize(data []byte, contentType string, maxWidth int) ([]byte, string, error) {
	if m.resizeFunc != nil {
		return m.resizeFunc(data, contentType, maxWidth)
	}
	return data, contentType, nil
}

type mockExporter struct {
	sheets []port.BillSheet
}

func (m *mockExporter) Export(sheets []port.BillSheet) ([]byte, error) {
	m.sheets = sheets
	return []byte("xlsx"), nil
}

var (
	employee = port.Identity{Email: "employee@test.tld", Type: entity.UserTypeEmployee}
	admin    = port.Identity{Email: "admin@test.tld", Type: entity.UserTypeAdmin}
)

// pngHeader is enough for content sniffing to detect image/png
var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

// jpegHeader is enough for content sniffing to detect image/jpeg
var jpegHeader = []byte{0xff, 0xd8, 0xff, 0xe0, 0, 0x10, 'J', 'F', 'I', 'F', 0}
