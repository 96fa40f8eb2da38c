package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/billed/internal/domain/entity"
)

func TestType_IsValid(t *testing.T) {
	tests := []struct {
		eventType Type
		expected  bool
	}{
		{TypeBillSubmitted, true},
		{TypeBillAccepted, true},
		{TypeBillRefused, true},
		{Type("bill.deleted"), false},
		{Type(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.eventType.String(), func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.eventType.IsValid())
		})
	}
}

func TestReviewTypeFor(t *testing.T) {
	got, ok := ReviewTypeFor("accepted")
	require.True(t, ok)
	assert.Equal(t, TypeBillAccepted, got)

	got, ok = ReviewTypeFor("refused")
	require.True(t, ok)
	assert.Equal(t, TypeBillRefused, got)

	_, ok = ReviewTypeFor("pending")
	assert.False(t, ok)
}

func TestNewEvent(t *testing.T) {
	bill := entity.Bill{ID: "47qAXb6fIm2zOKkLzMro", Status: entity.BillStatusAccepted}

	evt := NewEvent(TypeBillAccepted, bill, "admin@test.tld")

	assert.NotEmpty(t, evt.ID)
	assert.Equal(t, TypeBillAccepted, evt.Type)
	assert.Equal(t, "47qAXb6fIm2zOKkLzMro", evt.BillID())
	assert.Equal(t, "admin@test.tld", evt.Actor)
	assert.False(t, evt.Timestamp.IsZero())

	bill.Status = entity.BillStatusPending
	assert.Equal(t, entity.BillStatusAccepted, evt.Bill.Status, "event keeps its own snapshot")
}

func TestEvent_UniqueIDs(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		evt := NewEvent(TypeBillSubmitted, entity.Bill{}, "")
		require.False(t, seen[evt.ID], "duplicate event id %s", evt.ID)
		seen[evt.ID] = true
	}
}
