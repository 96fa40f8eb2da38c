// Package format turns stored bill values into display strings.
// Every function here is pure and never fails: input it cannot interpret
// is returned unchanged.
package format

import (
	"fmt"
	"strings"
	"time"

	"github.com/garyjia/billed/internal/domain/entity"
)

// DateLayout is the layout bills store their date in.
const DateLayout = "2006-01-02"

var frenchMonths = [12]string{
	"Janv", "Févr", "Mars", "Avr", "Mai", "Juin",
	"Juil", "Août", "Sept", "Oct", "Nov", "Déc",
}

var statusLabels = map[string]string{
	entity.BillStatusPending:  "En attente",
	entity.BillStatusAccepted: "Accepté",
	entity.BillStatusRefused:  "Refusé",
}

// ParseDate parses a stored bill date. Both the form layout and RFC 3339
// timestamps are understood.
func ParseDate(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// Date renders a stored date as "D Mon. YY", e.g. "4 Avr. 04".
func Date(raw string) string {
	t, ok := ParseDate(raw)
	if !ok {
		return raw
	}
	return fmt.Sprintf("%d %s. %02d", t.Day(), frenchMonths[t.Month()-1], t.Year()%100)
}

// Status maps a status code to its label. Unknown codes pass through.
func Status(code string) string {
	if label, ok := statusLabels[code]; ok {
		return label
	}
	return code
}
