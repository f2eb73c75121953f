// Package effort derives the reporting KPIs of a project (commessa) from its
// sub-tasks: scheduled and actual effort, delta, completion and duration.
package effort

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/zulandar/consuntivo/internal/lenient"
)

// DefaultStatus is shown for projects the source exports without a status.
const DefaultStatus = "Non specificato"

// Project is a top-level work order as exported by the time-tracking source.
type Project struct {
	Code            Code      `json:"codice"`
	Description     string    `json:"descrizione"`
	Responsible     string    `json:"responsabile"`
	Status          *string   `json:"stato,omitempty"`
	ScheduledStart  *string   `json:"scheduledStart"`
	ScheduledFinish *string   `json:"scheduledFinish"`
	SubTasks        []SubTask `json:"sottocommesse"`
}

// SubTask is a billable sub-unit of a Project. Its code is only unique
// within the parent project.
type SubTask struct {
	Code            Code         `json:"codice"`
	Description     string       `json:"descrizione"`
	TaskOwner       string       `json:"taskOwner"`
	DurationDays    Hours        `json:"durataGiorni"`
	ScheduledEffort Hours        `json:"scheduledEffort"`
	ActualEffort    ActualEffort `json:"actualEffort"`
	ScheduledStart  *string      `json:"scheduledStart"`
	ScheduledFinish *string      `json:"scheduledFinish"`
	ActualStart     *string      `json:"actualStart"`
	ActualEnd       *string      `json:"actualEnd"`
	LastUpdate      *string      `json:"lastUpdate"`
	Reports         []Report     `json:"rapport"`
}

// Report is a single technician's logged time entry. Effort uses a comma
// as decimal separator and Date is dd/MM/yyyy.
type Report struct {
	Code        Code   `json:"codice"`
	Description string `json:"descrizione"`
	Technician  string `json:"tecnico"`
	Effort      string `json:"effort"`
	Date        string `json:"data"`
}

// Code is an identifier the source sometimes exports as a number and
// sometimes as a string. Numbers keep their literal JSON text.
type Code string

// UnmarshalJSON implements json.Unmarshaler.
func (c *Code) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*c = ""
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*c = Code(s)
	default:
		*c = Code(b)
	}
	return nil
}

// Hours is a lenient numeric field. Numbers, numeric strings and null are
// accepted; anything unparseable decodes to zero instead of failing.
type Hours float64

// UnmarshalJSON implements json.Unmarshaler.
func (h *Hours) UnmarshalJSON(b []byte) error {
	*h = Hours(looseNumber(b))
	return nil
}

// looseNumber decodes a JSON scalar into a finite float, or zero.
func looseNumber(b []byte) float64 {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return 0
	}
	var v float64
	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return 0
		}
		v = lenient.FloatOr(s, 0)
	case 't', 'f', 'n', '{', '[':
		return 0
	default:
		f, err := strconv.ParseFloat(string(b), 64)
		if err != nil {
			return 0
		}
		v = f
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// ActualEffort is the actual-effort field, which the source exports either
// as a number of hours or as text. Text follows the source convention of
// dot-separated runs of hours ("2.3" is 2h plus 3h, not 2.3h). Both forms are
// normalized once, at construction.
type ActualEffort struct {
	text   string
	isText bool
	// hours is the additive total used for effort sums.
	hours float64
	// base is the quantity compared against scheduled effort for the
	// completion percentage; NaN when the text carries no number.
	base float64
}

// NumericEffort returns an ActualEffort read from a JSON number.
func NumericEffort(v float64) ActualEffort {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		v = 0
	}
	return ActualEffort{hours: v, base: v}
}

// TextEffort returns an ActualEffort read from a JSON string.
func TextEffort(s string) ActualEffort {
	a := ActualEffort{text: s, isText: true}
	for _, seg := range strings.Split(s, ".") {
		v := lenient.FloatOr(seg, 0)
		if math.IsInf(v, 0) {
			v = 0
		}
		a.hours += v
	}
	a.base = lenient.Integer(strings.ReplaceAll(s, ".", "")) / 100
	return a
}

// IsText reports whether the source exported the value as text.
func (a ActualEffort) IsText() bool { return a.isText }

// Text returns the original text, or "" for numeric values.
func (a ActualEffort) Text() string { return a.text }

// Hours returns the normalized additive hours.
func (a ActualEffort) Hours() float64 { return a.hours }

// CompletionBase returns the value divided by scheduled effort when
// computing completion. It is NaN for text without a leading number.
func (a ActualEffort) CompletionBase() float64 { return a.base }

// UnmarshalJSON implements json.Unmarshaler. Null and non-scalar values
// decode to zero hours.
func (a *ActualEffort) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*a = TextEffort(s)
		return nil
	}
	*a = NumericEffort(looseNumber(b))
	return nil
}

// MarshalJSON implements json.Marshaler, preserving the source form.
func (a ActualEffort) MarshalJSON() ([]byte, error) {
	if a.isText {
		return json.Marshal(a.text)
	}
	return json.Marshal(a.hours)
}
