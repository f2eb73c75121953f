// Package survey implements dynamic surveys: typed questions, declarative
// visibility rules and the evaluator that decides which questions a
// respondent currently sees.
package survey

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// Type is the answer shape a question expects.
type Type string

// Question types.
const (
	TypeText     Type = "text"
	TypeTextarea Type = "textarea"
	TypeRadio    Type = "radio"
	TypeCheckbox Type = "checkbox"
	TypeScale    Type = "scale"
	TypeSlider   Type = "slider"
)

// Types lists every question type in editor order.
var Types = []Type{TypeText, TypeTextarea, TypeRadio, TypeCheckbox, TypeScale, TypeSlider}

// Body is the type-specific part of a Question. It is one of Text, Choice
// or Range; each carries exactly the fields meaningful for its types.
type Body interface {
	Type() Type
	isBody()
}

// Text is a free-text answer, single line or multi-line.
type Text struct {
	Multiline bool
}

// Choice is a pick among options: one (radio) or many (checkbox).
type Choice struct {
	Multiple bool
	Options  []string
}

// Range is a numeric answer between Min and Max, shown as a scale or a
// slider. Unset bounds are NaN.
type Range struct {
	Slider bool
	Min    float64
	Max    float64
}

func (Text) isBody()   {}
func (Choice) isBody() {}
func (Range) isBody()  {}

// Type implements Body.
func (t Text) Type() Type {
	if t.Multiline {
		return TypeTextarea
	}
	return TypeText
}

// Type implements Body.
func (c Choice) Type() Type {
	if c.Multiple {
		return TypeCheckbox
	}
	return TypeRadio
}

// Type implements Body.
func (r Range) Type() Type {
	if r.Slider {
		return TypeSlider
	}
	return TypeScale
}

// Default range bounds for new scale and slider questions.
const (
	DefaultMin = 1
	DefaultMax = 10
)

// NewBody returns an empty body for t.
func NewBody(t Type) (Body, error) {
	switch t {
	case TypeText, TypeTextarea:
		return Text{Multiline: t == TypeTextarea}, nil
	case TypeRadio, TypeCheckbox:
		return Choice{Multiple: t == TypeCheckbox}, nil
	case TypeScale, TypeSlider:
		return Range{Slider: t == TypeSlider, Min: DefaultMin, Max: DefaultMax}, nil
	}
	return nil, fmt.Errorf("survey: unknown question type %q", t)
}

// Question is one survey item.
type Question struct {
	ID    string
	Label string
	Body  Body
}

// Type returns the question type, or "" when Body is nil.
func (q Question) Type() Type {
	if q.Body == nil {
		return ""
	}
	return q.Body.Type()
}

// Options returns the options of a choice question, or nil.
func (q Question) Options() []string {
	if c, ok := q.Body.(Choice); ok {
		return c.Options
	}
	return nil
}

// IsMultiple reports whether answers to q hold several values.
func (q Question) IsMultiple() bool {
	c, ok := q.Body.(Choice)
	return ok && c.Multiple
}

// NormalizeOptions trims options, drops empty ones and merges duplicates
// case-insensitively, keeping the first spelling. The result is never nil.
func NormalizeOptions(options []string) []string {
	out := make([]string, 0, len(options))
	seen := make(map[string]bool, len(options))
	for _, o := range options {
		o = strings.TrimSpace(o)
		if o == "" {
			continue
		}
		key := strings.ToLower(o)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, o)
	}
	return out
}

// normalized returns q with a trimmed label and normalized options.
func (q Question) normalized() Question {
	q.Label = strings.TrimSpace(q.Label)
	if c, ok := q.Body.(Choice); ok {
		c.Options = NormalizeOptions(c.Options)
		q.Body = c
	}
	return q
}

// wireQuestion is the JSON shape of a Question.
type wireQuestion struct {
	ID      string    `json:"id"`
	Label   string    `json:"label"`
	Type    Type      `json:"type"`
	Options *[]string `json:"options,omitempty"`
	Min     *float64  `json:"min,omitempty"`
	Max     *float64  `json:"max,omitempty"`
}

// MarshalJSON implements json.Marshaler. Options are emitted only for
// choice questions and always as an array; bounds only for range questions
// and only when finite.
func (q Question) MarshalJSON() ([]byte, error) {
	if q.Body == nil {
		return nil, fmt.Errorf("survey: question %q has no type", q.ID)
	}
	w := wireQuestion{ID: q.ID, Label: q.Label, Type: q.Body.Type()}
	switch b := q.Body.(type) {
	case Choice:
		opts := b.Options
		if opts == nil {
			opts = []string{}
		}
		w.Options = &opts
	case Range:
		w.Min = finitePtr(b.Min)
		w.Max = finitePtr(b.Max)
	}
	return json.Marshal(w)
}

// UnmarshalJSON implements json.Unmarshaler. Fields that do not belong to
// the question type are ignored.
func (q *Question) UnmarshalJSON(data []byte) error {
	var w wireQuestion
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	body, err := NewBody(w.Type)
	if err != nil {
		return err
	}
	switch b := body.(type) {
	case Choice:
		if w.Options != nil {
			b.Options = *w.Options
		}
		body = b
	case Range:
		b.Min, b.Max = math.NaN(), math.NaN()
		if w.Min != nil {
			b.Min = *w.Min
		}
		if w.Max != nil {
			b.Max = *w.Max
		}
		body = b
	}
	*q = Question{ID: w.ID, Label: w.Label, Body: body}
	return nil
}

func finitePtr(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
