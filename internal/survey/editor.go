package survey

import (
	"strings"

	"github.com/google/uuid"
)

// Editor builds and edits a Survey. It owns its survey; Export hands out a
// copy. Editors are single-writer and not safe for concurrent use.
type Editor struct {
	s     Survey
	newID func() string
}

// NewEditor returns an editor over a copy of s.
func NewEditor(s Survey) *Editor {
	return &Editor{s: s.Clone(), newID: func() string { return uuid.NewString() }}
}

// Survey returns the survey being edited. The result must not be modified.
func (e *Editor) Survey() Survey { return e.s }

// SetMeta sets the title and description.
func (e *Editor) SetMeta(title, description string) {
	e.s.Title = strings.TrimSpace(title)
	e.s.Description = strings.TrimSpace(description)
}

// Add appends q after normalizing it. If q has no id one is assigned. When
// validation fails nothing is added and the messages are returned.
func (e *Editor) Add(q Question) (Question, []string) {
	q = q.normalized()
	if msgs := Validate(q); len(msgs) > 0 {
		return Question{}, msgs
	}
	if q.ID == "" || e.s.index(q.ID) >= 0 {
		q.ID = e.newID()
	}
	e.s.Questions = append(e.s.Questions, q)
	return q, nil
}

// Update replaces the question with q.ID.
func (e *Editor) Update(q Question) ([]string, error) {
	i := e.s.index(q.ID)
	if i < 0 {
		return nil, ErrQuestionNotFound
	}
	q = q.normalized()
	if msgs := Validate(q); len(msgs) > 0 {
		return msgs, nil
	}
	e.s.Questions[i] = q
	return nil, nil
}

// Move shifts question id by delta positions, clamped to the survey bounds.
func (e *Editor) Move(id string, delta int) error {
	i := e.s.index(id)
	if i < 0 {
		return ErrQuestionNotFound
	}
	j := min(max(i+delta, 0), len(e.s.Questions)-1)
	q := e.s.Questions[i]
	qs := append(e.s.Questions[:i:i], e.s.Questions[i+1:]...)
	qs = append(qs[:j], append([]Question{q}, qs[j:]...)...)
	e.s.Questions = qs
	return nil
}

// Delete removes question id together with every rule that targets it and
// every condition that reads it. Rules left without conditions are dropped.
func (e *Editor) Delete(id string) error {
	i := e.s.index(id)
	if i < 0 {
		return ErrQuestionNotFound
	}
	e.s.Questions = append(e.s.Questions[:i:i], e.s.Questions[i+1:]...)

	rules := e.s.LogicRules[:0:0]
	for _, r := range e.s.LogicRules {
		if r.ShowQuestionID == id {
			continue
		}
		if r.references(id) {
			kept := make([]Condition, 0, len(r.Conditions))
			for _, c := range r.Conditions {
				if c.QuestionID != id {
					kept = append(kept, c)
				}
			}
			if len(kept) == 0 {
				continue
			}
			r.Conditions = kept
		}
		rules = append(rules, r)
	}
	e.s.LogicRules = rules
	return nil
}

// AddRule appends r after validation. If r has no id one is assigned.
func (e *Editor) AddRule(r LogicRule) (LogicRule, []string) {
	if r.Operator == "" {
		r.Operator = All
	}
	if msgs := ValidateRule(r, e.s); len(msgs) > 0 {
		return LogicRule{}, msgs
	}
	if r.ID == "" {
		r.ID = e.newID()
	}
	r.Conditions = append([]Condition(nil), r.Conditions...)
	e.s.LogicRules = append(e.s.LogicRules, r)
	return r, nil
}

// RemoveRule deletes rule id.
func (e *Editor) RemoveRule(id string) error {
	for i, r := range e.s.LogicRules {
		if r.ID == id {
			e.s.LogicRules = append(e.s.LogicRules[:i:i], e.s.LogicRules[i+1:]...)
			return nil
		}
	}
	return ErrRuleNotFound
}

// Export returns an independent copy of the survey.
func (e *Editor) Export() Survey { return e.s.Clone() }
