package survey

import (
	"math"
	"strings"

	"github.com/zulandar/consuntivo/internal/lenient"
)

// EvaluateCondition evaluates c against the current answers. An
// unanswered question never equals and never contains anything, and is
// always not-equal to the condition value.
func EvaluateCondition(c Condition, answers Answers) bool {
	got, ok := answers.Text(c.QuestionID)
	switch c.Operator {
	case OpEquals:
		return ok && got == c.Value
	case OpNotEquals:
		return !ok || got != c.Value
	case OpContains:
		return ok && strings.Contains(got, c.Value)
	case OpLessThan, OpGreaterThan:
		if !ok {
			return false
		}
		a, b := lenient.Float(got), lenient.Float(c.Value)
		if math.IsNaN(a) || math.IsNaN(b) {
			return false
		}
		if c.Operator == OpLessThan {
			return a < b
		}
		return a > b
	}
	return false
}

// EvaluateRule combines the conditions of r with its combinator. An empty
// AND rule holds; an empty OR rule does not. Unknown combinators act as OR.
func EvaluateRule(r LogicRule, answers Answers) bool {
	if r.Operator == All {
		for _, c := range r.Conditions {
			if !EvaluateCondition(c, answers) {
				return false
			}
		}
		return true
	}
	for _, c := range r.Conditions {
		if EvaluateCondition(c, answers) {
			return true
		}
	}
	return false
}

// IsVisible reports whether questionID is shown. A question without a
// gating rule is always visible; otherwise every rule targeting it must
// hold.
func IsVisible(questionID string, answers Answers, rules []LogicRule) bool {
	for _, r := range rules {
		if r.ShowQuestionID != questionID {
			continue
		}
		if !EvaluateRule(r, answers) {
			return false
		}
	}
	return true
}

// VisibleQuestions returns the questions of s visible under answers, in
// survey order.
func VisibleQuestions(s Survey, answers Answers) []Question {
	out := make([]Question, 0, len(s.Questions))
	for _, q := range s.Questions {
		if IsVisible(q.ID, answers, s.LogicRules) {
			out = append(out, q)
		}
	}
	return out
}

// Progress counts answered questions among the visible ones.
type Progress struct {
	Answered int `json:"answered"`
	Total    int `json:"total"`
	Percent  int `json:"percent"`
}

// ProgressOf computes completion of s under answers. Hidden questions are
// not counted; an answer with no text is not an answer.
func ProgressOf(s Survey, answers Answers) Progress {
	var p Progress
	for _, q := range VisibleQuestions(s, answers) {
		p.Total++
		if a, ok := answers[q.ID]; ok && !a.Empty() {
			p.Answered++
		}
	}
	if p.Total > 0 {
		p.Percent = int(math.Round(float64(p.Answered) * 100 / float64(p.Total)))
	}
	return p
}
