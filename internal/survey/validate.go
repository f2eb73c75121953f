package survey

import (
	"fmt"
	"math"
	"strings"
)

// Validate returns the advisory messages for q, in field order. An empty
// result means q may be saved. Options are counted after normalization, so
// duplicates never reach the count.
func Validate(q Question) []string {
	var msgs []string
	if strings.TrimSpace(q.Label) == "" {
		msgs = append(msgs, "la domanda deve avere un testo")
	}
	switch b := q.Body.(type) {
	case nil:
		msgs = append(msgs, "tipo di domanda non specificato")
	case Choice:
		if len(NormalizeOptions(b.Options)) < 2 {
			msgs = append(msgs, "servono almeno 2 opzioni distinte")
		}
	case Range:
		if !finite(b.Min) || !finite(b.Max) {
			msgs = append(msgs, "minimo e massimo devono essere numeri validi")
		} else if b.Min >= b.Max {
			msgs = append(msgs, "il minimo deve essere inferiore al massimo")
		}
	}
	return msgs
}

// ValidateRule returns the advisory messages for r within s.
func ValidateRule(r LogicRule, s Survey) []string {
	var msgs []string
	if _, ok := s.Question(r.ShowQuestionID); !ok {
		msgs = append(msgs, fmt.Sprintf("la domanda da mostrare %q non esiste", r.ShowQuestionID))
	}
	if len(r.Conditions) == 0 {
		msgs = append(msgs, "la regola deve avere almeno una condizione")
	}
	if r.Operator != All && r.Operator != Any {
		msgs = append(msgs, fmt.Sprintf("operatore logico %q non valido", r.Operator))
	}
	for i, c := range r.Conditions {
		if _, ok := s.Question(c.QuestionID); !ok {
			msgs = append(msgs, fmt.Sprintf("condizione %d: la domanda %q non esiste", i+1, c.QuestionID))
		}
		if c.QuestionID == r.ShowQuestionID && c.QuestionID != "" {
			msgs = append(msgs, fmt.Sprintf("condizione %d: la domanda non può dipendere da se stessa", i+1))
		}
		if !c.Operator.Valid() {
			msgs = append(msgs, fmt.Sprintf("condizione %d: operatore %q non valido", i+1, c.Operator))
		}
	}
	return msgs
}

// ValidateSurvey collects the messages of every question and rule of s,
// prefixed with the item they belong to.
func ValidateSurvey(s Survey) []string {
	var msgs []string
	if strings.TrimSpace(s.Title) == "" {
		msgs = append(msgs, "il questionario deve avere un titolo")
	}
	seen := make(map[string]bool, len(s.Questions))
	for _, q := range s.Questions {
		if seen[q.ID] {
			msgs = append(msgs, fmt.Sprintf("%s: id duplicato", q.ID))
		}
		seen[q.ID] = true
		for _, m := range Validate(q) {
			msgs = append(msgs, q.ID+": "+m)
		}
	}
	for _, r := range s.LogicRules {
		for _, m := range ValidateRule(r, s) {
			msgs = append(msgs, r.ID+": "+m)
		}
	}
	return msgs
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
