package survey

import (
	"encoding/json"
	"errors"
)

// ErrQuestionNotFound is returned when an id names no question of the survey.
var ErrQuestionNotFound = errors.New("survey: question not found")

// ErrRuleNotFound is returned when an id names no rule of the survey.
var ErrRuleNotFound = errors.New("survey: rule not found")

// Survey is a survey template: ordered questions plus visibility rules.
type Survey struct {
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Questions   []Question  `json:"questions"`
	LogicRules  []LogicRule `json:"logicRules"`
}

// MarshalJSON implements json.Marshaler. Collections are always arrays;
// conditions inside rules likewise.
func (s Survey) MarshalJSON() ([]byte, error) {
	type plain Survey
	p := plain(s)
	if p.Questions == nil {
		p.Questions = []Question{}
	}
	rules := make([]LogicRule, len(p.LogicRules))
	for i, r := range p.LogicRules {
		if r.Conditions == nil {
			r.Conditions = []Condition{}
		}
		rules[i] = r
	}
	p.LogicRules = rules
	return json.Marshal(p)
}

// Parse decodes a survey JSON document.
func Parse(data []byte) (Survey, error) {
	var s Survey
	if err := json.Unmarshal(data, &s); err != nil {
		return Survey{}, err
	}
	return s, nil
}

// Question returns the question with the given id.
func (s Survey) Question(id string) (Question, bool) {
	for _, q := range s.Questions {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}

// index returns the position of question id, or -1.
func (s Survey) index(id string) int {
	for i, q := range s.Questions {
		if q.ID == id {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy of s.
func (s Survey) Clone() Survey {
	out := s
	out.Questions = make([]Question, len(s.Questions))
	for i, q := range s.Questions {
		if c, ok := q.Body.(Choice); ok {
			c.Options = append([]string(nil), c.Options...)
			q.Body = c
		}
		out.Questions[i] = q
	}
	out.LogicRules = make([]LogicRule, len(s.LogicRules))
	for i, r := range s.LogicRules {
		r.Conditions = append([]Condition(nil), r.Conditions...)
		out.LogicRules[i] = r
	}
	return out
}
