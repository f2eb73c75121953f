package survey

// Operator compares a prior answer with a literal value.
type Operator string

// Condition operators.
const (
	OpEquals      Operator = "equals"
	OpNotEquals   Operator = "not_equals"
	OpContains    Operator = "contains"
	OpLessThan    Operator = "less_than"
	OpGreaterThan Operator = "greater_than"
)

// Operators lists every condition operator.
var Operators = []Operator{OpEquals, OpNotEquals, OpContains, OpLessThan, OpGreaterThan}

// Valid reports whether o is a known operator.
func (o Operator) Valid() bool {
	for _, known := range Operators {
		if o == known {
			return true
		}
	}
	return false
}

// Combinator joins the conditions of a single rule.
type Combinator string

// Rule combinators.
const (
	All Combinator = "AND"
	Any Combinator = "OR"
)

// Condition is an atomic comparison against the answer to QuestionID. It
// references the question without owning it.
type Condition struct {
	QuestionID string   `json:"questionId"`
	Operator   Operator `json:"operator"`
	Value      string   `json:"value"`
}

// LogicRule gates the visibility of ShowQuestionID on its conditions.
type LogicRule struct {
	ID             string      `json:"id"`
	Conditions     []Condition `json:"conditions"`
	Operator       Combinator  `json:"operator"`
	ShowQuestionID string      `json:"showQuestionId"`
}

// references reports whether any condition of r reads questionID.
func (r LogicRule) references(questionID string) bool {
	for _, c := range r.Conditions {
		if c.QuestionID == questionID {
			return true
		}
	}
	return false
}
