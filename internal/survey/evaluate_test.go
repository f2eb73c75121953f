package survey

import "testing"

func TestIsVisible_NoRules(t *testing.T) {
	if !IsVisible("q9", Answers{}, nil) {
		t.Error("question without rules should be visible")
	}
	if !IsVisible("q9", Answers{}, []LogicRule{}) {
		t.Error("question without rules should be visible")
	}
}

func TestIsVisible_AndRule(t *testing.T) {
	rule := LogicRule{
		ID:             "rule1",
		Operator:       All,
		Conditions:     []Condition{{QuestionID: "q1", Operator: OpEquals, Value: "Sì"}},
		ShowQuestionID: "q1a",
	}
	if !IsVisible("q1a", Answers{"q1": Single("Sì")}, []LogicRule{rule}) {
		t.Error("q1a should be visible when q1 = Sì")
	}
	if IsVisible("q1a", Answers{"q1": Single("No")}, []LogicRule{rule}) {
		t.Error("q1a should be hidden when q1 = No")
	}
	if IsVisible("q1a", Answers{}, []LogicRule{rule}) {
		t.Error("q1a should be hidden when q1 is unanswered")
	}
	if !IsVisible("q2", Answers{}, []LogicRule{rule}) {
		t.Error("ungated q2 should stay visible")
	}
}

func TestIsVisible_RulesAreConjoined(t *testing.T) {
	answers := Answers{"a": Single("1"), "b": Single("2")}
	rules := []LogicRule{
		{ID: "r1", Operator: Any, ShowQuestionID: "qX", Conditions: []Condition{
			{QuestionID: "a", Operator: OpEquals, Value: "1"},
			{QuestionID: "b", Operator: OpEquals, Value: "nope"},
		}},
		{ID: "r2", Operator: Any, ShowQuestionID: "qX", Conditions: []Condition{
			{QuestionID: "a", Operator: OpEquals, Value: "nope"},
		}},
	}
	if !EvaluateRule(rules[0], answers) {
		t.Fatal("r1 should hold")
	}
	if EvaluateRule(rules[1], answers) {
		t.Fatal("r2 should not hold")
	}
	if IsVisible("qX", answers, rules) {
		t.Error("qX should be hidden when one of its rules fails")
	}
}

func TestEvaluateRule_Empty(t *testing.T) {
	if !EvaluateRule(LogicRule{Operator: All}, Answers{}) {
		t.Error("empty AND rule should hold")
	}
	if EvaluateRule(LogicRule{Operator: Any}, Answers{}) {
		t.Error("empty OR rule should not hold")
	}
	if EvaluateRule(LogicRule{Operator: "XOR"}, Answers{}) {
		t.Error("unknown combinator should behave as OR")
	}
}

func TestEvaluateCondition(t *testing.T) {
	answers := Answers{
		"name":  Single("Mario Rossi"),
		"score": Single("7"),
		"bad":   Single("abc"),
		"multi": Multi("Leadership", "Flessibilità"),
	}
	tests := []struct {
		name string
		c    Condition
		want bool
	}{
		{"equals match", Condition{"name", OpEquals, "Mario Rossi"}, true},
		{"equals case sensitive", Condition{"name", OpEquals, "mario rossi"}, false},
		{"equals unanswered", Condition{"none", OpEquals, ""}, false},
		{"not equals", Condition{"name", OpNotEquals, "Luigi"}, true},
		{"not equals same", Condition{"name", OpNotEquals, "Mario Rossi"}, false},
		{"not equals unanswered", Condition{"none", OpNotEquals, "x"}, true},
		{"contains", Condition{"name", OpContains, "Ross"}, true},
		{"contains missing", Condition{"name", OpContains, "Verdi"}, false},
		{"contains unanswered", Condition{"none", OpContains, ""}, false},
		{"contains multi", Condition{"multi", OpContains, "Leadership"}, true},
		{"less than", Condition{"score", OpLessThan, "8"}, true},
		{"less than equal", Condition{"score", OpLessThan, "7"}, false},
		{"greater than", Condition{"score", OpGreaterThan, "6.5"}, true},
		{"greater than false", Condition{"score", OpGreaterThan, "10"}, false},
		{"numeric answer NaN", Condition{"bad", OpLessThan, "10"}, false},
		{"numeric value NaN", Condition{"score", OpGreaterThan, "x"}, false},
		{"numeric unanswered", Condition{"none", OpLessThan, "10"}, false},
		{"unknown operator", Condition{"name", "matches", "Mario"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EvaluateCondition(tt.c, answers); got != tt.want {
				t.Errorf("EvaluateCondition(%+v) = %v, want %v", tt.c, got, tt.want)
			}
		})
	}
}

func TestVisibleQuestions_Demo(t *testing.T) {
	s := Demo()
	ids := func(qs []Question) []string {
		out := make([]string, len(qs))
		for i, q := range qs {
			out[i] = q.ID
		}
		return out
	}

	got := ids(VisibleQuestions(s, Answers{}))
	if len(got) != 7 {
		t.Fatalf("visible = %v, want 7 questions", got)
	}
	for _, id := range got {
		if id == "q1a" || id == "q1b" {
			t.Errorf("%s should be hidden before q1 is answered", id)
		}
	}

	got = ids(VisibleQuestions(s, Answers{"q1": Single("Sì")}))
	if len(got) != 8 || got[1] != "q1a" {
		t.Errorf("visible = %v, want q1a after q1", got)
	}
}

func TestProgressOf(t *testing.T) {
	s := Demo()
	p := ProgressOf(s, Answers{})
	if p.Answered != 0 || p.Total != 7 || p.Percent != 0 {
		t.Errorf("empty progress = %+v", p)
	}
	p = ProgressOf(s, Answers{"q1": Single("No"), "q1b": Single(""), "q1a": Single("hidden")})
	if p.Answered != 1 || p.Total != 8 || p.Percent != 13 {
		t.Errorf("progress = %+v, want 1/8 13%%", p)
	}
}
