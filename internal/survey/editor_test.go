package survey

import (
	"errors"
	"fmt"
	"testing"
)

func newTestEditor() *Editor {
	e := NewEditor(Survey{Title: "t"})
	n := 0
	e.newID = func() string {
		n++
		return fmt.Sprintf("id%d", n)
	}
	return e
}

func TestEditor_AddNormalizes(t *testing.T) {
	e := newTestEditor()
	q, msgs := e.Add(Question{Label: "  Scegli ", Body: Choice{Options: []string{"A", "a", " B "}}})
	if len(msgs) != 0 {
		t.Fatalf("Add() messages = %v", msgs)
	}
	if q.ID != "id1" || q.Label != "Scegli" {
		t.Errorf("Add() = %+v", q)
	}
	if opts := q.Options(); len(opts) != 2 || opts[0] != "A" || opts[1] != "B" {
		t.Errorf("options = %v, want [A B]", opts)
	}
}

func TestEditor_AddRejectsInvalid(t *testing.T) {
	e := newTestEditor()
	if _, msgs := e.Add(Question{Label: "x", Body: Choice{Options: []string{"A"}}}); len(msgs) != 1 {
		t.Errorf("Add() messages = %v, want 1", msgs)
	}
	if n := len(e.Survey().Questions); n != 0 {
		t.Errorf("invalid question was added, have %d", n)
	}
}

func TestEditor_AddReassignsDuplicateID(t *testing.T) {
	e := newTestEditor()
	e.Add(Question{ID: "q1", Label: "a", Body: Text{}})
	q, _ := e.Add(Question{ID: "q1", Label: "b", Body: Text{}})
	if q.ID == "q1" {
		t.Error("duplicate id should be replaced")
	}
}

func TestEditor_Update(t *testing.T) {
	e := NewEditor(Demo())
	if _, err := e.Update(Question{ID: "missing", Label: "x", Body: Text{}}); !errors.Is(err, ErrQuestionNotFound) {
		t.Errorf("Update(missing) err = %v", err)
	}
	msgs, err := e.Update(Question{ID: "q4", Label: "", Body: Text{}})
	if err != nil || len(msgs) != 1 {
		t.Errorf("Update(invalid) = %v, %v", msgs, err)
	}
	if _, err := e.Update(Question{ID: "q4", Label: "Nuovo", Body: Range{Min: 0, Max: 5}}); err != nil {
		t.Fatal(err)
	}
	q, _ := e.Survey().Question("q4")
	if q.Type() != TypeScale || q.Label != "Nuovo" {
		t.Errorf("q4 = %+v", q)
	}
}

func TestEditor_Move(t *testing.T) {
	e := NewEditor(Demo())
	if err := e.Move("q7", -100); err != nil {
		t.Fatal(err)
	}
	qs := e.Survey().Questions
	if qs[0].ID != "q7" || qs[1].ID != "q1" || len(qs) != 9 {
		t.Errorf("after move first = %s, second = %s", qs[0].ID, qs[1].ID)
	}
	if err := e.Move("q7", 1); err != nil {
		t.Fatal(err)
	}
	if qs := e.Survey().Questions; qs[1].ID != "q7" {
		t.Errorf("q7 at %s", qs[1].ID)
	}
	if err := e.Move("nope", 1); !errors.Is(err, ErrQuestionNotFound) {
		t.Errorf("Move(nope) err = %v", err)
	}
}

func TestEditor_DeleteCascades(t *testing.T) {
	e := NewEditor(Demo())
	if _, msgs := e.AddRule(LogicRule{ID: "rule3", Operator: Any, ShowQuestionID: "q4", Conditions: []Condition{
		{QuestionID: "q1", Operator: OpEquals, Value: "No"},
		{QuestionID: "q3", Operator: OpEquals, Value: "No"},
	}}); len(msgs) != 0 {
		t.Fatalf("AddRule() = %v", msgs)
	}

	if err := e.Delete("q1a"); err != nil {
		t.Fatal(err)
	}
	if n := len(e.Survey().LogicRules); n != 2 {
		t.Fatalf("rules after deleting q1a = %d, want 2", n)
	}

	if err := e.Delete("q1"); err != nil {
		t.Fatal(err)
	}
	rules := e.Survey().LogicRules
	if len(rules) != 1 || rules[0].ID != "rule3" {
		t.Fatalf("rules after deleting q1 = %+v, want only rule3", rules)
	}
	if c := rules[0].Conditions; len(c) != 1 || c[0].QuestionID != "q3" {
		t.Errorf("rule3 conditions = %+v, want only q3", c)
	}

	if err := e.Delete("q3"); err != nil {
		t.Fatal(err)
	}
	if n := len(e.Survey().LogicRules); n != 0 {
		t.Errorf("rule without conditions should be dropped, have %d", n)
	}
	if err := e.Delete("q3"); !errors.Is(err, ErrQuestionNotFound) {
		t.Errorf("second Delete err = %v", err)
	}
}

func TestEditor_AddRuleDefaultsAndValidates(t *testing.T) {
	e := newTestEditor()
	e.Add(Question{ID: "a", Label: "a", Body: Text{}})
	e.Add(Question{ID: "b", Label: "b", Body: Text{}})
	r, msgs := e.AddRule(LogicRule{ShowQuestionID: "b", Conditions: []Condition{{QuestionID: "a", Operator: OpContains, Value: "x"}}})
	if len(msgs) != 0 {
		t.Fatalf("AddRule() = %v", msgs)
	}
	if r.Operator != All || r.ID == "" {
		t.Errorf("rule = %+v", r)
	}
	if _, msgs := e.AddRule(LogicRule{ShowQuestionID: "zz"}); len(msgs) == 0 {
		t.Error("invalid rule accepted")
	}
	if err := e.RemoveRule(r.ID); err != nil {
		t.Fatal(err)
	}
	if err := e.RemoveRule(r.ID); !errors.Is(err, ErrRuleNotFound) {
		t.Errorf("RemoveRule twice err = %v", err)
	}
}

func TestEditor_ExportIsIndependent(t *testing.T) {
	e := NewEditor(Demo())
	out := e.Export()
	out.Questions[0].Label = "changed"
	out.LogicRules[0].Conditions[0].Value = "changed"
	s := e.Survey()
	if s.Questions[0].Label == "changed" || s.LogicRules[0].Conditions[0].Value == "changed" {
		t.Error("Export() shares state with the editor")
	}
}
