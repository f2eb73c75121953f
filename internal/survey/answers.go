package survey

import "strings"

// Answer is the response to one question. Checkbox answers hold a set of
// selected options; every other type holds a single value.
type Answer struct {
	values []string
	multi  bool
}

// Single returns a one-value answer.
func Single(v string) Answer {
	return Answer{values: []string{v}}
}

// Multi returns a set answer. Empty and repeated values are dropped; the
// first-selection order is kept.
func Multi(values ...string) Answer {
	a := Answer{multi: true}
	for _, v := range values {
		if v == "" || a.Has(v) {
			continue
		}
		a.values = append(a.values, v)
	}
	return a
}

// IsMulti reports whether a is a set answer.
func (a Answer) IsMulti() bool { return a.multi }

// Values returns a copy of the selected values.
func (a Answer) Values() []string {
	return append([]string(nil), a.values...)
}

// Has reports whether v is among the values.
func (a Answer) Has(v string) bool {
	for _, x := range a.values {
		if x == v {
			return true
		}
	}
	return false
}

// Toggle returns a set answer with v selected or deselected.
func (a Answer) Toggle(v string, on bool) Answer {
	if !on {
		kept := make([]string, 0, len(a.values))
		for _, x := range a.values {
			if x != v {
				kept = append(kept, x)
			}
		}
		return Multi(kept...)
	}
	return Multi(append(a.Values(), v)...)
}

// Text is the form rule conditions compare against: the value itself, or
// for set answers the values joined with commas.
func (a Answer) Text() string {
	return strings.Join(a.values, ",")
}

// Empty reports whether the answer carries no text.
func (a Answer) Empty() bool { return a.Text() == "" }

// Encode returns the delimited string form used at the serialization
// boundary. Set values are joined with "," after escaping "\" as "\\" and
// "," as "\,"; single values are returned verbatim.
func (a Answer) Encode() string {
	if !a.multi {
		return a.Text()
	}
	parts := make([]string, len(a.values))
	for i, v := range a.values {
		v = strings.ReplaceAll(v, `\`, `\\`)
		parts[i] = strings.ReplaceAll(v, ",", `\,`)
	}
	return strings.Join(parts, ",")
}

// DecodeAnswer parses the output of Encode. multi selects set decoding.
func DecodeAnswer(s string, multi bool) Answer {
	if !multi {
		return Single(s)
	}
	var (
		values []string
		cur    strings.Builder
		escape bool
	)
	for _, r := range s {
		switch {
		case escape:
			cur.WriteRune(r)
			escape = false
		case r == '\\':
			escape = true
		case r == ',':
			values = append(values, cur.String())
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	if escape {
		cur.WriteRune('\\')
	}
	values = append(values, cur.String())
	return Multi(values...)
}

// Answers maps question ids to answers. It is session state and is never
// persisted.
type Answers map[string]Answer

// Text returns the comparison text for id and whether it was answered.
func (a Answers) Text(id string) (string, bool) {
	ans, ok := a[id]
	if !ok {
		return "", false
	}
	return ans.Text(), true
}

// Encode returns the wire form of a.
func (a Answers) Encode() map[string]string {
	out := make(map[string]string, len(a))
	for id, ans := range a {
		out[id] = ans.Encode()
	}
	return out
}

// DecodeAnswers parses wire answers, using s to decide which questions
// hold sets. Ids unknown to s are decoded as single values.
func DecodeAnswers(raw map[string]string, s Survey) Answers {
	out := make(Answers, len(raw))
	for id, v := range raw {
		multi := false
		if q, ok := s.Question(id); ok {
			multi = q.IsMultiple()
		}
		out[id] = DecodeAnswer(v, multi)
	}
	return out
}
