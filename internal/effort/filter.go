package effort

import (
	"slices"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultExcluded lists the internal project codes hidden from the project
// list unless explicitly requested.
var DefaultExcluded = []string{"0005", "0006", "0007", "0009", "0090", "0091", "T2_00", "BG.ND", "BG.00"}

// Filter selects which projects a list view shows.
type Filter struct {
	// Search matches the project code or description, ignoring case and
	// diacritics. Empty matches everything.
	Search string
	// Excluded codes are hidden.
	Excluded []string
}

// Apply returns the views matching f, preserving order.
func (f Filter) Apply(views []ProjectView) []ProjectView {
	needle := Fold(f.Search)
	out := make([]ProjectView, 0, len(views))
	for _, v := range views {
		if slices.Contains(f.Excluded, string(v.Code)) {
			continue
		}
		if needle != "" &&
			!strings.Contains(Fold(string(v.Code)), needle) &&
			!strings.Contains(Fold(v.Description), needle) {
			continue
		}
		out = append(out, v)
	}
	return out
}

// Find returns the view with the given code.
func Find(views []ProjectView, code string) (ProjectView, bool) {
	for _, v := range views {
		if string(v.Code) == code {
			return v, true
		}
	}
	return ProjectView{}, false
}

// Fold lowercases s and strips combining marks, so "Città" matches "citta".
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(folded)
}
