// Package timesheet flattens the activity reports of every project into a
// technician-oriented list and summarizes it.
package timesheet

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/zulandar/consuntivo/internal/effort"
	"github.com/zulandar/consuntivo/internal/itdate"
	"github.com/zulandar/consuntivo/internal/lenient"
)

// Activity is one report row, tagged with the project and sub-task it was
// logged against.
type Activity struct {
	Technician  string    `json:"tecnico"`
	Hours       float64   `json:"effort"`
	Date        string    `json:"data"`
	Day         time.Time `json:"-"`
	DateValid   bool      `json:"dataValida"`
	Description string    `json:"descrizione"`
	Project     string    `json:"commessa"`
	SubTask     string    `json:"sottocommessa"`
}

// ParseHours converts a comma-decimal effort such as "1,5" to hours. Only
// the first comma is treated as the separator; unparseable text counts as
// zero.
func ParseHours(s string) float64 {
	v := lenient.Float(strings.Replace(s, ",", ".", 1))
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Flatten lists every report of every sub-task, newest first. Reports
// without a technician are skipped. Rows whose date does not parse are
// kept and sort after all dated rows.
func Flatten(projects []effort.Project) []Activity {
	var out []Activity
	for _, p := range projects {
		for _, st := range p.SubTasks {
			for _, r := range st.Reports {
				if r.Technician == "" {
					continue
				}
				day, ok := itdate.ParseNumeric(r.Date)
				out = append(out, Activity{
					Technician:  r.Technician,
					Hours:       ParseHours(r.Effort),
					Date:        r.Date,
					Day:         day,
					DateValid:   ok,
					Description: r.Description,
					Project:     string(p.Code),
					SubTask:     st.Description,
				})
			}
		}
	}
	SortByDate(out)
	return out
}

// SortByDate orders activities newest first, undated last. Equal dates keep
// their relative order.
func SortByDate(activities []Activity) {
	sort.SliceStable(activities, func(i, j int) bool {
		a, b := activities[i], activities[j]
		if a.DateValid != b.DateValid {
			return a.DateValid
		}
		return a.Day.After(b.Day)
	})
}

// Filter selects activities. Bounds are inclusive and zero bounds are open;
// empty sets match everything.
type Filter struct {
	From        time.Time
	To          time.Time
	Technicians []string
	Projects    []string
}

// ErrBadFilter is returned by ParseFilter for a bound that is not a
// dd/MM/yyyy date.
var ErrBadFilter = errors.New("filtro non valido")

// ParseFilter builds a filter from dd/MM/yyyy bounds and technician and
// project lists. Empty bounds are open; list entries may themselves be
// comma-separated.
func ParseFilter(from, to string, technicians, projects []string) (Filter, error) {
	var f Filter
	if from = strings.TrimSpace(from); from != "" {
		t, ok := itdate.ParseNumeric(from)
		if !ok {
			return f, fmt.Errorf("%w: data iniziale %q", ErrBadFilter, from)
		}
		f.From = t
	}
	if to = strings.TrimSpace(to); to != "" {
		t, ok := itdate.ParseNumeric(to)
		if !ok {
			return f, fmt.Errorf("%w: data finale %q", ErrBadFilter, to)
		}
		f.To = t
	}
	if f.From.After(f.To) && !f.To.IsZero() {
		return f, fmt.Errorf("%w: la data iniziale segue quella finale", ErrBadFilter)
	}
	f.Technicians = splitAll(technicians)
	f.Projects = splitAll(projects)
	return f, nil
}

func splitAll(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// Match reports whether a passes f. Undated activities are never excluded
// by the date bounds.
func (f Filter) Match(a Activity) bool {
	if a.DateValid {
		if !f.From.IsZero() && a.Day.Before(f.From) {
			return false
		}
		if !f.To.IsZero() && a.Day.After(f.To) {
			return false
		}
	}
	if len(f.Technicians) > 0 && !slices.Contains(f.Technicians, a.Technician) {
		return false
	}
	if len(f.Projects) > 0 && !slices.Contains(f.Projects, a.Project) {
		return false
	}
	return true
}

// Apply returns the activities matching f, preserving order.
func (f Filter) Apply(activities []Activity) []Activity {
	out := make([]Activity, 0, len(activities))
	for _, a := range activities {
		if f.Match(a) {
			out = append(out, a)
		}
	}
	return out
}

// Totals are the headline figures of a set of activities.
type Totals struct {
	Hours       float64 `json:"oreTotali"`
	Activities  int     `json:"attivita"`
	Technicians int     `json:"tecnici"`
	Projects    int     `json:"commesse"`
}

// Group is the activity of a single technician.
type Group struct {
	Technician string     `json:"tecnico"`
	Hours      float64    `json:"ore"`
	Count      int        `json:"attivita"`
	First      *time.Time `json:"primaData,omitempty"`
	Last       *time.Time `json:"ultimaData,omitempty"`
	Activities []Activity `json:"righe"`
}

// Summary is the technician view over a filtered activity list.
type Summary struct {
	Totals Totals  `json:"totali"`
	Groups []Group `json:"gruppi"`
}

// Summarize computes totals and per-technician groups. Total hours are
// rounded to one decimal, group hours to two. Groups are sorted by
// technician name; rows inside a group keep the input order.
func Summarize(activities []Activity) Summary {
	var total float64
	projects := map[string]bool{}
	byTech := map[string]*Group{}
	for _, a := range activities {
		total += a.Hours
		projects[a.Project] = true
		g, ok := byTech[a.Technician]
		if !ok {
			g = &Group{Technician: a.Technician}
			byTech[a.Technician] = g
		}
		g.Hours += a.Hours
		g.Count++
		g.Activities = append(g.Activities, a)
		if a.DateValid {
			day := a.Day
			if g.First == nil || day.Before(*g.First) {
				g.First = &day
			}
			if g.Last == nil || day.After(*g.Last) {
				g.Last = &day
			}
		}
	}

	s := Summary{
		Totals: Totals{
			Hours:       round(total, 1),
			Activities:  len(activities),
			Technicians: len(byTech),
			Projects:    len(projects),
		},
		Groups: make([]Group, 0, len(byTech)),
	}
	for _, g := range byTech {
		g.Hours = round(g.Hours, 2)
		s.Groups = append(s.Groups, *g)
	}
	sort.Slice(s.Groups, func(i, j int) bool { return s.Groups[i].Technician < s.Groups[j].Technician })
	return s
}

// Technicians returns the sorted distinct technicians of activities.
func Technicians(activities []Activity) []string {
	return distinct(activities, func(a Activity) string { return a.Technician })
}

// Projects returns the sorted distinct project codes of activities.
func Projects(activities []Activity) []string {
	return distinct(activities, func(a Activity) string { return a.Project })
}

func distinct(activities []Activity, key func(Activity) string) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, a := range activities {
		k := key(a)
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

func round(v float64, places int32) float64 {
	f, _ := decimal.NewFromFloat(v).Round(places).Float64()
	return f
}
