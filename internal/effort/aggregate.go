package effort

import (
	"math"

	"github.com/shopspring/decimal"
	"github.com/zulandar/consuntivo/internal/itdate"
)

// DefaultWorkdayHours is the length of a working day used to turn
// scheduled hours into a duration in days.
const DefaultWorkdayHours = 8

// ProjectView is a Project annotated with the derived KPIs the reporting
// views render. It is recomputed from the sub-task list on every call and
// never stored.
type ProjectView struct {
	Code            Code          `json:"codice"`
	Name            string        `json:"nome"`
	Description     string        `json:"descrizione"`
	Responsible     string        `json:"responsabile"`
	Status          string        `json:"stato"`
	StartDate       *string       `json:"dataInizio"`
	EndDate         *string       `json:"dataFine"`
	TotalDays       int           `json:"giorniTotali"`
	ScheduledEffort float64       `json:"effortScheduled"`
	ActualEffort    float64       `json:"effortActual"`
	DeltaEffort     float64       `json:"effortDelta"`
	MeanCompletion  int           `json:"pctCompleteMedia"`
	SubTasks        []SubTaskView `json:"figli"`
}

// SubTaskView is a SubTask with its derived fields.
type SubTaskView struct {
	SubTask

	EffortActual float64 `json:"effortActual"`
	EffortDelta  float64 `json:"effortDelta"`
	// Completion is capped at 100; CompletionRaw keeps the uncapped value
	// so overruns stay detectable.
	Completion      float64 `json:"pctComplete"`
	CompletionRaw   float64 `json:"pctCompleteRaw"`
	CompletionValid bool    `json:"pctValid"`
	Overrun         bool    `json:"overrun"`
	// DeltaDays is scheduled finish minus actual end; negative means late.
	// Nil when either date is missing or unparseable.
	DeltaDays *int `json:"deltaGiorni"`
}

// Aggregator computes project views. The zero value uses
// DefaultWorkdayHours.
type Aggregator struct {
	WorkdayHours float64
}

// Aggregate computes the view of p with the default workday.
func Aggregate(p Project) ProjectView {
	return Aggregator{}.Aggregate(p)
}

// AggregateAll computes views for every project, in input order.
func AggregateAll(projects []Project) []ProjectView {
	return Aggregator{}.AggregateAll(projects)
}

// AggregateAll computes views for every project, in input order.
func (a Aggregator) AggregateAll(projects []Project) []ProjectView {
	views := make([]ProjectView, len(projects))
	for i, p := range projects {
		views[i] = a.Aggregate(p)
	}
	return views
}

// Aggregate computes the view of p. Missing or malformed numbers count as
// zero and sub-tasks without a usable completion are left out of the mean;
// it never fails.
func (a Aggregator) Aggregate(p Project) ProjectView {
	workday := a.WorkdayHours
	if workday <= 0 {
		workday = DefaultWorkdayHours
	}

	var (
		scheduled, actual float64
		pctSum            float64
		pctCount          int
	)
	subs := make([]SubTaskView, len(p.SubTasks))
	for i, s := range p.SubTasks {
		sv := subTaskView(s)
		subs[i] = sv

		scheduled += float64(s.ScheduledEffort)
		actual += s.ActualEffort.Hours()
		if sv.CompletionValid {
			pctSum += sv.Completion
			pctCount++
		}
	}

	mean := 0
	if pctCount > 0 {
		mean = int(roundHalfUp(pctSum / float64(pctCount)))
	}

	days := 0
	if scheduled > 0 {
		days = int(math.Ceil(scheduled / workday))
	}

	status := DefaultStatus
	if p.Status != nil {
		status = *p.Status
	}

	return ProjectView{
		Code:            p.Code,
		Name:            p.Description,
		Description:     p.Description,
		Responsible:     p.Responsible,
		Status:          status,
		StartDate:       p.ScheduledStart,
		EndDate:         p.ScheduledFinish,
		TotalDays:       days,
		ScheduledEffort: scheduled,
		ActualEffort:    Round2(actual),
		DeltaEffort:     Round2(scheduled - actual),
		MeanCompletion:  mean,
		SubTasks:        subs,
	}
}

// subTaskView derives the per-sub-task fields.
func subTaskView(s SubTask) SubTaskView {
	scheduled := float64(s.ScheduledEffort)
	sv := SubTaskView{
		SubTask:      s,
		EffortActual: Round2(s.ActualEffort.Hours()),
		EffortDelta:  Round2(scheduled - s.ActualEffort.Hours()),
	}

	raw := 0.0
	if scheduled > 0 {
		raw = s.ActualEffort.CompletionBase() / scheduled * 100
	}
	if math.IsInf(raw, 0) {
		// Keep the view JSON-encodable.
		raw = math.Copysign(math.MaxFloat64, raw)
	}
	if !math.IsNaN(raw) {
		sv.CompletionValid = true
		sv.CompletionRaw = raw
		sv.Completion = math.Min(100, raw)
		sv.Overrun = raw > 100
	}

	sv.DeltaDays = deltaDays(s.ScheduledFinish, s.ActualEnd)
	return sv
}

// deltaDays returns finish-minus-end in whole days, or nil.
func deltaDays(scheduledFinish, actualEnd *string) *int {
	if scheduledFinish == nil || actualEnd == nil {
		return nil
	}
	sf := itdate.Parse(*scheduledFinish)
	ae := itdate.Parse(*actualEnd)
	if itdate.IsFallback(sf) || itdate.IsFallback(ae) {
		return nil
	}
	// Both are UTC midnights; Sub would saturate past ~292 years.
	d := int((sf.Unix() - ae.Unix()) / 86400)
	return &d
}

// Round2 rounds v to two decimal places. Non-finite values are returned
// unchanged.
func Round2(v float64) float64 {
	return roundPlaces(v, 2)
}

func roundPlaces(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

// roundHalfUp rounds halves towards positive infinity.
func roundHalfUp(v float64) float64 {
	return math.Floor(v + 0.5)
}
