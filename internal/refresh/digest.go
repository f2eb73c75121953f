package refresh

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/zulandar/consuntivo/internal/db"
	"github.com/zulandar/consuntivo/internal/effort"
	"github.com/zulandar/consuntivo/internal/notify"
	"github.com/zulandar/consuntivo/internal/timesheet"
	"gorm.io/gorm"
)

// Digest colours by severity.
const (
	colorInfo    = "#36a64f"
	colorWarning = "#ff9900"
)

// maxOverruns bounds the overrun list in a digest message.
const maxOverruns = 10

// Digest is the activity of a reporting window.
type Digest struct {
	PeriodStart time.Time
	PeriodEnd   time.Time
	Summary     timesheet.Summary
	Overruns    []Overrun
}

// Overrun is a sub-task whose actual effort exceeds the scheduled one.
type Overrun struct {
	Project   string
	SubTask   string
	Scheduled float64
	Actual    float64
	Percent   float64
}

// BuildDigest collects the activities logged in the window days ending on
// now's UTC date, plus every overrunning sub-task. It returns nil when there
// is nothing to report.
func BuildDigest(projects []effort.Project, now time.Time, windowDays int, agg effort.Aggregator) *Digest {
	if windowDays <= 0 {
		windowDays = 7
	}
	now = now.UTC()
	end := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	start := end.AddDate(0, 0, -(windowDays - 1))

	var dated []timesheet.Activity
	for _, a := range timesheet.Flatten(projects) {
		if a.DateValid {
			dated = append(dated, a)
		}
	}
	in := timesheet.Filter{From: start, To: end}.Apply(dated)

	d := &Digest{PeriodStart: start, PeriodEnd: end, Summary: timesheet.Summarize(in)}
	for _, v := range agg.AggregateAll(projects) {
		for _, st := range v.SubTasks {
			if !st.Overrun {
				continue
			}
			d.Overruns = append(d.Overruns, Overrun{
				Project:   string(v.Code),
				SubTask:   st.Description,
				Scheduled: float64(st.ScheduledEffort),
				Actual:    st.EffortActual,
				Percent:   st.CompletionRaw,
			})
		}
	}
	sort.SliceStable(d.Overruns, func(i, j int) bool { return d.Overruns[i].Percent > d.Overruns[j].Percent })

	if d.Summary.Totals.Activities == 0 && len(d.Overruns) == 0 {
		return nil
	}
	return d
}

// Format renders d as a notification.
func (d *Digest) Format() notify.Message {
	var b strings.Builder
	for _, g := range d.Summary.Groups {
		fmt.Fprintf(&b, "• %s: %.2f h (%d attività)\n", g.Technician, g.Hours, g.Count)
	}
	if len(d.Overruns) > 0 {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString("Sottocommesse oltre il preventivo:\n")
		for i, o := range d.Overruns {
			if i == maxOverruns {
				fmt.Fprintf(&b, "… e altre %d\n", len(d.Overruns)-maxOverruns)
				break
			}
			fmt.Fprintf(&b, "• %s / %s: %.2f h su %.2f (%.0f%%)\n", o.Project, o.SubTask, o.Actual, o.Scheduled, o.Percent)
		}
	}

	color := colorInfo
	if len(d.Overruns) > 0 {
		color = colorWarning
	}
	t := d.Summary.Totals
	return notify.Message{
		Title: fmt.Sprintf("Consuntivo %s – %s",
			d.PeriodStart.Format("02/01/2006"), d.PeriodEnd.Format("02/01/2006")),
		Text:  strings.TrimRight(b.String(), "\n"),
		Color: color,
		Fields: []notify.Field{
			{Name: "Ore", Value: fmt.Sprintf("%.1f", t.Hours), Short: true},
			{Name: "Attività", Value: fmt.Sprintf("%d", t.Activities), Short: true},
			{Name: "Tecnici", Value: fmt.Sprintf("%d", t.Technicians), Short: true},
			{Name: "Commesse", Value: fmt.Sprintf("%d", t.Projects), Short: true},
		},
	}
}

// Digester builds the digest from the latest snapshot and sends it.
type Digester struct {
	DB         *gorm.DB
	Notifier   notify.Notifier
	WindowDays int
	Aggregator effort.Aggregator

	now func() time.Time
}

// Send builds and delivers the digest. Nothing is sent when the window is
// empty; sent reports whether a message went out.
func (d *Digester) Send(ctx context.Context) (sent bool, err error) {
	projects, _, err := db.LatestProjects(d.DB)
	if err != nil {
		return false, fmt.Errorf("digest: %w", err)
	}
	now := time.Now
	if d.now != nil {
		now = d.now
	}
	digest := BuildDigest(projects, now(), d.WindowDays, d.Aggregator)
	if digest == nil {
		log.Printf("digest: nothing to report")
		return false, nil
	}
	if err := d.Notifier.Send(ctx, digest.Format()); err != nil {
		return false, fmt.Errorf("digest: send: %w", err)
	}
	return true, nil
}
