package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/zulandar/consuntivo/internal/db"
	"github.com/zulandar/consuntivo/internal/effort"
	"github.com/zulandar/consuntivo/internal/export"
	"github.com/zulandar/consuntivo/internal/itdate"
	"github.com/zulandar/consuntivo/internal/timesheet"
)

const overrunColor = "#dc2626"

var timeNow = time.Now

// dayText formats an optional day as dd/mm/yyyy.
func dayText(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return itdate.FormatNumeric(*t)
}

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print reports from the latest snapshot",
	}

	cmd.AddCommand(newReportProjectsCmd())
	cmd.AddCommand(newReportActivitiesCmd())
	return cmd
}

func newReportProjectsCmd() *cobra.Command {
	var (
		configPath string
		search     string
		all        bool
	)

	cmd := &cobra.Command{
		Use:   "commesse [codice]",
		Short: "Planned versus actual effort per project",
		Long:  "Lists the projects of the latest snapshot with planned, actual and delta effort and the mean completion. With a project code, lists its sub-tasks.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code := ""
			if len(args) == 1 {
				code = args[0]
			}
			return runReportProjects(cmd, configPath, search, all, code)
		},
	}

	addConfigFlag(cmd, &configPath)
	cmd.Flags().StringVarP(&search, "search", "s", "", "filter by code or description")
	cmd.Flags().BoolVar(&all, "all", false, "include the excluded internal projects")
	return cmd
}

func runReportProjects(cmd *cobra.Command, configPath, search string, all bool, code string) error {
	out := cmd.OutOrStdout()
	cfg, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}
	projects, snap, err := db.LatestProjects(gormDB)
	if err != nil {
		return fmt.Errorf("no snapshot available, run cns refresh: %w", err)
	}
	views := effort.Aggregator{WorkdayHours: cfg.Dashboard.WorkdayHours}.AggregateAll(projects)

	if code != "" {
		v, ok := effort.Find(views, code)
		if !ok {
			return fmt.Errorf("project %s not found", code)
		}
		printSubTasks(cmd, v)
		return nil
	}

	f := effort.Filter{Search: search}
	if !all {
		f.Excluded = cfg.Dashboard.ExcludedProjects
	}
	views = f.Apply(views)

	fmt.Fprintf(out, "Snapshot %d del %s: %d commesse\n\n", snap.ID, snap.FetchedAt.Local().Format("02/01/2006 15:04"), len(views))
	cols := []column{
		{title: "Codice"},
		{title: "Descrizione", max: 40},
		{title: "Responsabile", max: 20},
		{title: "Stato"},
		{title: "Pianificate", right: true},
		{title: "Effettive", right: true},
		{title: "Delta", right: true},
		{title: "Compl.", right: true},
	}
	rows := make([][]cell, len(views))
	for i, v := range views {
		rows[i] = []cell{
			{text: string(v.Code)},
			{text: v.Description},
			{text: v.Responsible},
			{text: v.Status},
			{text: formatHours(v.ScheduledEffort)},
			{text: formatHours(v.ActualEffort)},
			deltaCell(v.DeltaEffort),
			completionCell(float64(v.MeanCompletion)),
		}
	}
	renderTable(out, cols, rows)
	return nil
}

func printSubTasks(cmd *cobra.Command, v effort.ProjectView) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s %s (%s)\n\n", v.Code, v.Description, v.Status)
	cols := []column{
		{title: "Codice"},
		{title: "Descrizione", max: 40},
		{title: "Pianificate", right: true},
		{title: "Effettive", right: true},
		{title: "Delta", right: true},
		{title: "Compl.", right: true},
		{title: "Giorni", right: true},
	}
	rows := make([][]cell, len(v.SubTasks))
	for i, st := range v.SubTasks {
		days := cell{text: "-"}
		if st.DeltaDays != nil {
			days = cell{text: strconv.Itoa(*st.DeltaDays)}
			if *st.DeltaDays < 0 {
				days.color = overrunColor
			}
		}
		compl := cell{text: "-"}
		if st.CompletionValid {
			compl = completionCell(st.Completion)
		}
		rows[i] = []cell{
			{text: string(st.Code)},
			{text: st.Description},
			{text: formatHours(float64(st.ScheduledEffort))},
			{text: formatHours(st.EffortActual)},
			deltaCell(st.EffortDelta),
			compl,
			days,
		}
	}
	renderTable(out, cols, rows)
}

func deltaCell(delta float64) cell {
	c := cell{text: formatHours(delta)}
	if delta < 0 {
		c.color = overrunColor
	}
	return c
}

func completionCell(pct float64) cell {
	return cell{
		text:  formatHours(effort.Round2(pct)) + "%",
		color: effort.CompletionBand(pct).Hex(),
	}
}

func newReportActivitiesCmd() *cobra.Command {
	var (
		configPath  string
		from, to    string
		technicians []string
		projects    []string
		xlsxPath    string
		detail      bool
	)

	cmd := &cobra.Command{
		Use:   "tecnici",
		Short: "Hours per technician",
		Long:  "Summarizes the activity reports of the latest snapshot per technician. Dates are dd/mm/yyyy and inclusive.",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := timesheet.ParseFilter(from, to, technicians, projects)
			if err != nil {
				return err
			}
			return runReportActivities(cmd, configPath, f, xlsxPath, detail)
		},
	}

	addConfigFlag(cmd, &configPath)
	cmd.Flags().StringVar(&from, "from", "", "first day, dd/mm/yyyy")
	cmd.Flags().StringVar(&to, "to", "", "last day, dd/mm/yyyy")
	cmd.Flags().StringSliceVarP(&technicians, "tecnico", "t", nil, "only these technicians")
	cmd.Flags().StringSliceVar(&projects, "commessa", nil, "only these project codes")
	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "also write the rows to this spreadsheet (\"-\" for the default name)")
	cmd.Flags().BoolVar(&detail, "detail", false, "list every activity row")
	return cmd
}

func runReportActivities(cmd *cobra.Command, configPath string, f timesheet.Filter, xlsxPath string, detail bool) error {
	out := cmd.OutOrStdout()
	_, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}
	projects, _, err := db.LatestProjects(gormDB)
	if err != nil {
		return fmt.Errorf("no snapshot available, run cns refresh: %w", err)
	}
	matched := f.Apply(timesheet.Flatten(projects))
	summary := timesheet.Summarize(matched)

	t := summary.Totals
	fmt.Fprintf(out, "Ore %s, %d attività, %d tecnici, %d commesse\n\n", formatHours(t.Hours), t.Activities, t.Technicians, t.Projects)

	cols := []column{
		{title: "Tecnico", max: 30},
		{title: "Ore", right: true},
		{title: "Attività", right: true},
		{title: "Dal"},
		{title: "Al"},
	}
	rows := make([][]cell, len(summary.Groups))
	for i, g := range summary.Groups {
		rows[i] = []cell{
			{text: g.Technician},
			{text: formatHours(g.Hours)},
			{text: strconv.Itoa(g.Count)},
			{text: dayText(g.First)},
			{text: dayText(g.Last)},
		}
	}
	renderTable(out, cols, rows)

	if detail {
		fmt.Fprintln(out)
		printActivities(cmd, matched)
	}

	if xlsxPath != "" {
		if xlsxPath == "-" {
			xlsxPath = export.FileName(timeNow())
		}
		file, err := os.Create(xlsxPath)
		if err != nil {
			return fmt.Errorf("create %s: %w", xlsxPath, err)
		}
		if err := export.WriteActivities(file, matched); err != nil {
			file.Close()
			return err
		}
		if err := file.Close(); err != nil {
			return fmt.Errorf("close %s: %w", xlsxPath, err)
		}
		fmt.Fprintf(out, "\nWrote %d rows to %s\n", len(matched), xlsxPath)
	}
	return nil
}

func printActivities(cmd *cobra.Command, activities []timesheet.Activity) {
	cols := []column{
		{title: "Data"},
		{title: "Tecnico", max: 24},
		{title: "Ore", right: true},
		{title: "Commessa"},
		{title: "Sottocommessa", max: 30},
		{title: "Descrizione", max: 40},
	}
	rows := make([][]cell, len(activities))
	for i, a := range activities {
		rows[i] = []cell{
			{text: a.Date},
			{text: a.Technician},
			{text: formatHours(a.Hours)},
			{text: a.Project},
			{text: a.SubTask},
			{text: a.Description},
		}
	}
	renderTable(cmd.OutOrStdout(), cols, rows)
}
