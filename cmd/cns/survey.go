package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/zulandar/consuntivo/internal/db"
	"github.com/zulandar/consuntivo/internal/invite"
	"github.com/zulandar/consuntivo/internal/survey"
)

func newSurveyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "survey",
		Short: "Survey commands",
	}

	cmd.AddCommand(newSurveyValidateCmd())
	cmd.AddCommand(newSurveyVisibleCmd())
	cmd.AddCommand(newSurveyListCmd())
	cmd.AddCommand(newSurveyImportCmd())
	cmd.AddCommand(newSurveyExportCmd())
	cmd.AddCommand(newSurveyInviteCmd())
	return cmd
}

func readSurvey(path string) (survey.Survey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return survey.Survey{}, err
	}
	s, err := survey.Parse(data)
	if err != nil {
		return survey.Survey{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return s, nil
}

func newSurveyValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Check a survey document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := readSurvey(args[0])
			if err != nil {
				return err
			}
			problems := survey.ValidateSurvey(s)
			out := cmd.OutOrStdout()
			if len(problems) == 0 {
				fmt.Fprintf(out, "%s: ok (%d questions, %d rules)\n", args[0], len(s.Questions), len(s.LogicRules))
				return nil
			}
			for _, p := range problems {
				fmt.Fprintf(out, "%s: %s\n", args[0], p)
			}
			return fmt.Errorf("%d problem(s) found", len(problems))
		},
	}
}

func newSurveyVisibleCmd() *cobra.Command {
	var answers []string

	cmd := &cobra.Command{
		Use:   "visible <file>",
		Short: "Show which questions are visible for a set of answers",
		Long:  "Evaluates the display rules of a survey document. Answers are given as --answer id=value; checkbox values are comma-separated.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := readSurvey(args[0])
			if err != nil {
				return err
			}
			sess := survey.NewSession(s)
			for _, a := range answers {
				id, value, ok := strings.Cut(a, "=")
				if !ok {
					return fmt.Errorf("invalid --answer %q, want id=value", a)
				}
				if err := sess.SetText(id, value); err != nil {
					return fmt.Errorf("--answer %s: %w", id, err)
				}
			}
			out := cmd.OutOrStdout()
			for _, q := range sess.Visible() {
				fmt.Fprintf(out, "%-8s %-9s %s\n", q.ID, q.Type(), q.Label)
			}
			p := sess.Progress()
			fmt.Fprintf(out, "\n%d/%d answered (%d%%)\n", p.Answered, p.Total, p.Percent)
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&answers, "answer", "a", nil, "answer as id=value (repeatable)")
	return cmd
}

func newSurveyListCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored surveys",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			tpls, err := db.ListTemplates(gormDB)
			if err != nil {
				return err
			}
			rows := make([][]cell, len(tpls))
			for i, t := range tpls {
				rows[i] = []cell{{text: t.ID}, {text: t.Title}, {text: t.UpdatedAt.Local().Format("02/01/2006 15:04")}}
			}
			renderTable(cmd.OutOrStdout(), []column{{title: "ID"}, {title: "Titolo", max: 50}, {title: "Aggiornato"}}, rows)
			return nil
		},
	}

	addConfigFlag(cmd, &configPath)
	return cmd
}

func newSurveyImportCmd() *cobra.Command {
	var (
		configPath string
		id         string
	)

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Store a survey document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := readSurvey(args[0])
			if err != nil {
				return err
			}
			if problems := survey.ValidateSurvey(s); len(problems) > 0 {
				return fmt.Errorf("survey is invalid: %s", strings.Join(problems, "; "))
			}
			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			tpl, err := db.SaveTemplate(gormDB, id, s)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Stored survey %q as %s\n", tpl.Title, tpl.ID)
			return nil
		},
	}

	addConfigFlag(cmd, &configPath)
	cmd.Flags().StringVar(&id, "id", "", "template id to create or replace (default: new id)")
	return cmd
}

func newSurveyExportCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "export <id>",
		Short: "Print a stored survey as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			_, s, err := db.GetTemplate(gormDB, args[0])
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(s)
		},
	}

	addConfigFlag(cmd, &configPath)
	return cmd
}

func newSurveyInviteCmd() *cobra.Command {
	var (
		configPath string
		respondent string
		baseURL    string
	)

	cmd := &cobra.Command{
		Use:   "invite <id>",
		Short: "Issue a respondent link for a survey",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			m := invite.NewManager(cfg.Survey.TokenSecret, cfg.Survey.TokenTTL)
			token, err := m.Issue(args[0], respondent)
			if err != nil {
				return fmt.Errorf("issue invite (is survey.token_secret set?): %w", err)
			}
			if baseURL == "" {
				baseURL = fmt.Sprintf("http://localhost:%d", cfg.Dashboard.Port)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s/survey/%s?t=%s\n", strings.TrimRight(baseURL, "/"), args[0], token)
			return nil
		},
	}

	addConfigFlag(cmd, &configPath)
	cmd.Flags().StringVarP(&respondent, "respondent", "r", "", "respondent name recorded in the token")
	cmd.Flags().StringVar(&baseURL, "base-url", "", "dashboard URL (default: localhost on the configured port)")
	return cmd
}
