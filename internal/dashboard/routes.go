package dashboard

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/zulandar/consuntivo/internal/db"
	"github.com/zulandar/consuntivo/internal/effort"
	"github.com/zulandar/consuntivo/internal/export"
	"github.com/zulandar/consuntivo/internal/invite"
	"github.com/zulandar/consuntivo/internal/survey"
	"github.com/zulandar/consuntivo/internal/timesheet"
	"gorm.io/gorm"
)

// registerRoutes sets up all dashboard routes on the Gin router.
func registerRoutes(router *gin.Engine, s *server) {
	// Embedded static assets (served from assets/ subdir of the embed.FS).
	staticFS, _ := fs.Sub(assetsFS, "assets")
	router.StaticFS("/static", http.FS(staticFS))

	// Pages.
	router.GET("/", handlePage("commesse"))
	router.GET("/tecnici", handlePage("tecnici"))
	router.GET("/survey/editor", handlePage("editor"))
	router.GET("/survey/:id", handleSurveyPage())

	api := router.Group("/api")
	api.GET("/commesse", s.handleProjects)
	api.GET("/commesse/:code", s.handleProject)
	api.GET("/tecnici", s.handleActivities)
	api.GET("/tecnici/export", s.handleActivitiesExport)
	api.GET("/surveys", s.handleSurveyList)
	api.POST("/surveys", s.handleSurveySave)
	api.GET("/surveys/:id", s.handleSurveyGet)
	api.DELETE("/surveys/:id", s.handleSurveyDelete)
	api.POST("/surveys/:id/visible", s.requireInvite, s.handleSurveyVisible)
	api.POST("/surveys/:id/submit", s.handleSurveySubmit)
	api.GET("/surveys/:id/live", s.requireInvite, s.handleSurveyLive)
	api.POST("/questions/validate", handleQuestionValidate)
	api.GET("/events", handleSSE(s.db))
}

func handlePage(page string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.HTML(http.StatusOK, "layout.html", gin.H{
			"page": page,
		})
	}
}

func handleSurveyPage() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.HTML(http.StatusOK, "layout.html", gin.H{
			"page":     "survey",
			"surveyID": c.Param("id"),
			"token":    c.Query("t"),
		})
	}
}

// writeError maps err to a status code and a JSON error body.
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		status = http.StatusNotFound
	case errors.Is(err, survey.ErrQuestionNotFound):
		status = http.StatusBadRequest
	case errors.Is(err, invite.ErrInvalid), errors.Is(err, invite.ErrWrongSurvey):
		status = http.StatusForbidden
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// requireInvite rejects respondent requests whose ?t= token does not admit
// the survey in the path. It runs before the websocket upgrade.
func (s *server) requireInvite(c *gin.Context) {
	if _, err := s.invites.Check(c.Query("t"), c.Param("id")); err != nil {
		writeError(c, err)
		c.Abort()
		return
	}
	c.Next()
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

// projectsResponse is the project list with the time of the snapshot it
// was computed from.
type projectsResponse struct {
	FetchedAt *time.Time   `json:"fetchedAt"`
	Projects  []ProjectRow `json:"commesse"`
}

func (s *server) views() ([]effort.ProjectView, *time.Time, error) {
	projects, snap, err := latestProjects(s.db)
	if err != nil {
		return nil, nil, err
	}
	var fetchedAt *time.Time
	if snap != nil {
		fetchedAt = &snap.FetchedAt
	}
	return s.agg.AggregateAll(projects), fetchedAt, nil
}

func (s *server) handleProjects(c *gin.Context) {
	views, fetchedAt, err := s.views()
	if err != nil {
		writeError(c, err)
		return
	}
	f := effort.Filter{
		Search:   c.Query("search"),
		Excluded: excludedFrom(c.Query("exclude"), s.excluded),
	}
	c.JSON(http.StatusOK, projectsResponse{
		FetchedAt: fetchedAt,
		Projects:  projectRows(f.Apply(views)),
	})
}

func (s *server) handleProject(c *gin.Context) {
	views, _, err := s.views()
	if err != nil {
		writeError(c, err)
		return
	}
	v, ok := effort.Find(views, c.Param("code"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("commessa %s non trovata", c.Param("code"))})
		return
	}
	c.JSON(http.StatusOK, projectRows([]effort.ProjectView{v})[0])
}

// filteredActivities applies the request's filter to the latest snapshot.
// all is the unfiltered list, used for the filter choices.
func (s *server) filteredActivities(c *gin.Context) (all, matched []timesheet.Activity, err error) {
	f, err := timesheet.ParseFilter(c.Query("from"), c.Query("to"), c.QueryArray("tecnico"), c.QueryArray("commessa"))
	if err != nil {
		return nil, nil, err
	}
	projects, _, err := latestProjects(s.db)
	if err != nil {
		return nil, nil, err
	}
	all = timesheet.Flatten(projects)
	return all, f.Apply(all), nil
}

type activitiesResponse struct {
	Summary     timesheet.Summary `json:"summary"`
	Technicians []string          `json:"tecnici"`
	Projects    []string          `json:"commesse"`
}

func (s *server) handleActivities(c *gin.Context) {
	all, matched, err := s.filteredActivities(c)
	if err != nil {
		if errors.Is(err, timesheet.ErrBadFilter) {
			badRequest(c, err)
			return
		}
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, activitiesResponse{
		Summary:     timesheet.Summarize(matched),
		Technicians: timesheet.Technicians(all),
		Projects:    timesheet.Projects(all),
	})
}

func (s *server) handleActivitiesExport(c *gin.Context) {
	_, matched, err := s.filteredActivities(c)
	if err != nil {
		if errors.Is(err, timesheet.ErrBadFilter) {
			badRequest(c, err)
			return
		}
		writeError(c, err)
		return
	}
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, export.FileName(time.Now())))
	c.Status(http.StatusOK)
	if err := export.WriteActivities(c.Writer, matched); err != nil {
		log.Printf("dashboard: export: %v", err)
	}
}

type templateSummary struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (s *server) handleSurveyList(c *gin.Context) {
	tpls, err := db.ListTemplates(s.db)
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]templateSummary, len(tpls))
	for i, t := range tpls {
		out[i] = templateSummary{ID: t.ID, Title: t.Title, Description: t.Description, UpdatedAt: t.UpdatedAt}
	}
	c.JSON(http.StatusOK, out)
}

// handleSurveySave stores the posted survey, under ?id= when given.
func (s *server) handleSurveySave(c *gin.Context) {
	data, err := c.GetRawData()
	if err != nil {
		badRequest(c, err)
		return
	}
	sv, err := survey.Parse(data)
	if err != nil {
		badRequest(c, fmt.Errorf("questionario non leggibile: %w", err))
		return
	}
	if problems := survey.ValidateSurvey(sv); len(problems) > 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "questionario non valido", "errors": problems})
		return
	}
	tpl, err := db.SaveTemplate(s.db, c.Query("id"), sv)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": tpl.ID})
}

func (s *server) handleSurveyGet(c *gin.Context) {
	_, sv, err := db.GetTemplate(s.db, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sv)
}

func (s *server) handleSurveyDelete(c *gin.Context) {
	if err := db.DeleteTemplate(s.db, c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// visibility is what a respondent sees for a set of answers.
type visibility struct {
	Visible  []string        `json:"visible"`
	Progress survey.Progress `json:"progress"`
	Error    string          `json:"error,omitempty"`
}

func stateOf(sess *survey.Session) visibility {
	return visibility{Visible: sess.VisibleIDs(), Progress: sess.Progress()}
}

// sessionFor loads survey id and replays the wire answers onto a fresh
// session.
func (s *server) sessionFor(id string, answers map[string]string) (*survey.Session, error) {
	_, sv, err := db.GetTemplate(s.db, id)
	if err != nil {
		return nil, err
	}
	sess := survey.NewSession(sv)
	for qid, v := range answers {
		if err := sess.SetText(qid, v); err != nil {
			return nil, fmt.Errorf("%w: %s", err, qid)
		}
	}
	return sess, nil
}

func (s *server) handleSurveyVisible(c *gin.Context) {
	var answers map[string]string
	if err := c.ShouldBindJSON(&answers); err != nil {
		badRequest(c, err)
		return
	}
	sess, err := s.sessionFor(c.Param("id"), answers)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, stateOf(sess))
}

type submitRequest struct {
	Token   string            `json:"token"`
	Answers map[string]string `json:"answers"`
}

// handleSurveySubmit accepts a response. Answers to hidden questions are
// dropped and nothing is stored; the submission is logged.
func (s *server) handleSurveySubmit(c *gin.Context) {
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if req.Token == "" {
		req.Token = c.Query("t")
	}
	id := c.Param("id")
	claims, err := s.invites.Check(req.Token, id)
	if err != nil {
		writeError(c, err)
		return
	}
	sess, err := s.sessionFor(id, req.Answers)
	if err != nil {
		writeError(c, err)
		return
	}
	respondent := "anonimo"
	if claims != nil && claims.Respondent != "" {
		respondent = claims.Respondent
	}
	submission := sess.Submission()
	unanswered := sess.Unanswered()
	if unanswered == nil {
		unanswered = []string{}
	}
	log.Printf("survey: %s: submission from %s: %d answers", id, respondent, len(submission))
	c.JSON(http.StatusOK, gin.H{
		"answers":    submission,
		"unanswered": unanswered,
	})
}

func handleQuestionValidate(c *gin.Context) {
	var q survey.Question
	if err := c.ShouldBindJSON(&q); err != nil {
		badRequest(c, err)
		return
	}
	problems := survey.Validate(q)
	if problems == nil {
		problems = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"valid": len(problems) == 0, "errors": problems})
}
