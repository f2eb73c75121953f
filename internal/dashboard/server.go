package dashboard

import (
	"context"
	"fmt"
	"html/template"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/zulandar/consuntivo/internal/config"
	"github.com/zulandar/consuntivo/internal/effort"
	"github.com/zulandar/consuntivo/internal/invite"
	"gorm.io/gorm"
)

// StartOpts holds configuration for the dashboard server.
type StartOpts struct {
	DB *gorm.DB
	// Config supplies the dashboard settings; nil selects config.Default().
	Config *config.Config
	// Invites checks respondent tokens on submission. Nil leaves surveys
	// open.
	Invites *invite.Manager
	Port    int
	Out     io.Writer
}

// server carries the dependencies shared by the handlers.
type server struct {
	db       *gorm.DB
	agg      effort.Aggregator
	excluded []string
	invites  *invite.Manager
}

// Start launches the dashboard HTTP server. It blocks until ctx is cancelled,
// then shuts down gracefully.
func Start(ctx context.Context, opts StartOpts) error {
	if opts.DB == nil {
		return fmt.Errorf("dashboard: db is required")
	}
	if opts.Port <= 0 {
		opts.Port = 8080
	}

	gin.SetMode(gin.ReleaseMode)
	router, err := newRouter(opts)
	if err != nil {
		return fmt.Errorf("dashboard: %w", err)
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", opts.Port),
		Handler: router,
	}

	// Graceful shutdown on context cancellation.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	if opts.Out != nil {
		fmt.Fprintf(opts.Out, "Dashboard running at http://localhost:%d\n", opts.Port)
	}

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("dashboard: %w", err)
	}
	return nil
}

// newRouter builds the gin engine with templates, middleware and routes.
func newRouter(opts StartOpts) (*gin.Engine, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	invites := opts.Invites
	if invites == nil {
		invites = invite.NewManager("", 0)
	}

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	tmpl, err := parseTemplates()
	if err != nil {
		return nil, err
	}
	router.SetHTMLTemplate(tmpl)

	s := &server{
		db:       opts.DB,
		agg:      effort.Aggregator{WorkdayHours: cfg.Dashboard.WorkdayHours},
		excluded: cfg.Dashboard.ExcludedProjects,
		invites:  invites,
	}
	registerRoutes(router, s)
	return router, nil
}

// requestLogger logs API requests that fail.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if status := c.Writer.Status(); status >= http.StatusBadRequest {
			log.Printf("dashboard: %s %s: %d (%s)", c.Request.Method, c.Request.URL.Path, status, time.Since(start).Round(time.Millisecond))
		}
	}
}

// parseTemplates loads the embedded HTML templates.
func parseTemplates() (*template.Template, error) {
	tmpl, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return tmpl, nil
}
