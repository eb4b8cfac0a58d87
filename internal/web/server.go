// Package web serves the daily and weekly listening-time views over
// HTTP. It is thin presentation glue: all aggregation lives in
// internal/stats.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/jfmyers9/airtime/internal/stats"
)

//go:embed templates/*.html
var templatesFS embed.FS

// DefaultPerPage is the scrobbles-per-page default for the daily view.
const DefaultPerPage = 10

// Config holds server configuration.
type Config struct {
	// PerPage is the default number of scrobbles per page on the
	// daily view. Zero means DefaultPerPage.
	PerPage int
}

// Server routes HTTP requests to the aggregation core and renders the
// HTML views.
type Server struct {
	agg     *stats.Aggregator
	engine  *gin.Engine
	logger  zerolog.Logger
	perPage int
}

var templateFuncs = template.FuncMap{
	// clock renders a scrobble timestamp as a time of day.
	"clock": func(t time.Time) string {
		return t.Format("15:04:05")
	},
	// mmss renders a duration in seconds as m:ss.
	"mmss": func(seconds int) string {
		return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
	},
	// pages enumerates page numbers 1..n for pagination links.
	"pages": func(n int) []int {
		out := make([]int, n)
		for i := range out {
			out[i] = i + 1
		}
		return out
	},
}

// New creates a Server around an aggregator.
func New(agg *stats.Aggregator, cfg Config, logger zerolog.Logger) (*Server, error) {
	tmpl, err := template.New("").Funcs(templateFuncs).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	perPage := cfg.PerPage
	if perPage <= 0 {
		perPage = DefaultPerPage
	}

	s := &Server{
		agg:     agg,
		logger:  logger.With().Str("component", "web").Logger(),
		perPage: perPage,
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger(s.logger))
	engine.SetHTMLTemplate(tmpl)

	engine.GET("/", s.daily)
	engine.POST("/", s.daily)
	engine.GET("/weekly", s.weekly)
	engine.POST("/weekly", s.weekly)

	s.engine = engine
	return s, nil
}

// Handler returns the HTTP handler for mounting in an http.Server.
func (s *Server) Handler() http.Handler {
	return s.engine
}
