package web

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jfmyers9/airtime/internal/stats"
	"github.com/jfmyers9/airtime/pkg/lastfm"
)

// dailyView is the template data for the daily page.
type dailyView struct {
	Username       string
	SelectedDate   string
	Error          string
	Scrobbles      []lastfm.Scrobble
	TotalTime      *stats.TimeParts
	CurrentPage    int
	PageCount      int
	TotalScrobbles int
	PerPage        int
	ActivePage     string
}

// weeklyView is the template data for the weekly page.
type weeklyView struct {
	Username   string
	StartDate  string
	Error      string
	Days       []stats.DaySummary
	Totals     *stats.WeekTotals
	ActivePage string
}

// daily handles the daily listening view. A GET carrying only a
// username pre-fills the form without fetching; a request with both
// username and date aggregates that day and paginates the result.
func (s *Server) daily(c *gin.Context) {
	view := dailyView{
		ActivePage:  "daily",
		CurrentPage: formInt(c, "page", 1),
		PerPage:     formInt(c, "per_page", s.perPage),
		Username:    c.Request.FormValue("username"),
	}
	view.SelectedDate = c.Request.FormValue("date")

	switch {
	case view.Username == "" && view.SelectedDate == "":
		// Blank form.
	case view.Username == "":
		view.Error = "Please enter a Last.fm username"
	case view.SelectedDate == "":
		if c.Request.Method == http.MethodPost {
			view.Error = "Please select a date"
		}
	default:
		s.fillDaily(c, &view)
	}

	c.HTML(http.StatusOK, "index.html", view)
}

// fillDaily aggregates the requested day and paginates it into the view.
func (s *Server) fillDaily(c *gin.Context, view *dailyView) {
	date, err := time.ParseInLocation("2006-01-02", view.SelectedDate, time.Local)
	if err != nil {
		view.Error = fmt.Sprintf("Invalid date: %s", view.SelectedDate)
		return
	}

	scrobbles, totalTime, err := s.agg.Day(c.Request.Context(), view.Username, date)
	if err != nil {
		s.logger.Error().Err(err).
			Str("user", view.Username).
			Str("date", view.SelectedDate).
			Msg("Daily aggregation failed")
		view.Error = fmt.Sprintf("Error: %v", err)
		return
	}

	view.TotalTime = &totalTime
	view.TotalScrobbles = len(scrobbles)
	view.PageCount = PageCount(len(scrobbles), view.PerPage)
	view.Scrobbles = PageSlice(scrobbles, view.CurrentPage, view.PerPage)

	// A page past the end is just empty; only a day with no scrobbles
	// at all warrants the message.
	if view.TotalScrobbles == 0 {
		view.Error = fmt.Sprintf("No scrobbles found for %s on %s", view.Username, view.SelectedDate)
	}
}

// weekly handles the weekly listening view.
func (s *Server) weekly(c *gin.Context) {
	view := weeklyView{
		ActivePage: "weekly",
		Username:   c.Request.FormValue("username"),
		StartDate:  c.Request.FormValue("start_date"),
	}

	if c.Request.Method == http.MethodPost {
		switch {
		case view.Username == "":
			view.Error = "Please enter a Last.fm username"
		case view.StartDate == "":
			view.Error = "Please select a start date for the week"
		default:
			s.fillWeekly(c, &view)
		}
	}

	c.HTML(http.StatusOK, "weekly.html", view)
}

// fillWeekly aggregates the requested week into the view.
func (s *Server) fillWeekly(c *gin.Context, view *weeklyView) {
	start, err := time.ParseInLocation("2006-01-02", view.StartDate, time.Local)
	if err != nil {
		view.Error = fmt.Sprintf("Invalid start date: %s", view.StartDate)
		return
	}

	days, totals := s.agg.Week(c.Request.Context(), view.Username, start)

	empty := true
	for _, day := range days {
		if day.TotalTime.TotalSeconds > 0 {
			empty = false
			break
		}
	}
	if empty {
		view.Error = fmt.Sprintf("No scrobbles found for %s in the week starting %s", view.Username, view.StartDate)
		return
	}

	view.Days = days
	view.Totals = &totals
}

// formInt reads an integer parameter from the query string or posted
// form, falling back to def when absent or unparseable.
func formInt(c *gin.Context, name string, def int) int {
	raw := c.Request.FormValue(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return def
	}
	return n
}
