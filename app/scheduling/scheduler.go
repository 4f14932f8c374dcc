// Package scheduling computes chat booking windows and renders them in the
// configured booking time zone.
package scheduling

import (
	"net/url"
	"strings"
	"time"

	"github.com/gilanghuda/crewhub-backend/pkg/apperror"
)

const DefaultSessionLength = time.Hour

const displayLayout = "2006-01-02 15:04"

// layouts accepted for a requested start, in order. Zone-less layouts are
// read as wall-clock time in the booking zone.
var layouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// Window is a booked session. Start and End are UTC instants; Day and Display
// are rendered in the booking zone.
type Window struct {
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
	Day     string    `json:"day"`
	Display string    `json:"display"`
}

type Scheduler struct {
	loc    *time.Location
	length time.Duration
}

func NewScheduler(loc *time.Location, length time.Duration) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	if length <= 0 {
		length = DefaultSessionLength
	}
	return &Scheduler{loc: loc, length: length}
}

// LengthMinutes is the session length used to price an extension.
func (s *Scheduler) LengthMinutes() int { return int(s.length / time.Minute) }

// ScheduleChat returns the window that starts at start and lasts one session.
func (s *Scheduler) ScheduleChat(start time.Time) Window {
	start = start.UTC().Truncate(time.Second)
	end := start.Add(s.length)
	local := start.In(s.loc)
	return Window{
		Start:   start,
		End:     end,
		Day:     local.Weekday().String(),
		Display: local.Format(displayLayout) + " - " + end.In(s.loc).Format("15:04") + " " + zoneLabel(local),
	}
}

// ParseStart reads a client supplied start time.
func (s *Scheduler) ParseStart(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, apperror.Validation("time is required")
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	for _, lay := range layouts[1:] {
		if t, err := time.ParseInLocation(lay, raw, s.loc); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, apperror.Validation("invalid time format. use RFC3339 or YYYY-MM-DD HH:MM[:SS]")
}

// Format renders t in the booking zone as RFC3339.
func (s *Scheduler) Format(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(s.loc).Format(time.RFC3339)
}

// CalendarLink builds a Google Calendar "add event" link for w.
func CalendarLink(title, details string, w Window) string {
	const stamp = "20060102T150405Z"
	v := url.Values{}
	v.Set("action", "TEMPLATE")
	v.Set("text", title)
	v.Set("dates", w.Start.UTC().Format(stamp)+"/"+w.End.UTC().Format(stamp))
	if details != "" {
		v.Set("details", details)
	}
	return "https://calendar.google.com/calendar/render?" + v.Encode()
}

func zoneLabel(t time.Time) string {
	name, _ := t.Zone()
	if name == "" {
		return t.Format("-07:00")
	}
	if strings.HasPrefix(name, "UTC") || strings.HasPrefix(name, "+") || strings.HasPrefix(name, "-") {
		return name
	}
	return name + " (UTC" + t.Format("-07:00") + ")"
}
