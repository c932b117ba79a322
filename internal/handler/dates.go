package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

const queryDate = "2006-01-02"

// dateQuery parses a yyyy-mm-dd query param in loc. Missing yields the zero time.
func dateQuery(c *fiber.Ctx, key string, loc *time.Location) (time.Time, bool) {
	v := c.Query(key)
	if v == "" {
		return time.Time{}, true
	}
	t, err := time.ParseInLocation(queryDate, v, loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// periodStart resolves the dashboard shortcuts 7d, 1m, 3m, 6m and 12m.
func periodStart(period string, now time.Time) (time.Time, bool) {
	switch period {
	case "7d":
		return now.AddDate(0, 0, -7), true
	case "1m":
		return now.AddDate(0, -1, 0), true
	case "3m":
		return now.AddDate(0, -3, 0), true
	case "6m":
		return now.AddDate(0, -6, 0), true
	case "12m":
		return now.AddDate(0, -12, 0), true
	}
	return time.Time{}, false
}

// reportRange reads start/end (or range=) defaulting to the current month.
func reportRange(c *fiber.Ctx, now time.Time, loc *time.Location) (time.Time, time.Time, bool) {
	now = now.In(loc)
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
	end := now

	if p := c.Query("range"); p != "" {
		s, ok := periodStart(p, now)
		if !ok {
			return start, end, false
		}
		return s, end, true
	}

	s, ok := dateQuery(c, "start", loc)
	if !ok {
		return start, end, false
	}
	if !s.IsZero() {
		start = s
	}
	e, ok := dateQuery(c, "end", loc)
	if !ok {
		return start, end, false
	}
	if !e.IsZero() {
		end = e
	}
	return start, end, true
}
