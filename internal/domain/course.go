package domain

import (
	"time"
)

// Course statuses as reported by the server.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
	StatusArchived = "archived"
)

// Course is a read-only snapshot of a server-side course record.
// The client never owns these; a page can go stale after a sync refresh.
type Course struct {
	ID        string `json:"id"`
	CourseID  string `json:"course_id"`
	Name      string `json:"name"`
	URL       string `json:"url"`
	Status    string `json:"status"`
	StartDate string `json:"start_date,omitempty"` // ISO-8601, may be empty
	EndDate   string `json:"end_date,omitempty"`   // ISO-8601, may be empty
	CreatedAt int64  `json:"created_at"`           // unix seconds
	UpdatedAt int64  `json:"updated_at"`
}

// ParseDate parses an ISO-8601 date or datetime string.
// Returns ok=false for empty or malformed values.
func ParseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func (c Course) HasStartDate() bool {
	_, ok := ParseDate(c.StartDate)
	return ok
}

func (c Course) HasEndDate() bool {
	_, ok := ParseDate(c.EndDate)
	return ok
}
