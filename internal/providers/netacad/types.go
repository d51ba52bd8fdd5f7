package netacad

import "gradebook-sync/internal/domain"

/* -------- Responses -------- */

type ListCoursesResponse struct {
	Courses []domain.Course `json:"courses"`
	Total   int             `json:"total"`
	Skip    int             `json:"skip"`
	Limit   int             `json:"limit"`
	HasMore bool            `json:"has_more"`
}

type StartSyncResponse struct {
	SyncID    string `json:"sync_id"`
	Message   string `json:"message"`
	Status    string `json:"status"`
	StartedAt int64  `json:"started_at"`
}

// SyncStatus mirrors the server's sync record. Counters are only
// meaningful once the status is terminal.
type SyncStatus struct {
	ID              string `json:"id"`
	Status          string `json:"status"`
	StartedAt       int64  `json:"started_at"`
	CompletedAt     int64  `json:"completed_at,omitempty"`
	Duration        int64  `json:"duration,omitempty"` // seconds
	TotalScraped    int    `json:"total_scraped"`
	NewCourses      int    `json:"new_courses"`
	ExistingCourses int    `json:"existing_courses"`
	UpdatedCourses  int    `json:"updated_courses"`
	FailedCourses   int    `json:"failed_courses"`
	ErrorMessage    string `json:"error_message,omitempty"`
}

/* -------- Requests -------- */

// ExportRequest is one course's export metadata as the bulk endpoint
// expects it.
type ExportRequest struct {
	CourseID   string `json:"course_id"`
	CourseName string `json:"course_name"`
	CourseURL  string `json:"course_url"`
}

type bulkExportRequest struct {
	Courses []ExportRequest `json:"courses"`
}
