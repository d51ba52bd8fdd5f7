package export

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"gradebook-sync/internal/delivery"
	"gradebook-sync/internal/domain"
	"gradebook-sync/internal/httpx"
	"gradebook-sync/internal/providers/netacad"
	"gradebook-sync/internal/selection"
)

// Guard sentinels. Callers treat these as silent no-ops, not failures:
// the action simply does not happen.
var (
	ErrExportInFlight  = errors.New("an export is already in flight")
	ErrNothingSelected = errors.New("no courses selected")
)

// API is the slice of the remote client the orchestrator needs.
type API interface {
	ListAllCourses(ctx context.Context, status string) ([]domain.Course, error)
	ExportGradebook(ctx context.Context, req netacad.ExportRequest) ([]byte, error)
	ExportGradebooks(ctx context.Context, reqs []netacad.ExportRequest) ([]byte, error)
}

// Result reports a finished export.
type Result struct {
	// Courses is the number of resolved courses actually exported, which
	// is what the operator is told ("exported N courses") — not the raw
	// selection count.
	Courses  int
	Filename string
}

// Orchestrator drives single and batch gradebook exports. Batch exports
// reconcile the page-scoped selection against the server's full dataset
// before issuing one bulk call; any failure aborts without side effects
// so the selection survives for a retry.
type Orchestrator struct {
	api     API
	tracker *selection.Tracker
	deliver delivery.Deliverer

	// StatusFilter narrows the authoritative listing fetch, matching
	// whatever filter the listing page applies.
	StatusFilter string

	// OnProgress, when set, is told the resolved course count before the
	// bulk call goes out ("processing N courses").
	OnProgress func(resolved int)

	now func() time.Time

	mu       sync.Mutex
	inFlight bool
}

func NewOrchestrator(api API, tracker *selection.Tracker, deliver delivery.Deliverer) *Orchestrator {
	return &Orchestrator{
		api:     api,
		tracker: tracker,
		deliver: deliver,
		now:     time.Now,
	}
}

// InFlight reports whether an export is currently running, for the UI's
// blocking indicator.
func (o *Orchestrator) InFlight() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.inFlight
}

func (o *Orchestrator) begin() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.inFlight {
		return ErrExportInFlight
	}
	o.inFlight = true
	return nil
}

func (o *Orchestrator) end() {
	o.mu.Lock()
	o.inFlight = false
	o.mu.Unlock()
}

// ExportSingle exports one course's gradebook. The record in hand is
// already authoritative, so no listing fetch happens. Selection and
// listing state are untouched either way.
func (o *Orchestrator) ExportSingle(ctx context.Context, course domain.Course) (*Result, error) {
	if err := o.begin(); err != nil {
		return nil, err
	}
	defer o.end()

	data, err := o.api.ExportGradebook(ctx, netacad.ExportRequest{
		CourseID:   course.CourseID,
		CourseName: course.Name,
		CourseURL:  course.URL,
	})
	if err != nil {
		return nil, fmt.Errorf("export %q: %s", course.Name, userMessage(err))
	}

	filename := SingleFilename(course.Name, o.now())
	if err := o.deliver.Deliver(data, filename); err != nil {
		return nil, fmt.Errorf("export %q: %w", course.Name, err)
	}
	return &Result{Courses: 1, Filename: filename}, nil
}

// ExportBatch exports every selected course as one archive.
//
// The selection may reference ids from pages never loaded, so the full
// unpaginated list is always fetched and used as the authoritative
// snapshot; whatever the visible page becomes afterwards does not matter.
// On any failure the selection is left untouched; on success it is
// cleared.
func (o *Orchestrator) ExportBatch(ctx context.Context) (*Result, error) {
	if o.tracker.Count() == 0 {
		return nil, ErrNothingSelected
	}
	if err := o.begin(); err != nil {
		return nil, err
	}
	defer o.end()

	all, err := o.api.ListAllCourses(ctx, o.StatusFilter)
	if err != nil {
		return nil, fmt.Errorf("fetch course list: %s", userMessage(err))
	}

	resolved := o.resolve(all)
	if len(resolved) == 0 {
		return nil, fmt.Errorf("none of the selected courses exist on the server anymore")
	}

	reqs := make([]netacad.ExportRequest, len(resolved))
	for i, c := range resolved {
		reqs[i] = netacad.ExportRequest{
			CourseID:   c.CourseID,
			CourseName: c.Name,
			CourseURL:  c.URL,
		}
	}

	if o.OnProgress != nil {
		o.OnProgress(len(reqs))
	}

	archive, err := o.api.ExportGradebooks(ctx, reqs)
	if err != nil {
		return nil, fmt.Errorf("bulk export: %s", userMessage(err))
	}

	filename := BatchFilename(o.now())
	if err := o.deliver.Deliver(archive, filename); err != nil {
		return nil, fmt.Errorf("bulk export: %w", err)
	}

	o.tracker.Clear()
	return &Result{Courses: len(reqs), Filename: filename}, nil
}

// resolve narrows the authoritative list to the current selection. With
// the all-pages flag set the whole dataset goes out, including courses a
// recent sync added after the selection was made.
func (o *Orchestrator) resolve(all []domain.Course) []domain.Course {
	if o.tracker.AllPages() {
		return all
	}
	out := make([]domain.Course, 0, o.tracker.Count())
	for _, c := range all {
		if o.tracker.IsSelected(c.ID) {
			out = append(out, c)
		}
	}
	return out
}

// userMessage prefers the server's decoded error message over transport
// noise.
func userMessage(err error) string {
	var herr *httpx.HTTPError
	if errors.As(err, &herr) {
		return herr.Message()
	}
	return err.Error()
}
