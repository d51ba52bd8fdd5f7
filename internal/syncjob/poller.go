package syncjob

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gradebook-sync/internal/providers/netacad"
)

// State is the client-side view of one sync job.
type State int

const (
	StateIdle State = iota
	StateProcessing
	StateCompleted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateProcessing:
		return "processing"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Terminal reports whether no further transitions can occur.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateFailed
}

// DefaultErrorMessage is shown when the server reports a failure without
// saying why.
const DefaultErrorMessage = "Sync failed for an unknown reason"

// API is the slice of the remote client the poller needs.
type API interface {
	StartSync(ctx context.Context) (*netacad.StartSyncResponse, error)
	GetSyncStatus(ctx context.Context, syncID string) (*netacad.SyncStatus, error)
}

// Poller tracks one asynchronous sync job: started, checked on demand,
// finished. There is no timer; every status check is user-triggered, and
// checks are single-flight. A transport failure during a check never
// transitions the job.
type Poller struct {
	api API

	// OnComplete fires once when the job reaches completed; the listing
	// should be refreshed from it. OnError fires once on failed.
	OnComplete func(st *netacad.SyncStatus)
	OnError    func(message string)

	mu       sync.Mutex
	state    State
	syncID   string
	started  time.Time
	last     *netacad.SyncStatus
	errMsg   string
	checking bool
}

func NewPoller(api API) *Poller {
	return &Poller{api: api}
}

// Start kicks off a sync and records the returned job id. Starting while
// a job is already processing is a no-op (the server refuses overlapping
// syncs anyway and reports the active one).
func (p *Poller) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.state == StateProcessing {
		p.mu.Unlock()
		return nil
	}
	p.mu.Unlock()

	resp, err := p.api.StartSync(ctx)
	if err != nil {
		return fmt.Errorf("start sync: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.state = StateProcessing
	p.syncID = resp.SyncID
	p.started = time.Now()
	p.last = nil
	p.errMsg = ""
	return nil
}

// CheckStatus fetches the job's current status. Returns false without a
// network call when a check is already in flight, no job was started, or
// the job is terminal. A failed fetch is reported to the caller but
// leaves the job in its last known state, eligible for another check.
func (p *Poller) CheckStatus(ctx context.Context) (bool, error) {
	p.mu.Lock()
	if p.checking || p.state != StateProcessing {
		p.mu.Unlock()
		return false, nil
	}
	p.checking = true
	syncID := p.syncID
	p.mu.Unlock()

	st, err := p.api.GetSyncStatus(ctx, syncID)

	p.mu.Lock()
	p.checking = false
	if err != nil {
		p.mu.Unlock()
		return true, fmt.Errorf("check sync status: %w", err)
	}

	p.last = st
	var onComplete func(*netacad.SyncStatus)
	var onError func(string)

	switch st.Status {
	case "completed":
		p.state = StateCompleted
		onComplete = p.OnComplete
	case "failed":
		p.state = StateFailed
		p.errMsg = st.ErrorMessage
		if p.errMsg == "" {
			p.errMsg = DefaultErrorMessage
		}
		onError = p.OnError
	}
	last := p.last
	errMsg := p.errMsg
	p.mu.Unlock()

	// Callbacks run unlocked so they can call back into the poller.
	if onComplete != nil {
		onComplete(last)
	}
	if onError != nil {
		onError(errMsg)
	}
	return true, nil
}

func (p *Poller) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Last returns the most recent status response, nil before the first
// successful check.
func (p *Poller) Last() *netacad.SyncStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}

func (p *Poller) ErrorMessage() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.errMsg
}

// Elapsed is the wall time since the job was started client-side.
func (p *Poller) Elapsed() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started.IsZero() {
		return 0
	}
	return time.Since(p.started)
}

// Summary renders the final counters for display. Empty until a status
// response has arrived.
func (p *Poller) Summary() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.last == nil {
		return ""
	}
	st := p.last
	s := fmt.Sprintf("%d scraped, %d new, %d updated, %d failed",
		st.TotalScraped, st.NewCourses, st.UpdatedCourses, st.FailedCourses)
	if st.Duration > 0 {
		s += fmt.Sprintf(" in %ds", st.Duration)
	}
	return s
}
