package tui

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"gradebook-sync/internal/domain"
	"gradebook-sync/internal/export"
	"gradebook-sync/internal/providers/netacad"
	"gradebook-sync/internal/selection"
	"gradebook-sync/internal/sorting"
	"gradebook-sync/internal/syncjob"
)

// failureGracePeriod keeps a failed sync visible before the indicator is
// dismissed, so the failure is observed rather than silently swallowed.
const failureGracePeriod = 8 * time.Second

// listingAPI is the slice of the remote client the browser needs for
// listing; exports go through the orchestrator.
type listingAPI interface {
	ListCourses(ctx context.Context, skip, limit int, status string) (*netacad.ListCoursesResponse, error)
	ListAllCourses(ctx context.Context, status string) ([]domain.Course, error)
}

// Model is the interactive course browser: a paginated listing with
// search, sorting, cross-page selection, a sync widget, and export
// triggers. All remote work runs in commands; the model itself stays
// single-threaded under the bubbletea loop.
type Model struct {
	api     listingAPI
	tracker *selection.Tracker
	poller  *syncjob.Poller
	orch    *export.Orchestrator

	pageSize     int
	statusFilter string

	courses []domain.Course // current page, as fetched
	visible []domain.Course // page after filter + sort
	total   int
	skip    int
	cursor  int

	searching bool
	search    textinput.Model
	query     string
	sortOpt   sorting.Option

	selectionMode bool

	loading   bool
	exporting bool
	// resolved course count for the in-flight batch, fed by the
	// orchestrator's progress hook from the command goroutine
	processingN atomic.Int32
	spin        spinner.Model

	syncBannerDismissed bool

	statusMsg string
	errMsg    string

	width  int
	height int
}

type Options struct {
	API          listingAPI
	Tracker      *selection.Tracker
	Poller       *syncjob.Poller
	Orchestrator *export.Orchestrator
	PageSize     int
	StatusFilter string
}

func NewModel(opts Options) *Model {
	if opts.PageSize <= 0 {
		opts.PageSize = 20
	}

	search := textinput.New()
	search.Placeholder = "filter by name"
	search.CharLimit = 80
	search.Width = 32

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	m := &Model{
		api:          opts.API,
		tracker:      opts.Tracker,
		poller:       opts.Poller,
		orch:         opts.Orchestrator,
		pageSize:     opts.PageSize,
		statusFilter: opts.StatusFilter,
		search:       search,
		spin:         spin,
		sortOpt:      sorting.NameAsc,
		loading:      true,
	}
	if m.orch != nil {
		m.orch.OnProgress = func(n int) {
			m.processingN.Store(int32(n))
		}
	}
	return m
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.loadPage(0), m.spin.Tick)
}

/* -------- Commands -------- */

func (m *Model) loadPage(skip int) tea.Cmd {
	return func() tea.Msg {
		resp, err := m.api.ListCourses(context.Background(), skip, m.pageSize, m.statusFilter)
		return coursesLoadedMsg{resp: resp, err: err}
	}
}

func (m *Model) loadAllIDs() tea.Cmd {
	return func() tea.Msg {
		all, err := m.api.ListAllCourses(context.Background(), m.statusFilter)
		if err != nil {
			return allIDsLoadedMsg{err: err}
		}
		ids := make([]string, len(all))
		for i, c := range all {
			ids[i] = c.ID
		}
		return allIDsLoadedMsg{ids: ids}
	}
}

func (m *Model) startSync() tea.Cmd {
	return func() tea.Msg {
		return syncStartedMsg{err: m.poller.Start(context.Background())}
	}
}

func (m *Model) checkSync() tea.Cmd {
	return func() tea.Msg {
		ran, err := m.poller.CheckStatus(context.Background())
		return syncCheckedMsg{ran: ran, err: err}
	}
}

func (m *Model) exportSingle(course domain.Course) tea.Cmd {
	return func() tea.Msg {
		res, err := m.orch.ExportSingle(context.Background(), course)
		return exportDoneMsg{res: res, err: err}
	}
}

func (m *Model) exportBatch() tea.Cmd {
	return func() tea.Msg {
		res, err := m.orch.ExportBatch(context.Background())
		return exportDoneMsg{res: res, err: err}
	}
}

/* -------- Update -------- */

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case coursesLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.errMsg = msg.err.Error()
			return m, nil
		}
		m.errMsg = ""
		m.courses = msg.resp.Courses
		m.total = msg.resp.Total
		m.skip = msg.resp.Skip
		m.refreshVisible()
		return m, nil

	case allIDsLoadedMsg:
		if msg.err != nil {
			m.errMsg = msg.err.Error()
			return m, nil
		}
		m.tracker.SelectAllAcrossPages(msg.ids)
		m.statusMsg = fmt.Sprintf("Selected all %d courses", len(msg.ids))
		return m, nil

	case syncStartedMsg:
		if msg.err != nil {
			m.errMsg = msg.err.Error()
			return m, nil
		}
		m.syncBannerDismissed = false
		m.statusMsg = "Sync started"
		return m, nil

	case syncCheckedMsg:
		return m.handleSyncChecked(msg)

	case exportDoneMsg:
		return m.handleExportDone(msg)

	case syncBannerExpiredMsg:
		m.syncBannerDismissed = true
		return m, nil

	case tea.KeyMsg:
		if m.searching {
			return m.handleSearchKeys(msg)
		}
		return m.handleKeys(msg)
	}

	return m, nil
}

func (m *Model) handleSyncChecked(msg syncCheckedMsg) (tea.Model, tea.Cmd) {
	if !msg.ran {
		// Suppressed: a check was already in flight or the job is done.
		return m, nil
	}
	if msg.err != nil {
		// Transient failure; the job state is untouched and another
		// manual check stays available.
		m.errMsg = msg.err.Error()
		return m, nil
	}

	switch m.poller.State() {
	case syncjob.StateCompleted:
		m.statusMsg = "Sync completed: " + m.poller.Summary()
		// Fresh data is on the server now; reload the visible page.
		m.loading = true
		return m, m.loadPage(m.skip)
	case syncjob.StateFailed:
		m.errMsg = "Sync failed: " + m.poller.ErrorMessage()
		return m, tea.Tick(failureGracePeriod, func(time.Time) tea.Msg {
			return syncBannerExpiredMsg{}
		})
	}
	m.statusMsg = "Sync still running"
	return m, nil
}

func (m *Model) handleExportDone(msg exportDoneMsg) (tea.Model, tea.Cmd) {
	m.exporting = false
	if msg.err != nil {
		// Guard no-ops stay silent; real failures are surfaced and the
		// selection survives for a retry.
		if errors.Is(msg.err, export.ErrExportInFlight) || errors.Is(msg.err, export.ErrNothingSelected) {
			return m, nil
		}
		m.errMsg = msg.err.Error()
		return m, nil
	}
	if msg.res.Courses == 1 {
		m.statusMsg = fmt.Sprintf("Exported 1 course → %s", msg.res.Filename)
	} else {
		m.statusMsg = fmt.Sprintf("Exported %d courses → %s", msg.res.Courses, msg.res.Filename)
	}
	return m, nil
}

func (m *Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searching = false
		m.search.Blur()
		return m, nil
	case "esc":
		m.searching = false
		m.search.Blur()
		m.search.SetValue("")
		m.query = ""
		m.refreshVisible()
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.query = m.search.Value()
	m.refreshVisible()
	return m, cmd
}

func (m *Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "/":
		m.searching = true
		m.search.Focus()
		return m, textinput.Blink

	case "s":
		m.sortOpt = m.sortOpt.Next()
		m.refreshVisible()
		return m, nil

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case "down", "j":
		if m.cursor < len(m.visible)-1 {
			m.cursor++
		}
		return m, nil

	case "right", "n":
		if m.skip+m.pageSize < m.total && !m.loading {
			m.loading = true
			return m, m.loadPage(m.skip + m.pageSize)
		}
		return m, nil

	case "left", "p":
		if m.skip > 0 && !m.loading {
			m.loading = true
			next := m.skip - m.pageSize
			if next < 0 {
				next = 0
			}
			return m, m.loadPage(next)
		}
		return m, nil

	case "r":
		m.loading = true
		return m, m.loadPage(m.skip)

	case "v":
		// Entering or leaving selection mode starts from a clean slate.
		m.selectionMode = !m.selectionMode
		m.tracker.Clear()
		return m, nil

	case " ":
		if m.selectionMode && m.cursor < len(m.visible) {
			m.tracker.Toggle(m.visible[m.cursor].ID)
		}
		return m, nil

	case "a":
		if m.selectionMode {
			m.tracker.ToggleAllVisible(m.visibleIDs())
		}
		return m, nil

	case "A":
		if m.selectionMode {
			return m, m.loadAllIDs()
		}
		return m, nil

	case "c":
		if m.selectionMode {
			m.tracker.Clear()
		}
		return m, nil

	case "e":
		return m.handleExportKey()

	case "S":
		if m.poller.State() != syncjob.StateProcessing {
			return m, m.startSync()
		}
		return m, nil

	case "C":
		if m.poller.State() == syncjob.StateProcessing {
			return m, m.checkSync()
		}
		return m, nil
	}

	return m, nil
}

func (m *Model) handleExportKey() (tea.Model, tea.Cmd) {
	if m.exporting {
		return m, nil
	}
	if m.selectionMode {
		if m.tracker.Count() == 0 {
			// Export with nothing selected is a silent no-op.
			return m, nil
		}
		m.exporting = true
		m.processingN.Store(0)
		return m, tea.Batch(m.exportBatch(), m.spin.Tick)
	}
	if m.cursor < len(m.visible) {
		m.exporting = true
		return m, tea.Batch(m.exportSingle(m.visible[m.cursor]), m.spin.Tick)
	}
	return m, nil
}

/* -------- Derived state -------- */

// refreshVisible recomputes the filtered, sorted view of the current
// page and clamps the cursor.
func (m *Model) refreshVisible() {
	m.visible = sorting.FilterAndSort(m.courses, m.query, m.sortOpt)
	if m.cursor >= len(m.visible) {
		m.cursor = len(m.visible) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) visibleIDs() []string {
	ids := make([]string, len(m.visible))
	for i, c := range m.visible {
		ids[i] = c.ID
	}
	return ids
}

func (m *Model) page() (current, count int) {
	if m.pageSize == 0 || m.total == 0 {
		return 1, 1
	}
	count = (m.total + m.pageSize - 1) / m.pageSize
	current = m.skip/m.pageSize + 1
	return current, count
}
