package tui

import (
	"gradebook-sync/internal/export"
	"gradebook-sync/internal/providers/netacad"
)

// coursesLoadedMsg carries one fetched listing page.
type coursesLoadedMsg struct {
	resp *netacad.ListCoursesResponse
	err  error
}

// allIDsLoadedMsg carries the full id universe for select-all-pages.
type allIDsLoadedMsg struct {
	ids []string
	err error
}

type syncStartedMsg struct {
	err error
}

// syncCheckedMsg reports a manual status check. ran is false when the
// check was suppressed (one already in flight or job terminal).
type syncCheckedMsg struct {
	ran bool
	err error
}

type exportDoneMsg struct {
	res *export.Result
	err error
}

// syncBannerExpiredMsg dismisses the failure banner after its grace
// period.
type syncBannerExpiredMsg struct{}
