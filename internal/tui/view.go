package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"gradebook-sync/internal/domain"
	"gradebook-sync/internal/syncjob"
)

func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Gradebook Courses"))
	b.WriteString("\n")
	b.WriteString(m.renderSyncWidget())
	b.WriteString("\n\n")

	if m.searching {
		b.WriteString("Search: " + m.search.View() + "\n\n")
	}

	switch {
	case m.loading:
		b.WriteString(m.spin.View() + " Loading courses...\n")
	case len(m.visible) == 0 && m.query != "":
		b.WriteString(mutedStyle.Render("No courses match \""+m.query+"\"") + "\n")
	case len(m.visible) == 0:
		b.WriteString(mutedStyle.Render("No courses. Press S to sync from the server.") + "\n")
	default:
		b.WriteString(m.renderTable())
	}

	b.WriteString("\n" + m.renderFooter())

	if m.statusMsg != "" {
		b.WriteString("\n" + successStyle.Render(m.statusMsg))
	}
	if m.errMsg != "" {
		b.WriteString("\n" + errorStyle.Render(m.errMsg))
	}

	content := b.String()
	if m.exporting {
		return m.overlayExportModal(content)
	}
	return content
}

func (m *Model) renderSyncWidget() string {
	switch m.poller.State() {
	case syncjob.StateProcessing:
		line := m.spin.View() + " Sync in progress"
		if el := m.poller.Elapsed(); el > 0 {
			line += fmt.Sprintf(" (%ds)", int(el.Seconds()))
		}
		return line + mutedStyle.Render("  · press C to check status")
	case syncjob.StateCompleted:
		return successStyle.Render("Sync completed") + mutedStyle.Render("  · "+m.poller.Summary())
	case syncjob.StateFailed:
		if m.syncBannerDismissed {
			return mutedStyle.Render("Press S to sync course data")
		}
		return errorStyle.Render("Sync failed: " + m.poller.ErrorMessage())
	}
	return mutedStyle.Render("Press S to sync course data")
}

func (m *Model) renderTable() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render(m.rowText("", "NAME", "STATUS", "START", "END")) + "\n")

	for i, c := range m.visible {
		mark := "  "
		if m.selectionMode {
			if m.tracker.IsSelected(c.ID) {
				mark = "[x]"
			} else {
				mark = "[ ]"
			}
		}
		row := m.rowText(mark, c.Name, c.Status, shortDate(c.StartDate), shortDate(c.EndDate))

		switch {
		case i == m.cursor:
			b.WriteString(cursorStyle.Render("› " + row))
		case m.selectionMode && m.tracker.IsSelected(c.ID):
			b.WriteString("  " + selectedStyle.Render(row))
		default:
			b.WriteString("  " + row)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m *Model) rowText(mark, name, status, start, end string) string {
	nameWidth := 44
	if m.width > 100 {
		nameWidth = m.width - 56
	}
	return fmt.Sprintf("%-3s %-*s %-9s %-11s %-11s", mark, nameWidth, truncate(name, nameWidth), status, start, end)
}

func (m *Model) renderFooter() string {
	current, count := m.page()
	parts := []string{
		fmt.Sprintf("Page %d/%d · %d courses", current, count, m.total),
		"sort: " + m.sortOpt.Label(),
	}
	if m.query != "" {
		parts = append(parts, "filter: "+m.query)
	}
	if m.selectionMode {
		sel := fmt.Sprintf("%d selected", m.tracker.Count())
		if m.tracker.AllPages() {
			sel += " (all pages)"
		}
		parts = append(parts, sel)
	}

	help := "↑/↓ move · ←/→ page · / search · s sort · v select mode · S sync · e export · q quit"
	if m.selectionMode {
		help = "space toggle · a toggle visible · A all pages · c clear · e export batch · v exit select mode"
	}

	return mutedStyle.Render(strings.Join(parts, " · ")) + "\n" + helpStyle.Render(help)
}

func (m *Model) overlayExportModal(background string) string {
	label := "Exporting gradebook..."
	if m.selectionMode {
		// The resolved count, not the raw selection count.
		if n := m.processingN.Load(); n > 0 {
			label = fmt.Sprintf("Processing %d courses...", n)
		} else {
			label = "Resolving selected courses..."
		}
	}
	modal := modalStyle.Render(m.spin.View() + " " + label + "\n" + mutedStyle.Render("this can take a few minutes"))

	if m.width > 0 && m.height > 0 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal)
	}
	return background + "\n" + modal
}

func shortDate(iso string) string {
	if t, ok := domain.ParseDate(iso); ok {
		return t.Format("2006-01-02")
	}
	return "—"
}

func truncate(s string, max int) string {
	if max <= 1 || len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}
