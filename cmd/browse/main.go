package main

import (
	"fmt"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"gradebook-sync/internal/config"
	"gradebook-sync/internal/delivery"
	"gradebook-sync/internal/export"
	"gradebook-sync/internal/providers/netacad"
	"gradebook-sync/internal/selection"
	"gradebook-sync/internal/syncjob"
	"gradebook-sync/internal/tui"
)

func main() {
	cfg := config.Load()

	client := netacad.New(cfg.APIBaseURL, cfg.APIToken)
	tracker := selection.NewTracker()
	poller := syncjob.NewPoller(client)

	deliver, err := buildDeliverer(cfg)
	if err != nil {
		log.Fatalf("delivery setup: %v", err)
	}

	orch := export.NewOrchestrator(client, tracker, deliver)
	orch.StatusFilter = cfg.StatusFilter

	model := tui.NewModel(tui.Options{
		API:          client,
		Tracker:      tracker,
		Poller:       poller,
		Orchestrator: orch,
		PageSize:     cfg.PageSize,
		StatusFilter: cfg.StatusFilter,
	})

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "browse: %v\n", err)
		os.Exit(1)
	}
}

// buildDeliverer always writes to the local download dir, plus the SFTP
// drop when one is configured.
func buildDeliverer(cfg config.Config) (delivery.Deliverer, error) {
	dir := delivery.NewDir(cfg.DownloadDir)
	if !cfg.SFTPEnabled() {
		return dir, nil
	}

	remote, err := delivery.NewSFTP(delivery.SFTPConfig{
		Host:      cfg.SFTPHost,
		Port:      cfg.SFTPPort,
		User:      cfg.SFTPUser,
		Pass:      cfg.SFTPPass,
		RemoteDir: cfg.SFTPRemoteDir,
	})
	if err != nil {
		return nil, err
	}
	return delivery.Multi{dir, remote}, nil
}
