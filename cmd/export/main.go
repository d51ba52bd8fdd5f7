package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"gradebook-sync/internal/config"
	"gradebook-sync/internal/delivery"
	"gradebook-sync/internal/export"
	"gradebook-sync/internal/providers/netacad"
	"gradebook-sync/internal/selection"
)

func main() {
	all := flag.Bool("all", false, "export every course in the dataset")
	ids := flag.String("ids", "", "comma-separated internal course ids to export")
	single := flag.String("id", "", "export one course by internal id")
	flag.Parse()

	cfg := config.Load()
	client := netacad.New(cfg.APIBaseURL, cfg.APIToken)
	tracker := selection.NewTracker()

	orch := export.NewOrchestrator(client, tracker, delivery.NewDir(cfg.DownloadDir))
	orch.StatusFilter = cfg.StatusFilter
	orch.OnProgress = func(n int) {
		fmt.Printf("processing %d courses...\n", n)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	switch {
	case *single != "":
		exportOne(ctx, client, orch, cfg.StatusFilter, *single)

	case *all:
		courses, err := client.ListAllCourses(ctx, cfg.StatusFilter)
		if err != nil {
			log.Fatalf("list courses: %v", err)
		}
		allIDs := make([]string, len(courses))
		for i, c := range courses {
			allIDs[i] = c.ID
		}
		tracker.SelectAllAcrossPages(allIDs)
		runBatch(ctx, orch)

	case *ids != "":
		for _, id := range strings.Split(*ids, ",") {
			tracker.Toggle(strings.TrimSpace(id))
		}
		runBatch(ctx, orch)

	default:
		log.Fatal("nothing to do: pass -all, -ids, or -id")
	}
}

func exportOne(ctx context.Context, client *netacad.Client, orch *export.Orchestrator, statusFilter, id string) {
	// Resolve the record first; the export request wants name and URL,
	// not just the id.
	courses, err := client.ListAllCourses(ctx, statusFilter)
	if err != nil {
		log.Fatalf("list courses: %v", err)
	}
	for _, c := range courses {
		if c.ID == id || c.CourseID == id {
			res, err := orch.ExportSingle(ctx, c)
			if err != nil {
				log.Fatalf("export: %v", err)
			}
			fmt.Printf("OK: exported %q -> %s\n", c.Name, res.Filename)
			return
		}
	}
	log.Fatalf("no course with id %q", id)
}

func runBatch(ctx context.Context, orch *export.Orchestrator) {
	res, err := orch.ExportBatch(ctx)
	if err != nil {
		log.Fatalf("export: %v", err)
	}
	fmt.Printf("OK: exported %d courses -> %s\n", res.Courses, res.Filename)
}
