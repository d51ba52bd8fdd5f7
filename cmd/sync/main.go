package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"gradebook-sync/internal/config"
	"gradebook-sync/internal/providers/netacad"
	"gradebook-sync/internal/syncjob"
)

func main() {
	watch := flag.Bool("watch", false, "poll until the sync finishes")
	interval := flag.Duration("interval", 5*time.Second, "poll interval with -watch")
	history := flag.Int("history", 0, "show the last N syncs and exit")
	flag.Parse()

	cfg := config.Load()
	client := netacad.New(cfg.APIBaseURL, cfg.APIToken)
	ctx := context.Background()

	if *history > 0 {
		printHistory(ctx, client, *history)
		return
	}

	poller := syncjob.NewPoller(client)
	poller.OnComplete = func(st *netacad.SyncStatus) {
		fmt.Printf("OK: sync completed: %d scraped, %d new, %d updated, %d failed\n",
			st.TotalScraped, st.NewCourses, st.UpdatedCourses, st.FailedCourses)
	}
	poller.OnError = func(msg string) {
		fmt.Printf("sync failed: %s\n", msg)
	}

	if err := poller.Start(ctx); err != nil {
		log.Fatalf("start sync: %v", err)
	}
	fmt.Println("sync started")

	if !*watch {
		return
	}

	for !poller.State().Terminal() {
		time.Sleep(*interval)
		if _, err := poller.CheckStatus(ctx); err != nil {
			// Transient; the job keeps running server-side.
			fmt.Printf("status check failed (will retry): %v\n", err)
		}
		fmt.Printf("status=%s elapsed=%ds\n", poller.State(), int(poller.Elapsed().Seconds()))
	}
}

func printHistory(ctx context.Context, client *netacad.Client, limit int) {
	history, err := client.GetSyncHistory(ctx, limit)
	if err != nil {
		log.Fatalf("sync history: %v", err)
	}
	for i, st := range history {
		line := fmt.Sprintf("%d) %s status=%s scraped=%d new=%d updated=%d failed=%d",
			i+1, st.ID, st.Status, st.TotalScraped, st.NewCourses, st.UpdatedCourses, st.FailedCourses)
		if st.ErrorMessage != "" {
			line += " error=" + st.ErrorMessage
		}
		fmt.Println(line)
	}
}
