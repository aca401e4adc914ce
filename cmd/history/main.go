package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"

	"objectdetection/internal/config"
	"objectdetection/internal/repository"
	"objectdetection/internal/repository/sqlite"

	"github.com/pterm/pterm"
)

const timeLayout = "2006-01-02 15:04:05"

func main() {
	cfg := config.Load()

	dbPath := flag.String("db", cfg.HistoryDatabase, "History database path")
	limit := flag.Int("limit", 10, "Number of recent runs to show")
	runID := flag.Int64("run", 0, "Show a single run with its detections")
	flag.Parse()

	if _, err := os.Stat(*dbPath); err != nil {
		log.Fatalf("No detection history at %s: %v", *dbPath, err)
	}

	db, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	runs := sqlite.NewRunRepository(db)
	detections := sqlite.NewDetectionRepository(db)

	if *runID > 0 {
		if err := printRun(os.Stdout, runs, detections, *runID); err != nil {
			log.Fatalf("%v", err)
		}
		return
	}

	if err := printSummary(runs, detections, *dbPath, *limit); err != nil {
		log.Fatalf("%v", err)
	}
}

// printRun prints one run and every detection stored for it.
func printRun(w io.Writer, runs repository.RunRepository, detections repository.DetectionRepository, id int64) error {
	run, err := runs.GetByID(id)
	if err != nil {
		return fmt.Errorf("failed to load run %d: %w", id, err)
	}
	if run == nil {
		return fmt.Errorf("run %d not found", id)
	}

	fmt.Fprintf(w, "Run %d (%s) %s\n", run.ID, run.Kind, run.StartedAt.Local().Format(timeLayout))
	fmt.Fprintf(w, "   Source: %s\n", run.Source)
	fmt.Fprintf(w, "   Frames: %d\n", run.Frames)
	if run.SaveDir != "" {
		fmt.Fprintf(w, "   Saved to: %s\n", run.SaveDir)
	}

	dets, err := detections.GetByRunID(id)
	if err != nil {
		return fmt.Errorf("failed to load detections for run %d: %w", id, err)
	}
	if len(dets) == 0 {
		fmt.Fprintln(w, "   No detections stored")
		return nil
	}

	fmt.Fprintf(w, "   Detections (%d):\n", len(dets))
	for _, d := range dets {
		fmt.Fprintf(w, "      - %s %.2f at (%d, %d) %dx%d\n", d.ClassName, d.Confidence, d.X, d.Y, d.Width, d.Height)
	}
	return nil
}

func printSummary(runs repository.RunRepository, detections repository.DetectionRepository, dbPath string, limit int) error {
	total, err := runs.GetTotalCount()
	if err != nil {
		return fmt.Errorf("failed to count runs: %w", err)
	}
	fmt.Printf("Detection history %s: %d runs\n\n", dbPath, total)

	recent, err := runs.GetRecent(limit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	table := pterm.TableData{{"ID", "Started", "Kind", "Source", "Frames", "Saved to"}}
	for _, run := range recent {
		table = append(table, []string{
			strconv.FormatInt(run.ID, 10),
			run.StartedAt.Local().Format(timeLayout),
			string(run.Kind),
			run.Source,
			strconv.Itoa(run.Frames),
			run.SaveDir,
		})
	}
	if err := pterm.DefaultTable.WithHasHeader().WithData(table).Render(); err != nil {
		return fmt.Errorf("failed to render runs: %w", err)
	}

	counts, err := detections.CountByClass()
	if err != nil {
		return fmt.Errorf("failed to count detections: %w", err)
	}
	if len(counts) == 0 {
		fmt.Println("\nNo objects detected yet")
		return nil
	}

	fmt.Printf("\nObjects per class:\n")
	for _, c := range counts {
		fmt.Printf("   - %s: %d\n", c.ClassName, c.Count)
	}
	return nil
}
