package main

import (
	"flag"
	"fmt"
	"log"

	"sound-classification/db"
	"sound-classification/reports"
	"sound-classification/sound"
	"sound-classification/utils"
)

func runHistory(args []string) {
	historyCmd := flag.NewFlagSet("history", flag.ExitOnError)
	dbPath := historyCmd.String("db", utils.GetEnv("SQLITE_DB_PATH", "data/runs.db"),
		"SQLite run registry path")
	limit := historyCmd.Int("limit", 20,
		"Number of runs to list (0 = all)")
	runID := historyCmd.String("id", "",
		"Show one run in full detail")
	reportDir := historyCmd.String("report-dir", utils.GetEnv("REPORT_DIR", "reports"),
		"Directory holding training report JSON files")
	historyCmd.Parse(args)

	client, err := db.NewSQLiteClient(*dbPath)
	if err != nil {
		log.Fatalf("ERROR: Failed to open run registry: %v", err)
	}
	defer client.Close()

	if *runID != "" {
		showRunDetail(client, *runID, *reportDir)
		return
	}

	total, err := client.TotalRuns()
	if err != nil {
		log.Fatalf("ERROR: %v", err)
	}
	if total == 0 {
		fmt.Println("No training runs recorded yet. Run the train subcommand first.")
		return
	}

	records, err := client.ListRuns(*limit)
	if err != nil {
		log.Fatalf("ERROR: %v", err)
	}

	fmt.Printf("%d training run(s) recorded\n\n", total)
	fmt.Printf("%-36s  %-20s  %9s  %7s  %7s\n", "Run ID", "Started", "Test Acc", "Train", "Test")
	for _, r := range records {
		fmt.Printf("%-36s  %-20s  %8.2f%%  %7d  %7d\n",
			r.ID, r.StartedAt, r.TestAccuracy, r.TrainCount, r.TestCount)
	}
}

func showRunDetail(client *db.SQLiteClient, runID, reportDir string) {
	record, found, err := client.GetRun(runID)
	if err != nil {
		log.Fatalf("ERROR: %v", err)
	}
	if !found {
		log.Fatalf("ERROR: No run with id %s in the registry", runID)
	}

	fmt.Printf("Run %s\n\n", record.ID)
	fmt.Printf("  %-20s %s\n", "Started:", record.StartedAt)
	fmt.Printf("  %-20s %s\n", "Dataset:", record.DatasetRoot)
	fmt.Printf("  %-20s %d Hz, %d MFCCs, %d frames\n", "Features:",
		record.SampleRate, record.NumMFCC, record.MaxFrames)
	fmt.Printf("  %-20s %d\n", "Seed:", record.Seed)
	fmt.Printf("  %-20s %d usable, %d skipped\n", "Files:",
		record.UsableFiles, record.SkippedFiles)
	fmt.Printf("  %-20s %d train / %d test\n", "Split:",
		record.TrainCount, record.TestCount)
	fmt.Printf("  %-20s %.2f%%\n", "Test accuracy:", record.TestAccuracy)

	// The registry row is a summary; pull the full report for the rest.
	report, err := reports.Load(reportDir, runID)
	if err != nil {
		fmt.Printf("\nFull report unavailable (%v)\n", err)
		return
	}
	fmt.Printf("  %-20s %.2f%%\n", "Train accuracy:", report.TrainAccuracy)
	sound.PrintConfusionMatrix(report.Confusion, report.Classes)
	sound.PrintClassReport(report.ClassReport)
}
