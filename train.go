package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/mdobak/go-xerrors"

	"sound-classification/db"
	"sound-classification/reports"
	"sound-classification/sound"
	"sound-classification/utils"
)

// trainConfig holds the resolved train subcommand configuration.
type trainConfig struct {
	DatasetRoot   string
	SampleRate    int
	NumMFCC       int
	MaxFrames     int
	TestRatio     float64
	Seed          int64
	C             float64
	ScaleFeatures bool
	Workers       int
	ReportDir     string
	DBPath        string
	NoProgress    bool
}

func runTrain(args []string) {
	config := parseTrainFlags(args)

	log.SetFlags(log.Ldate | log.Ltime)
	log.Printf("=== Sound Classification Training Pipeline ===\n")
	log.Printf("Dataset: %s\n", config.DatasetRoot)
	log.Printf("Features: %d MFCCs x %d frames at %d Hz\n",
		config.NumMFCC, config.MaxFrames, config.SampleRate)
	log.Printf("Split: %.0f%% test, seed %d\n", config.TestRatio*100, config.Seed)
	log.Println()

	startTime := time.Now()

	featureCfg := sound.DefaultFeatureConfig()
	featureCfg.SampleRate = config.SampleRate
	featureCfg.NumMFCC = config.NumMFCC
	featureCfg.MaxFrames = config.MaxFrames

	extractor, err := sound.NewExtractor(featureCfg)
	if err != nil {
		log.Fatalf("ERROR: %v", err)
	}

	pipelineCfg := sound.DefaultPipelineConfig()
	pipelineCfg.DatasetRoot = config.DatasetRoot
	pipelineCfg.Feature = featureCfg
	pipelineCfg.TestRatio = config.TestRatio
	pipelineCfg.Seed = config.Seed
	pipelineCfg.SVM.C = config.C
	pipelineCfg.Workers = config.Workers
	pipelineCfg.ShowProgress = !config.NoProgress
	pipelineCfg.ScaleFeatures = config.ScaleFeatures

	report, err := sound.RunPipeline(pipelineCfg, extractor)
	if err != nil {
		logger := utils.GetLogger()
		ctx := context.Background()
		logger.ErrorContext(ctx, "Training pipeline failed.", slog.Any("error", xerrors.New(err)))
		os.Exit(1)
	}

	printTrainingReport(report, startTime)

	reportPath, err := reports.Save(config.ReportDir, report)
	if err != nil {
		log.Printf("WARNING: Failed to save report: %v\n", err)
	} else {
		log.Printf("Report saved to: %s\n", reportPath)
	}

	if err := recordRun(config.DBPath, report, reportPath); err != nil {
		log.Printf("WARNING: Failed to record run in registry: %v\n", err)
	} else {
		log.Printf("Run %s recorded in %s\n", report.RunID, config.DBPath)
	}

	log.Println()
	log.Println("✓ Training complete!")
}

func parseTrainFlags(args []string) trainConfig {
	config := trainConfig{}
	trainCmd := flag.NewFlagSet("train", flag.ExitOnError)

	trainCmd.StringVar(&config.DatasetRoot, "data", utils.GetEnv("DATASET_ROOT", ""),
		"Dataset root with one subdirectory per class label")
	trainCmd.IntVar(&config.SampleRate, "sample-rate", getEnvInt("SAMPLE_RATE", 22050),
		"Decode sample rate in Hz")
	trainCmd.IntVar(&config.NumMFCC, "mfcc", getEnvInt("NUM_MFCC", 13),
		"Number of MFCC coefficients per frame")
	trainCmd.IntVar(&config.MaxFrames, "max-frames", getEnvInt("MAX_FRAMES", 1000),
		"Fixed frame count per clip (longer clips truncate, shorter pad)")
	trainCmd.Float64Var(&config.TestRatio, "test-ratio", getEnvFloat("TEST_RATIO", 0.2),
		"Fraction of samples held out for testing")
	trainCmd.Int64Var(&config.Seed, "seed", int64(getEnvInt("SPLIT_SEED", 42)),
		"Seed for the train/test split and SVM training shuffle")
	trainCmd.Float64Var(&config.C, "c", getEnvFloat("SVM_C", 1.0),
		"SVM regularization strength")
	trainCmd.BoolVar(&config.ScaleFeatures, "scale", false,
		"Standardize features using training-set statistics")
	trainCmd.IntVar(&config.Workers, "workers", 0,
		"Extraction workers (0 = one per CPU)")
	trainCmd.StringVar(&config.ReportDir, "report-dir", utils.GetEnv("REPORT_DIR", "reports"),
		"Directory for training report JSON files")
	trainCmd.StringVar(&config.DBPath, "db", utils.GetEnv("SQLITE_DB_PATH", "data/runs.db"),
		"SQLite run registry path")
	trainCmd.BoolVar(&config.NoProgress, "no-progress", false,
		"Disable the extraction progress bar")

	trainCmd.Parse(args)

	if config.DatasetRoot == "" {
		log.Fatalf("ERROR: No dataset root given. Pass -data or set DATASET_ROOT.")
	}
	if _, err := os.Stat(config.DatasetRoot); os.IsNotExist(err) {
		log.Fatalf("ERROR: Dataset root does not exist: %s", config.DatasetRoot)
	}

	return config
}

func recordRun(dbPath string, report *sound.TrainingReport, reportPath string) error {
	client, err := db.NewSQLiteClient(dbPath)
	if err != nil {
		return err
	}
	defer client.Close()
	return client.SaveRun(db.RunRecordFromReport(report, reportPath))
}

func printTrainingReport(report *sound.TrainingReport, startTime time.Time) {
	elapsed := time.Since(startTime)

	log.Println("=== Training Summary ===")
	log.Println()
	log.Printf("Files found: %d\n", report.TotalFiles)
	log.Printf("Successfully extracted: %d (%.1f%%)\n",
		report.UsableFiles,
		float64(report.UsableFiles)/float64(report.TotalFiles)*100)
	log.Printf("Skipped: %d\n", len(report.SkippedFiles))
	log.Println()

	log.Println("Class distribution:")
	for _, label := range report.Classes {
		log.Printf("  %-20s: %3d clips\n", label, report.ClassCounts[label])
	}
	log.Println()

	log.Printf("Train/test split: %d/%d (vector length %d)\n",
		report.TrainCount, report.TestCount, report.VectorLength)
	log.Printf("Train accuracy: %.2f%%\n", report.TrainAccuracy)
	log.Printf("Test accuracy:  %.2f%%\n", report.TestAccuracy)

	sound.PrintConfusionMatrix(report.Confusion, report.Classes)
	sound.PrintClassReport(report.ClassReport)

	if len(report.SkippedFiles) > 0 {
		log.Println()
		log.Println("Skipped files:")
		for _, skip := range report.SkippedFiles {
			log.Printf("  ✗ %s (%s)\n", filepath.Base(skip.Path), skip.Reason)
		}
	}

	log.Println()
	log.Printf("Feature extraction time: %.2f seconds\n", report.ExtractionSeconds)
	log.Printf("SVM training time: %.2f seconds\n", report.TrainingSeconds)
	log.Printf("Total time: %.2f seconds\n", elapsed.Seconds())

	printVerdict(report.TestAccuracy)
}

func printVerdict(accuracy float64) {
	log.Println("=" + strings.Repeat("=", 79))
	log.Println("VERDICT")
	log.Println("=" + strings.Repeat("=", 79))

	var verdict string
	var recommendation string

	if accuracy >= 90 {
		verdict = "✓ EXCELLENT"
		recommendation = "Classifier is ready to use!"
	} else if accuracy >= 80 {
		verdict = "✓ GOOD"
		recommendation = "Classifier works well. Consider adding more diverse clips."
	} else if accuracy >= 70 {
		verdict = "⚠ FAIR"
		recommendation = "Classifier has significant room for improvement. Add more training data."
	} else {
		verdict = "✗ POOR"
		recommendation = "Classifier needs substantial improvement. Check audio quality and label balance."
	}

	log.Printf("Overall Assessment: %s\n", verdict)
	log.Printf("Test Accuracy: %.2f%%\n", accuracy)
	log.Printf("Recommendation: %s\n", recommendation)
	log.Println("=" + strings.Repeat("=", 79))
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return fallback
}
