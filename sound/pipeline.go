package sound

// Training Pipeline
//
// RunPipeline is the one-shot batch flow: load a labeled dataset, fit
// the label encoding over the full label set, split train/test with a
// fixed seed, train the one-vs-rest SVM and evaluate it. Everything it
// learns lands in the returned TrainingReport; nothing is kept in
// package state, so two runs with the same config are independent and
// identical.

import (
	"errors"
	"fmt"
	"log"
	"time"

	"sound-classification/utils"
)

var (
	// ErrEmptyDataset means no usable audio files were found under the
	// dataset root.
	ErrEmptyDataset = errors.New("dataset contains no usable audio files")
	// ErrSingleClass means every usable file carried the same label, so
	// there is nothing to classify.
	ErrSingleClass = errors.New("dataset contains fewer than two classes")
)

// PipelineConfig is the complete configuration of one training run.
type PipelineConfig struct {
	DatasetRoot   string
	Feature       FeatureConfig
	SVM           SVMConfig
	TestRatio     float64
	Seed          int64 // seeds both the split and the SVM training shuffle
	Workers       int
	ShowProgress  bool
	ScaleFeatures bool
}

// DefaultPipelineConfig returns the standard run configuration; only
// DatasetRoot must be filled in.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Feature:   DefaultFeatureConfig(),
		SVM:       DefaultSVMConfig(),
		TestRatio: 0.2,
		Seed:      42,
	}
}

// RunPipeline executes the full train-and-evaluate flow using src for
// feature extraction. It fails fast with ErrEmptyDataset or
// ErrSingleClass when the dataset cannot support training; individual
// unreadable files only end up in the report's skipped list.
func RunPipeline(cfg PipelineConfig, src FeatureSource) (*TrainingReport, error) {
	if cfg.DatasetRoot == "" {
		return nil, fmt.Errorf("dataset root is required")
	}

	report := &TrainingReport{
		RunID:         utils.GenerateUniqueID(),
		StartedAt:     time.Now().Format(time.RFC3339),
		DatasetRoot:   cfg.DatasetRoot,
		SampleRate:    cfg.Feature.SampleRate,
		NumMFCC:       cfg.Feature.NumMFCC,
		MaxFrames:     cfg.Feature.MaxFrames,
		VectorLength:  src.VectorLength(),
		TestRatio:     cfg.TestRatio,
		Seed:          cfg.Seed,
		ScaleFeatures: cfg.ScaleFeatures,
	}

	log.Printf("Step 1/5: Loading dataset from %s", cfg.DatasetRoot)
	extractStart := time.Now()
	ds, err := LoadDataset(cfg.DatasetRoot, src, LoadOptions{
		Workers:      cfg.Workers,
		ShowProgress: cfg.ShowProgress,
	})
	if err != nil {
		return nil, err
	}
	report.ExtractionSeconds = time.Since(extractStart).Seconds()
	report.UsableFiles = ds.Len()
	report.TotalFiles = ds.Len() + len(ds.Skipped)
	report.SkippedFiles = ds.Skipped
	if ds.Len() == 0 {
		return nil, fmt.Errorf("%w: nothing usable under %s", ErrEmptyDataset, cfg.DatasetRoot)
	}
	log.Printf("Loaded %d usable files (%d skipped)", ds.Len(), len(ds.Skipped))

	log.Printf("Step 2/5: Encoding labels")
	encoder, err := NewLabelEncoder(ds.Labels)
	if err != nil {
		return nil, err
	}
	if encoder.NumClasses() < 2 {
		return nil, fmt.Errorf("%w: every file is labeled %q", ErrSingleClass, encoder.Classes()[0])
	}
	report.Classes = encoder.Classes()
	report.ClassCounts = countLabels(ds.Labels)
	ids, err := encoder.EncodeAll(ds.Labels)
	if err != nil {
		return nil, err
	}

	log.Printf("Step 3/5: Splitting train/test (ratio %.2f, seed %d)", cfg.TestRatio, cfg.Seed)
	trainIdx, testIdx, err := TrainTestSplit(ds.Len(), cfg.TestRatio, cfg.Seed)
	if err != nil {
		return nil, err
	}
	report.TrainCount = len(trainIdx)
	report.TestCount = len(testIdx)

	trainRows, trainIDs := gather(ds.Features, ids, trainIdx)
	testRows, testIDs := gather(ds.Features, ids, testIdx)
	if distinct(trainIDs) < 2 {
		// The split is not stratified, so a small or lopsided dataset can
		// dump an entire class into the test side.
		return nil, fmt.Errorf("training split covers fewer than two classes; use more data or a different seed")
	}

	if cfg.ScaleFeatures {
		scaler, err := FitScaler(trainRows)
		if err != nil {
			return nil, fmt.Errorf("fitting feature scaler: %w", err)
		}
		if trainRows, err = scaler.TransformAll(trainRows); err != nil {
			return nil, err
		}
		if testRows, err = scaler.TransformAll(testRows); err != nil {
			return nil, err
		}
	}

	log.Printf("Step 4/5: Training SVM on %d samples (%d classes)", len(trainRows), encoder.NumClasses())
	svmCfg := cfg.SVM
	svmCfg.Seed = cfg.Seed
	trainStart := time.Now()
	model, err := TrainSVM(trainRows, trainIDs, encoder.NumClasses(), svmCfg)
	if err != nil {
		return nil, fmt.Errorf("training SVM: %w", err)
	}
	report.TrainingSeconds = time.Since(trainStart).Seconds()

	log.Printf("Step 5/5: Evaluating on %d held-out samples", len(testRows))
	trainPred, err := model.PredictAll(trainRows)
	if err != nil {
		return nil, err
	}
	testPred, err := model.PredictAll(testRows)
	if err != nil {
		return nil, err
	}

	trainActual, err := decodeAll(encoder, trainIDs)
	if err != nil {
		return nil, err
	}
	trainPredicted, err := decodeAll(encoder, trainPred)
	if err != nil {
		return nil, err
	}
	testActual, err := decodeAll(encoder, testIDs)
	if err != nil {
		return nil, err
	}
	testPredicted, err := decodeAll(encoder, testPred)
	if err != nil {
		return nil, err
	}

	trainAcc, err := Accuracy(trainActual, trainPredicted)
	if err != nil {
		return nil, err
	}
	testAcc, err := Accuracy(testActual, testPredicted)
	if err != nil {
		return nil, err
	}
	report.TrainAccuracy = trainAcc * 100
	report.TestAccuracy = testAcc * 100
	report.Confusion = BuildConfusionMatrix(testActual, testPredicted)
	report.ClassReport = BuildClassReport(testActual, testPredicted, encoder.Classes())
	report.CompletedAt = time.Now().Format(time.RFC3339)
	return report, nil
}

func gather(features [][]float64, ids []int, idx []int) ([][]float64, []int) {
	rows := make([][]float64, len(idx))
	labels := make([]int, len(idx))
	for i, j := range idx {
		rows[i] = features[j]
		labels[i] = ids[j]
	}
	return rows, labels
}

func distinct(ids []int) int {
	seen := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		seen[id] = struct{}{}
	}
	return len(seen)
}

func countLabels(labels []string) map[string]int {
	counts := make(map[string]int)
	for _, label := range labels {
		counts[label]++
	}
	return counts
}

func decodeAll(encoder *LabelEncoder, ids []int) ([]string, error) {
	out := make([]string, len(ids))
	for i, id := range ids {
		label, err := encoder.Decode(id)
		if err != nil {
			return nil, err
		}
		out[i] = label
	}
	return out, nil
}
