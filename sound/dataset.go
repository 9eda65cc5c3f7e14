package sound

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	"sound-classification/utils"
)

// FeatureSource produces a fixed-length feature vector per audio file.
// *Extractor is the production implementation; tests substitute fakes.
type FeatureSource interface {
	ExtractFile(path string) ([]float64, error)
	VectorLength() int
}

// SkippedFile records one file that was left out of a dataset and why.
type SkippedFile struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// Dataset holds the extracted feature matrix for a labeled audio
// collection. Features, Labels and Files always have equal length; row i
// of Features belongs to Labels[i] and came from Files[i].
type Dataset struct {
	Features [][]float64
	Labels   []string
	Files    []string
	Skipped  []SkippedFile
}

// Len returns the number of usable samples in the dataset.
func (d *Dataset) Len() int { return len(d.Features) }

// LoadOptions tunes dataset loading. The zero value uses one worker per
// CPU and no progress bar.
type LoadOptions struct {
	Workers      int
	ShowProgress bool
}

type datasetFile struct {
	path  string
	label string
}

// LoadDataset walks root, where each immediate subdirectory name is a
// class label and the audio files inside it are that class's samples:
//
//	root/cat/clip1.mp3
//	root/dog/clip7.wav
//
// Every .mp3 and .wav file is decoded and run through src; files that
// cannot be decoded or extracted are logged, recorded in Skipped and
// left out, never aborting the load. Extraction runs on a worker pool
// but the resulting rows keep the deterministic walk order.
func LoadDataset(root string, src FeatureSource, opts LoadOptions) (*Dataset, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("dataset root %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("dataset root %s is not a directory", root)
	}

	files, skipped, err := collectDatasetFiles(root)
	if err != nil {
		return nil, err
	}

	logger := utils.GetLogger()
	for _, s := range skipped {
		logger.Warn("skipping dataset entry",
			slog.String("path", s.Path),
			slog.String("reason", s.Reason))
	}

	ds := &Dataset{Skipped: skipped}
	if len(files) == 0 {
		return ds, nil
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(files) {
		workers = len(files)
	}

	var bar *mpb.Bar
	var progress *mpb.Progress
	if opts.ShowProgress {
		progress = mpb.New(mpb.WithWidth(64))
		bar = progress.AddBar(int64(len(files)),
			mpb.PrependDecorators(
				decor.Name("Extracting features  "),
				decor.CountersNoUnit("%d / %d"),
			),
			mpb.AppendDecorators(decor.Percentage()),
		)
	}

	vectors := make([][]float64, len(files))
	failures := make([]error, len(files))
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				vectors[i], failures[i] = src.ExtractFile(files[i].path)
				if bar != nil {
					bar.Increment()
				}
			}
		}()
	}
	for i := range files {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	if progress != nil {
		progress.Wait()
	}

	for i, f := range files {
		if failures[i] != nil {
			reason := failures[i].Error()
			logger.Warn("skipping unreadable audio file",
				slog.String("path", f.path),
				slog.String("reason", reason))
			ds.Skipped = append(ds.Skipped, SkippedFile{Path: f.path, Reason: reason})
			continue
		}
		ds.Features = append(ds.Features, vectors[i])
		ds.Labels = append(ds.Labels, f.label)
		ds.Files = append(ds.Files, f.path)
	}
	return ds, nil
}

// collectDatasetFiles gathers every labeled audio file under root in
// lexical walk order. Hidden directories are ignored; audio files lying
// directly under root have no label directory and are recorded as
// skipped.
func collectDatasetFiles(root string) ([]datasetFile, []SkippedFile, error) {
	var files []datasetFile
	var skipped []SkippedFile
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			skipped = append(skipped, SkippedFile{Path: path, Reason: err.Error()})
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !isAudioFile(d.Name()) {
			return nil
		}
		parent := filepath.Dir(path)
		if parent == filepath.Clean(root) {
			skipped = append(skipped, SkippedFile{
				Path:   path,
				Reason: "file sits directly under the dataset root; expected <root>/<label>/<file>",
			})
			return nil
		}
		files = append(files, datasetFile{path: path, label: filepath.Base(parent)})
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("walking dataset root %s: %w", root, err)
	}
	return files, skipped, nil
}

func isAudioFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".mp3", ".wav":
		return true
	}
	return false
}
