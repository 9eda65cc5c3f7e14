package sound

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"sound-classification/wav"
)

// writeWavFixture writes a small playable mono WAV at path, creating
// parent directories as needed.
func writeWavFixture(t *testing.T, path string, freq float64) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("creating fixture dir: %v", err)
	}
	samples := sineWave(freq, 8000, 4000)
	if err := wav.WriteWavFile(path, samples, 8000, 1); err != nil {
		t.Fatalf("writing fixture %s: %v", path, err)
	}
}

// fakeSource is a FeatureSource that derives tiny vectors from file
// names, so ordering checks do not depend on audio decoding.
type fakeSource struct {
	mu    sync.Mutex
	calls []string
	fail  map[string]bool // base names that should fail extraction
}

func (f *fakeSource) ExtractFile(path string) ([]float64, error) {
	f.mu.Lock()
	f.calls = append(f.calls, path)
	f.mu.Unlock()
	base := filepath.Base(path)
	if f.fail[base] {
		return nil, fmt.Errorf("forced extraction failure for %s", base)
	}
	var sum float64
	for _, b := range []byte(base) {
		sum += float64(b)
	}
	return []float64{sum, float64(len(base))}, nil
}

func (f *fakeSource) VectorLength() int { return 2 }

func TestLoadDatasetLabelsFromParentDir(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeWavFixture(t, filepath.Join(root, "cat", "meow1.wav"), 300)
	writeWavFixture(t, filepath.Join(root, "cat", "meow2.wav"), 320)
	writeWavFixture(t, filepath.Join(root, "dog", "bark1.wav"), 900)

	cfg := testFeatureConfig()
	ex, err := NewExtractor(cfg)
	if err != nil {
		t.Fatalf("NewExtractor failed: %v", err)
	}
	ds, err := LoadDataset(root, ex, LoadOptions{})
	if err != nil {
		t.Fatalf("LoadDataset failed: %v", err)
	}
	if ds.Len() != 3 {
		t.Fatalf("loaded %d samples, want 3", ds.Len())
	}
	if len(ds.Features) != len(ds.Labels) || len(ds.Labels) != len(ds.Files) {
		t.Fatalf("collections out of sync: %d features, %d labels, %d files",
			len(ds.Features), len(ds.Labels), len(ds.Files))
	}
	// Lexical walk order: cat files before dog files.
	wantLabels := []string{"cat", "cat", "dog"}
	for i, want := range wantLabels {
		if ds.Labels[i] != want {
			t.Errorf("label %d = %q, want %q", i, ds.Labels[i], want)
		}
	}
	for _, vec := range ds.Features {
		if len(vec) != cfg.VectorLength() {
			t.Errorf("feature vector has %d values, want %d", len(vec), cfg.VectorLength())
		}
	}
	if len(ds.Skipped) != 0 {
		t.Errorf("unexpected skipped files: %+v", ds.Skipped)
	}
}

func TestLoadDatasetSkipsCorruptFile(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeWavFixture(t, filepath.Join(root, "cat", "good.wav"), 300)
	// Text bytes with an audio extension: not decodable by anything.
	corrupt := filepath.Join(root, "cat", "broken.mp3")
	if err := os.WriteFile(corrupt, []byte("this is not audio data at all"), 0644); err != nil {
		t.Fatalf("writing corrupt fixture: %v", err)
	}

	ex, err := NewExtractor(testFeatureConfig())
	if err != nil {
		t.Fatalf("NewExtractor failed: %v", err)
	}
	ds, err := LoadDataset(root, ex, LoadOptions{})
	if err != nil {
		t.Fatalf("LoadDataset failed: %v", err)
	}
	if ds.Len() != 1 {
		t.Fatalf("loaded %d samples, want 1 (corrupt file must be excluded)", ds.Len())
	}
	if ds.Labels[0] != "cat" {
		t.Errorf("surviving label = %q, want cat", ds.Labels[0])
	}
	if len(ds.Skipped) != 1 {
		t.Fatalf("recorded %d skipped files, want 1", len(ds.Skipped))
	}
	if ds.Skipped[0].Path != corrupt {
		t.Errorf("skipped path = %q, want %q", ds.Skipped[0].Path, corrupt)
	}
	if ds.Skipped[0].Reason == "" {
		t.Error("skipped file has no reason recorded")
	}
}

func TestLoadDatasetSkipsRootLevelFiles(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeWavFixture(t, filepath.Join(root, "cat", "meow.wav"), 300)
	writeWavFixture(t, filepath.Join(root, "stray.wav"), 440)

	ds, err := LoadDataset(root, &fakeSource{}, LoadOptions{})
	if err != nil {
		t.Fatalf("LoadDataset failed: %v", err)
	}
	if ds.Len() != 1 {
		t.Fatalf("loaded %d samples, want 1", ds.Len())
	}
	if len(ds.Skipped) != 1 {
		t.Fatalf("recorded %d skipped files, want 1", len(ds.Skipped))
	}
	if !strings.Contains(ds.Skipped[0].Reason, "dataset root") {
		t.Errorf("skip reason %q should mention the dataset root", ds.Skipped[0].Reason)
	}
}

func TestLoadDatasetIgnoresHiddenDirsAndOtherFiles(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeWavFixture(t, filepath.Join(root, "cat", "meow.wav"), 300)
	writeWavFixture(t, filepath.Join(root, ".cache", "tmp.wav"), 440)
	if err := os.WriteFile(filepath.Join(root, "cat", "notes.txt"), []byte("not audio"), 0644); err != nil {
		t.Fatalf("writing text fixture: %v", err)
	}

	ds, err := LoadDataset(root, &fakeSource{}, LoadOptions{})
	if err != nil {
		t.Fatalf("LoadDataset failed: %v", err)
	}
	if ds.Len() != 1 {
		t.Fatalf("loaded %d samples, want 1", ds.Len())
	}
	if len(ds.Skipped) != 0 {
		t.Errorf("hidden-dir and non-audio files should be ignored silently, got %+v", ds.Skipped)
	}
}

func TestLoadDatasetMissingRoot(t *testing.T) {
	t.Parallel()

	if _, err := LoadDataset(filepath.Join(t.TempDir(), "nope"), &fakeSource{}, LoadOptions{}); err == nil {
		t.Fatal("LoadDataset should fail on a missing root")
	}
}

func TestLoadDatasetEmptyRootIsNotAnError(t *testing.T) {
	t.Parallel()

	ds, err := LoadDataset(t.TempDir(), &fakeSource{}, LoadOptions{})
	if err != nil {
		t.Fatalf("LoadDataset failed on empty root: %v", err)
	}
	if ds.Len() != 0 {
		t.Fatalf("empty root produced %d samples", ds.Len())
	}
}

func TestLoadDatasetOrderStableAcrossWorkerCounts(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	for _, label := range []string{"alpha", "beta", "gamma"} {
		for i := 0; i < 4; i++ {
			writeWavFixture(t, filepath.Join(root, label, fmt.Sprintf("clip%02d.wav", i)), 300+float64(i)*50)
		}
	}

	serial, err := LoadDataset(root, &fakeSource{}, LoadOptions{Workers: 1})
	if err != nil {
		t.Fatalf("LoadDataset(workers=1) failed: %v", err)
	}
	parallel, err := LoadDataset(root, &fakeSource{}, LoadOptions{Workers: 4})
	if err != nil {
		t.Fatalf("LoadDataset(workers=4) failed: %v", err)
	}
	if serial.Len() != 12 || parallel.Len() != 12 {
		t.Fatalf("loaded %d and %d samples, want 12 each", serial.Len(), parallel.Len())
	}
	for i := range serial.Files {
		if serial.Files[i] != parallel.Files[i] {
			t.Fatalf("file order diverged at %d: %q vs %q", i, serial.Files[i], parallel.Files[i])
		}
		if serial.Labels[i] != parallel.Labels[i] {
			t.Fatalf("label order diverged at %d: %q vs %q", i, serial.Labels[i], parallel.Labels[i])
		}
		for j := range serial.Features[i] {
			if serial.Features[i][j] != parallel.Features[i][j] {
				t.Fatalf("feature row %d diverged between worker counts", i)
			}
		}
	}
}

func TestLoadDatasetFailedExtractionKeepsCollectionsAligned(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeWavFixture(t, filepath.Join(root, "cat", "a.wav"), 300)
	writeWavFixture(t, filepath.Join(root, "cat", "b.wav"), 310)
	writeWavFixture(t, filepath.Join(root, "dog", "c.wav"), 900)

	src := &fakeSource{fail: map[string]bool{"b.wav": true}}
	ds, err := LoadDataset(root, src, LoadOptions{Workers: 2})
	if err != nil {
		t.Fatalf("LoadDataset failed: %v", err)
	}
	if ds.Len() != 2 {
		t.Fatalf("loaded %d samples, want 2", ds.Len())
	}
	if len(ds.Features) != len(ds.Labels) || len(ds.Labels) != len(ds.Files) {
		t.Fatalf("collections out of sync after a failure: %d/%d/%d",
			len(ds.Features), len(ds.Labels), len(ds.Files))
	}
	if len(ds.Skipped) != 1 || filepath.Base(ds.Skipped[0].Path) != "b.wav" {
		t.Fatalf("skipped = %+v, want exactly b.wav", ds.Skipped)
	}
	for _, f := range ds.Files {
		if filepath.Base(f) == "b.wav" {
			t.Fatal("failed file leaked into the usable set")
		}
	}
}
