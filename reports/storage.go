package reports

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"sound-classification/sound"
	"sound-classification/utils"
)

var mu sync.RWMutex

// reportPath returns where a run's report lives inside dir.
func reportPath(dir, runID string) string {
	return filepath.Join(dir, runID+".json")
}

// Save writes one training report to dir as <runID>.json and returns
// the written path. The write goes through a temp file and rename so a
// crash never leaves a half-written report behind.
func Save(dir string, report *sound.TrainingReport) (string, error) {
	mu.Lock()
	defer mu.Unlock()

	if report.RunID == "" {
		return "", fmt.Errorf("report has no run id")
	}
	if dir != "." && dir != "" {
		if err := utils.CreateFolder(dir); err != nil {
			return "", fmt.Errorf("error creating report directory: %v", err)
		}
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("error marshaling report: %v", err)
	}

	finalPath := reportPath(dir, report.RunID)
	tmpPath := finalPath + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return "", fmt.Errorf("error writing report file: %v", err)
	}
	if err := os.Rename(tmpPath, finalPath); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("error finalizing report file: %v", err)
	}

	return finalPath, nil
}

// Load reads one run's report back from dir.
func Load(dir, runID string) (*sound.TrainingReport, error) {
	mu.RLock()
	defer mu.RUnlock()

	data, err := os.ReadFile(reportPath(dir, runID))
	if err != nil {
		return nil, fmt.Errorf("error reading report file: %v", err)
	}

	var report sound.TrainingReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("error unmarshaling report: %v", err)
	}

	return &report, nil
}

// List returns the run ids with a report in dir, sorted. A missing
// directory is just an empty list.
func List(dir string) ([]string, error) {
	mu.RLock()
	defer mu.RUnlock()

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("error reading report directory: %v", err)
	}

	var ids []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ".json"))
	}
	sort.Strings(ids)
	return ids, nil
}
