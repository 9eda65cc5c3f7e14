package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/bogem/id3v2"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	"sound-classification/sound"
	"sound-classification/wav"
)

// ClipInfo describes one audio file found in the dataset.
type ClipInfo struct {
	Path     string  `json:"path"`
	Label    string  `json:"label"`
	SizeKB   float64 `json:"sizeKb"`
	Duration float64 `json:"durationSeconds,omitempty"`
	RMS      float64 `json:"rms,omitempty"`
	SNRDb    float64 `json:"snrDb,omitempty"`
	Title    string  `json:"title,omitempty"`
	Artist   string  `json:"artist,omitempty"`
	Err      string  `json:"error,omitempty"`
}

// Config holds inspection configuration
type Config struct {
	DataDir    string
	SampleRate int
	Analyze    bool
	OutputPath string
}

func main() {
	config := parseFlags()

	log.SetFlags(log.Ldate | log.Ltime)
	log.Printf("=== Dataset Inspection ===\n")
	log.Printf("Dataset: %s\n", config.DataDir)
	log.Println()

	subdirs, err := discoverSubdirectories(config.DataDir)
	if err != nil {
		log.Fatalf("ERROR: Failed to read dataset directory: %v", err)
	}
	if len(subdirs) == 0 {
		log.Fatalf("ERROR: No label subdirectories found in %s", config.DataDir)
	}

	var paths []string
	labels := make(map[string]string)
	for _, dir := range subdirs {
		files, err := collectAudioFiles(dir)
		if err != nil {
			log.Printf("WARNING: Failed to read %s: %v\n", dir, err)
			continue
		}
		for _, f := range files {
			paths = append(paths, f)
			labels[f] = filepath.Base(dir)
		}
	}
	if len(paths) == 0 {
		log.Fatalf("ERROR: No audio files found under %s", config.DataDir)
	}

	var bar *mpb.Bar
	var progress *mpb.Progress
	if config.Analyze {
		progress = mpb.New(mpb.WithWidth(64))
		bar = progress.AddBar(int64(len(paths)),
			mpb.PrependDecorators(
				decor.Name("Inspecting clips  "),
				decor.CountersNoUnit("%d / %d"),
			),
			mpb.AppendDecorators(decor.Percentage()),
		)
	}

	clips := make([]ClipInfo, 0, len(paths))
	for _, path := range paths {
		clips = append(clips, inspectClip(path, labels[path], config))
		if bar != nil {
			bar.Increment()
		}
	}
	if progress != nil {
		progress.Wait()
	}

	printSummary(clips, subdirs)

	if config.OutputPath != "" {
		if err := saveClipInfos(clips, config.OutputPath); err != nil {
			log.Printf("WARNING: Failed to save inspection output: %v\n", err)
		} else {
			log.Printf("Inspection data saved to: %s\n", config.OutputPath)
		}
	}
}

func parseFlags() Config {
	config := Config{}

	flag.StringVar(&config.DataDir, "data", "",
		"Dataset root with one subdirectory per class label")
	flag.IntVar(&config.SampleRate, "sample-rate", 22050,
		"Decode sample rate for -analyze")
	flag.BoolVar(&config.Analyze, "analyze", false,
		"Decode every clip and measure RMS level and SNR")
	flag.StringVar(&config.OutputPath, "out", "",
		"Optional JSON output path for the inspection data")

	flag.Parse()

	if config.DataDir == "" {
		log.Fatalf("ERROR: No dataset root given. Pass -data.")
	}
	if _, err := os.Stat(config.DataDir); os.IsNotExist(err) {
		log.Fatalf("ERROR: Dataset root does not exist: %s", config.DataDir)
	}

	return config
}

func discoverSubdirectories(rootDir string) ([]string, error) {
	entries, err := os.ReadDir(rootDir)
	if err != nil {
		return nil, err
	}

	var subdirs []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		// Skip hidden directories
		if strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		subdirs = append(subdirs, filepath.Join(rootDir, entry.Name()))
	}

	return subdirs, nil
}

func collectAudioFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext == ".wav" || ext == ".mp3" {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}

	return files, nil
}

func inspectClip(path, label string, config Config) ClipInfo {
	info := ClipInfo{Path: path, Label: label}

	stat, err := os.Stat(path)
	if err != nil {
		info.Err = err.Error()
		return info
	}
	info.SizeKB = float64(stat.Size()) / 1024

	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		if wavInfo, err := wav.ReadWavInfo(path); err == nil {
			info.Duration = wavInfo.Duration
		} else if !config.Analyze {
			info.Err = err.Error()
		}
	case ".mp3":
		// Duration needs a decoder; tags are readable either way.
		if duration, err := wav.ProbeDuration(path); err == nil {
			info.Duration = duration
		}
		if tag, err := id3v2.Open(path, id3v2.Options{Parse: true}); err == nil {
			info.Title = tag.Title()
			info.Artist = tag.Artist()
			tag.Close()
		}
	}

	if config.Analyze {
		samples, err := wav.DecodeFile(path, config.SampleRate)
		if err != nil {
			info.Err = err.Error()
			return info
		}
		if info.Duration == 0 {
			info.Duration = float64(len(samples)) / float64(config.SampleRate)
		}
		info.RMS = sound.RMSLevel(samples)
		if snr, err := sound.EstimateSNR(samples); err == nil {
			info.SNRDb = snr
		}
	}

	return info
}

func printSummary(clips []ClipInfo, subdirs []string) {
	type labelStats struct {
		clips    int
		duration float64
		errors   int
	}
	stats := make(map[string]*labelStats)
	for _, clip := range clips {
		s := stats[clip.Label]
		if s == nil {
			s = &labelStats{}
			stats[clip.Label] = s
		}
		s.clips++
		s.duration += clip.Duration
		if clip.Err != "" {
			s.errors++
		}
	}

	log.Printf("Found %d classes, %d clips total\n", len(stats), len(clips))
	log.Println()
	log.Println("Per-class breakdown:")
	for _, dir := range subdirs {
		label := filepath.Base(dir)
		s := stats[label]
		if s == nil {
			log.Printf("  %-20s: no audio files!\n", label)
			continue
		}
		line := fmt.Sprintf("  %-20s: %3d clips", label, s.clips)
		if s.duration > 0 {
			line += fmt.Sprintf(", %6.1f s audio", s.duration)
		}
		if s.errors > 0 {
			line += fmt.Sprintf(", %d unreadable", s.errors)
		}
		log.Println(line)
	}
	log.Println()

	for _, dir := range subdirs {
		label := filepath.Base(dir)
		if s := stats[label]; s != nil && s.clips < 5 {
			log.Printf("⚠ Class %q has only %d clip(s); expect unstable evaluation numbers\n", label, s.clips)
		}
	}
	var unreadable int
	for _, clip := range clips {
		if clip.Err != "" {
			unreadable++
			log.Printf("✗ %s: %s\n", clip.Path, clip.Err)
		}
	}
	if unreadable == 0 {
		log.Println("✓ Every clip is readable")
	}
}

func saveClipInfos(clips []ClipInfo, path string) error {
	data, err := json.MarshalIndent(clips, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
