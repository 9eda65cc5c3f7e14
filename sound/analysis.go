package sound

// Diagnostics for extracted feature vectors and raw audio. These feed
// the inspection tools; nothing here affects training itself.

import (
	"fmt"
	"math"
	"sort"
)

// VectorBlockStats summarizes one block of a stacked feature vector.
type VectorBlockStats struct {
	Name   string  `json:"name"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	Stddev float64 `json:"stddev"`
}

// AnalyzeVectorBlocks splits a feature vector into its mfcc, delta and
// delta2 blocks and summarizes each. Useful for spotting scale
// imbalances between the blocks before training.
func AnalyzeVectorBlocks(vec []float64, cfg FeatureConfig) ([]VectorBlockStats, error) {
	if len(vec) != cfg.VectorLength() {
		return nil, fmt.Errorf("vector has %d values, config expects %d", len(vec), cfg.VectorLength())
	}
	blockSize := cfg.NumMFCC * cfg.MaxFrames
	names := []string{"mfcc", "delta", "delta2"}
	stats := make([]VectorBlockStats, 0, len(names))
	for b, name := range names {
		stats = append(stats, blockStats(name, vec[b*blockSize:(b+1)*blockSize]))
	}
	return stats, nil
}

func blockStats(name string, values []float64) VectorBlockStats {
	stats := VectorBlockStats{
		Name: name,
		Min:  math.Inf(1),
		Max:  math.Inf(-1),
	}
	var sum float64
	for _, v := range values {
		if v < stats.Min {
			stats.Min = v
		}
		if v > stats.Max {
			stats.Max = v
		}
		sum += v
	}
	stats.Mean = sum / float64(len(values))
	var variance float64
	for _, v := range values {
		d := v - stats.Mean
		variance += d * d
	}
	stats.Stddev = math.Sqrt(variance / float64(len(values)))
	return stats
}

// PrintBlockReport renders block statistics as a console table.
func PrintBlockReport(stats []VectorBlockStats) {
	fmt.Println("\n=== Feature Block Analysis ===")
	fmt.Printf("%-10s %12s %12s %12s %12s\n", "Block", "Min", "Max", "Mean", "StdDev")
	for _, s := range stats {
		fmt.Printf("%-10s %12.6f %12.6f %12.6f %12.6f\n", s.Name, s.Min, s.Max, s.Mean, s.Stddev)
	}
}

// ZeroTailFrames counts the trailing frames of a feature vector that are
// zero across every stacked row, i.e. the padding a short clip received.
func ZeroTailFrames(vec []float64, cfg FeatureConfig) (int, error) {
	if len(vec) != cfg.VectorLength() {
		return 0, fmt.Errorf("vector has %d values, config expects %d", len(vec), cfg.VectorLength())
	}
	numRows := 3 * cfg.NumMFCC
	zeroTail := 0
	for t := cfg.MaxFrames - 1; t >= 0; t-- {
		allZero := true
		for row := 0; row < numRows; row++ {
			if vec[row*cfg.MaxFrames+t] != 0 {
				allZero = false
				break
			}
		}
		if !allZero {
			break
		}
		zeroTail++
	}
	return zeroTail, nil
}

// RMSLevel returns the root-mean-square level of raw samples.
func RMSLevel(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		sum += s * s
	}
	return math.Sqrt(sum / float64(len(samples)))
}

// EstimateSNR estimates a signal-to-noise ratio in dB by comparing the
// mean window power against the quietest 10% of windows, which stand in
// for the noise floor. It is a rough number meant for dataset triage,
// not measurement.
func EstimateSNR(samples []float64) (float64, error) {
	const windowSize = 1024
	if len(samples) < windowSize*10 {
		return 0, fmt.Errorf("need at least %d samples to estimate SNR, got %d", windowSize*10, len(samples))
	}
	var powers []float64
	for start := 0; start+windowSize <= len(samples); start += windowSize {
		var p float64
		for _, s := range samples[start : start+windowSize] {
			p += s * s
		}
		powers = append(powers, p/windowSize)
	}
	sort.Float64s(powers)

	noiseCount := len(powers) / 10
	if noiseCount == 0 {
		noiseCount = 1
	}
	var noise float64
	for _, p := range powers[:noiseCount] {
		noise += p
	}
	noise /= float64(noiseCount)

	var signal float64
	for _, p := range powers {
		signal += p
	}
	signal /= float64(len(powers))

	if signal < 1e-12 {
		return 0, fmt.Errorf("signal is effectively silent")
	}
	if noise < 1e-12 {
		noise = 1e-12
	}
	return 10 * math.Log10(signal/noise), nil
}
