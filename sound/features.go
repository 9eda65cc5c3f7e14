package sound

// MFCC Feature Extraction Pipeline
//
// This package turns an audio clip into a fixed-length feature vector
// built from Mel-Frequency Cepstral Coefficients, the standard compact
// description of timbre for audio classification tasks.
//
// Processing Steps:
// 1. Decode: the clip is decoded to mono float samples at the configured
//    rate (see the wav package); resampling happens during decode so the
//    analysis below always sees one fixed rate.
// 2. STFT: the signal is cut into FFTSize-sample frames every HopSize
//    samples, each frame is shaped by a Hann window to reduce spectral
//    leakage, and a real-input FFT produces its spectrum. Inputs shorter
//    than one frame are zero-padded up to a single frame.
// 3. Mel filterbank: the power spectrum of every frame is pooled by
//    MelBands triangular filters spaced evenly on the mel scale, which
//    compresses high frequencies the way human pitch perception does.
// 4. Log compression: filter energies become decibels, flattening the
//    enormous dynamic range of raw audio power.
// 5. DCT: an orthonormal DCT-II decorrelates the log-mel energies; the
//    first NumMFCC coefficients per frame are kept.
// 6. Derivatives: first and second temporal derivatives (deltas and
//    delta-deltas) are estimated with a width-9 regression filter, adding
//    how the timbre is changing to what it currently is.
// 7. Fixed shape: the three blocks are stacked into a 3*NumMFCC-row
//    matrix, cut to the first MaxFrames frames or right-padded with
//    all-zero frames, and flattened row by row. Every successful
//    extraction therefore yields exactly 3*NumMFCC*MaxFrames values.
//
// Frame truncation happens before the derivative filters run, so audio
// past the cutoff can never influence any element of the output.
//
// The extractor is safe for concurrent use: the immutable window, mel
// bank and DCT basis are shared, while FFT plans and scratch buffers are
// pooled per goroutine.

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"sync"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"

	"sound-classification/wav"
)

// FeatureConfig controls every tunable parameter of the extraction
// pipeline.
type FeatureConfig struct {
	SampleRate int     // decode rate in Hz; all files are resampled to this
	NumMFCC    int     // cepstral coefficients kept per frame
	MaxFrames  int     // fixed frame count of the output (truncate or pad)
	FFTSize    int     // analysis window length in samples
	HopSize    int     // samples between successive frames
	MelBands   int     // triangular filters in the mel bank
	MinFreqHz  float64 // lower edge of the mel bank
	MaxFreqHz  float64 // upper edge of the mel bank (0 = Nyquist)
}

// DefaultFeatureConfig returns the standard extraction parameters used
// when the caller does not override anything.
func DefaultFeatureConfig() FeatureConfig {
	return FeatureConfig{
		SampleRate: 22050,
		NumMFCC:    13,
		MaxFrames:  1000,
		FFTSize:    2048,
		HopSize:    512,
		MelBands:   128,
	}
}

// VectorLength returns the length of every extracted feature vector:
// NumMFCC rows each for the base coefficients, the deltas and the
// delta-deltas, times MaxFrames columns.
func (c FeatureConfig) VectorLength() int {
	return 3 * c.NumMFCC * c.MaxFrames
}

func (c FeatureConfig) validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("sample rate must be positive, got %d", c.SampleRate)
	}
	if c.NumMFCC <= 0 {
		return fmt.Errorf("number of MFCCs must be positive, got %d", c.NumMFCC)
	}
	if c.MaxFrames <= 0 {
		return fmt.Errorf("max frames must be positive, got %d", c.MaxFrames)
	}
	if c.FFTSize <= 1 {
		return fmt.Errorf("FFT size must be greater than 1, got %d", c.FFTSize)
	}
	if c.HopSize <= 0 {
		return fmt.Errorf("hop size must be positive, got %d", c.HopSize)
	}
	if c.MelBands < c.NumMFCC {
		return fmt.Errorf("mel bands (%d) must be at least the number of MFCCs (%d)", c.MelBands, c.NumMFCC)
	}
	if c.MinFreqHz < 0 {
		return fmt.Errorf("min frequency must not be negative, got %g", c.MinFreqHz)
	}
	nyquist := float64(c.SampleRate) / 2
	maxFreq := c.MaxFreqHz
	if maxFreq == 0 {
		maxFreq = nyquist
	}
	if maxFreq > nyquist {
		return fmt.Errorf("max frequency %g exceeds Nyquist %g", maxFreq, nyquist)
	}
	if maxFreq <= c.MinFreqHz {
		return fmt.Errorf("max frequency %g must exceed min frequency %g", maxFreq, c.MinFreqHz)
	}
	return nil
}

// Extractor computes feature vectors for audio clips. Create one with
// NewExtractor and reuse it; the filterbank and DCT basis are built once.
type Extractor struct {
	cfg     FeatureConfig
	window  []float64
	melBank [][]float64 // MelBands filters over FFTSize/2+1 bins
	dct     [][]float64 // NumMFCC basis rows over MelBands inputs
	plans   sync.Pool   // *fftPlan; FFT plans are not safe for shared use
}

type fftPlan struct {
	fft    *fourier.FFT
	frame  []float64
	coeffs []complex128
	power  []float64
	logMel []float64
}

// NewExtractor validates cfg and precomputes the analysis tables.
func NewExtractor(cfg FeatureConfig) (*Extractor, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid feature config: %w", err)
	}
	e := &Extractor{
		cfg:     cfg,
		window:  hannWindow(cfg.FFTSize),
		melBank: melFilterbank(cfg),
		dct:     dctBasis(cfg.NumMFCC, cfg.MelBands),
	}
	e.plans.New = func() any {
		return &fftPlan{
			fft:    fourier.NewFFT(cfg.FFTSize),
			frame:  make([]float64, cfg.FFTSize),
			coeffs: make([]complex128, cfg.FFTSize/2+1),
			power:  make([]float64, cfg.FFTSize/2+1),
			logMel: make([]float64, cfg.MelBands),
		}
	}
	return e, nil
}

// Config returns the configuration the extractor was built with.
func (e *Extractor) Config() FeatureConfig { return e.cfg }

// VectorLength returns the length of every vector this extractor
// produces.
func (e *Extractor) VectorLength() int { return e.cfg.VectorLength() }

// logFloor keeps silent mel bands out of log10's singularity; it matches
// a -100 dB floor.
const logFloor = 1e-10

// ExtractVector computes the feature vector for mono samples at the
// configured rate. The returned slice always has VectorLength elements.
func (e *Extractor) ExtractVector(samples []float64) ([]float64, error) {
	if len(samples) == 0 {
		return nil, errors.New("no samples provided")
	}
	cfg := e.cfg

	if len(samples) < cfg.FFTSize {
		padded := make([]float64, cfg.FFTSize)
		copy(padded, samples)
		samples = padded
	}
	numFrames := 1 + (len(samples)-cfg.FFTSize)/cfg.HopSize
	if numFrames > cfg.MaxFrames {
		// Samples past this point never touch the output.
		numFrames = cfg.MaxFrames
	}

	plan := e.plans.Get().(*fftPlan)
	defer e.plans.Put(plan)

	// Coefficient-major layout: mfcc[c][t], so the derivative filters run
	// along time with unit stride.
	mfcc := newMatrix(cfg.NumMFCC, numFrames)
	for t := 0; t < numFrames; t++ {
		offset := t * cfg.HopSize
		for i := 0; i < cfg.FFTSize; i++ {
			plan.frame[i] = samples[offset+i] * e.window[i]
		}
		plan.fft.Coefficients(plan.coeffs, plan.frame)
		for k, c := range plan.coeffs {
			plan.power[k] = real(c)*real(c) + imag(c)*imag(c)
		}
		for m, filter := range e.melBank {
			energy := floats.Dot(filter, plan.power)
			if energy < logFloor {
				energy = logFloor
			}
			plan.logMel[m] = 10 * math.Log10(energy)
		}
		for c, basis := range e.dct {
			mfcc[c][t] = floats.Dot(basis, plan.logMel)
		}
	}

	delta := deltaMatrix(mfcc)
	delta2 := deltaMatrix(delta)

	// The zero value doubles as frame padding: rows are copied over only
	// their first numFrames columns.
	vec := make([]float64, cfg.VectorLength())
	stride := cfg.MaxFrames
	for c := 0; c < cfg.NumMFCC; c++ {
		copy(vec[c*stride:], mfcc[c])
		copy(vec[(cfg.NumMFCC+c)*stride:], delta[c])
		copy(vec[(2*cfg.NumMFCC+c)*stride:], delta2[c])
	}
	return vec, nil
}

// ExtractFile decodes path and extracts its feature vector. Decode and
// extraction failures are returned to the caller as data about the file;
// they are never fatal to a run.
func (e *Extractor) ExtractFile(path string) ([]float64, error) {
	samples, err := wav.DecodeFile(path, e.cfg.SampleRate)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return e.ExtractVector(samples)
}

// deltaHalfWidth is the half-width of the derivative regression filter
// (full window 2*deltaHalfWidth+1 frames).
const deltaHalfWidth = 4

// deltaMatrix estimates the temporal derivative of every row.
func deltaMatrix(m [][]float64) [][]float64 {
	out := make([][]float64, len(m))
	for i, row := range m {
		out[i] = deltaSeries(row)
	}
	return out
}

// deltaSeries runs a least-squares slope estimate over a sliding window,
// replicating the edge values beyond both ends of the series.
func deltaSeries(row []float64) []float64 {
	out := make([]float64, len(row))
	var norm float64
	for n := 1; n <= deltaHalfWidth; n++ {
		norm += 2 * float64(n) * float64(n)
	}
	for t := range row {
		var acc float64
		for n := 1; n <= deltaHalfWidth; n++ {
			acc += float64(n) * (edgeAt(row, t+n) - edgeAt(row, t-n))
		}
		out[t] = acc / norm
	}
	return out
}

// edgeAt reads row[i] with edge replication beyond both ends.
func edgeAt(row []float64, i int) float64 {
	if i < 0 {
		return row[0]
	}
	if i >= len(row) {
		return row[len(row)-1]
	}
	return row[i]
}

func hannWindow(n int) []float64 {
	w := make([]float64, n)
	if n == 1 {
		w[0] = 1
		return w
	}
	for i := range w {
		w[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
	}
	return w
}

func hzToMel(hz float64) float64 {
	return 2595 * math.Log10(1+hz/700)
}

func melToHz(mel float64) float64 {
	return 700 * (math.Pow(10, mel/2595) - 1)
}

// melFilterbank builds MelBands triangular filters over the FFT bins.
// Filter edges are spaced evenly on the mel scale between MinFreqHz and
// MaxFreqHz.
func melFilterbank(cfg FeatureConfig) [][]float64 {
	numBins := cfg.FFTSize/2 + 1
	maxFreq := cfg.MaxFreqHz
	if maxFreq <= 0 {
		maxFreq = float64(cfg.SampleRate) / 2
	}
	lowMel := hzToMel(cfg.MinFreqHz)
	highMel := hzToMel(maxFreq)

	// MelBands filters need MelBands+2 edge points.
	edges := make([]float64, cfg.MelBands+2)
	for i := range edges {
		mel := lowMel + (highMel-lowMel)*float64(i)/float64(cfg.MelBands+1)
		edges[i] = melToHz(mel)
	}

	binHz := float64(cfg.SampleRate) / float64(cfg.FFTSize)
	bank := make([][]float64, cfg.MelBands)
	for m := range bank {
		filter := make([]float64, numBins)
		lower, center, upper := edges[m], edges[m+1], edges[m+2]
		for k := 0; k < numBins; k++ {
			freq := float64(k) * binHz
			switch {
			case freq <= lower || freq >= upper:
				// outside the triangle
			case freq <= center:
				if center > lower {
					filter[k] = (freq - lower) / (center - lower)
				}
			default:
				if upper > center {
					filter[k] = (upper - freq) / (upper - center)
				}
			}
		}
		bank[m] = filter
	}
	return bank
}

// dctBasis returns the first numCoeffs rows of the orthonormal DCT-II
// over numInputs points.
func dctBasis(numCoeffs, numInputs int) [][]float64 {
	basis := make([][]float64, numCoeffs)
	scale0 := math.Sqrt(1 / float64(numInputs))
	scale := math.Sqrt(2 / float64(numInputs))
	for k := range basis {
		row := make([]float64, numInputs)
		s := scale
		if k == 0 {
			s = scale0
		}
		for n := range row {
			row[n] = s * math.Cos(math.Pi*float64(k)*(2*float64(n)+1)/(2*float64(numInputs)))
		}
		basis[k] = row
	}
	return basis
}

func newMatrix(rows, cols int) [][]float64 {
	m := make([][]float64, rows)
	for i := range m {
		m[i] = make([]float64, cols)
	}
	return m
}
