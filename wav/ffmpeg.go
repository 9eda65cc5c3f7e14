package wav

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// CheckFFmpegAvailable reports whether the ffmpeg binary can be found on
// the PATH.
func CheckFFmpegAvailable() error {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return fmt.Errorf("ffmpeg not found in PATH: %w", err)
	}
	return nil
}

// DecodeToMono decodes any container ffmpeg understands into mono
// float64 samples at the requested rate. Decoding happens in a single
// subprocess: ffmpeg downmixes, resamples and streams raw 32-bit floats
// to stdout, so no intermediate file is written.
func DecodeToMono(path string, sampleRate int) ([]float64, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate %d", sampleRate)
	}

	cmd := exec.Command("ffmpeg",
		"-hide_banner", "-v", "error",
		"-i", path,
		"-ac", "1",
		"-ar", strconv.Itoa(sampleRate),
		"-f", "f32le",
		"pipe:1",
	)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return nil, fmt.Errorf("ffmpeg decode failed: %s", msg)
	}

	raw := stdout.Bytes()
	if len(raw)%4 != 0 {
		raw = raw[:len(raw)-len(raw)%4]
	}
	samples := make([]float64, len(raw)/4)
	for i := range samples {
		bits := binary.LittleEndian.Uint32(raw[i*4 : i*4+4])
		samples[i] = float64(math.Float32frombits(bits))
	}
	return samples, nil
}

// DecodeFile loads an audio file as mono samples at the requested rate.
// Conformant PCM WAV files (mono, 16-bit, matching rate) are parsed
// natively; everything else goes through ffmpeg.
func DecodeFile(path string, sampleRate int) ([]float64, error) {
	if strings.EqualFold(filepath.Ext(path), ".wav") {
		info, err := ReadWavInfo(path)
		if err == nil && info.Channels == 1 && info.SampleRate == sampleRate {
			return WavBytesToSamples(info.Data)
		}
	}
	if err := CheckFFmpegAvailable(); err != nil {
		return nil, fmt.Errorf("cannot decode %s: %w", filepath.Base(path), err)
	}
	return DecodeToMono(path, sampleRate)
}

// ProbeDuration asks ffprobe for the duration of an audio file in
// seconds.
func ProbeDuration(path string) (float64, error) {
	cmd := exec.Command("ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	out, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe failed for %s: %w", filepath.Base(path), err)
	}
	text := strings.TrimSpace(string(out))
	duration, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, fmt.Errorf("unexpected ffprobe output %q: %w", text, err)
	}
	return duration, nil
}
