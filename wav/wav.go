package wav

// WAV file handling
//
// This package reads and writes PCM WAVE files and decodes other audio
// containers through FFmpeg (see ffmpeg.go). The native parser covers
// the common case of 16-bit PCM RIFF files so datasets of conformant WAV
// clips can be processed without any external tooling; everything else
// (MP3 in particular, plus WAV files at the wrong rate or channel count)
// is resampled and downmixed by an ffmpeg subprocess.

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
)

// WavInfo describes a parsed WAVE file. Data holds the raw bytes of the
// data chunk, still in their on-disk sample encoding.
type WavInfo struct {
	Channels      int
	SampleRate    int
	BitsPerSample int
	Duration      float64
	Data          []byte
}

const riffHeaderSize = 12

// ReadWavInfo parses path as a 16-bit PCM WAVE file. Files in any other
// encoding (float, ADPCM, 8/24/32-bit) return an error; callers fall
// back to FFmpeg for those.
func ReadWavInfo(path string) (*WavInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if len(data) < riffHeaderSize {
		return nil, errors.New("file too small to be a WAV file")
	}
	if string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, errors.New("not a RIFF/WAVE file")
	}

	info := &WavInfo{}
	sawFmt := false
	offset := riffHeaderSize
	for offset+8 <= len(data) {
		chunkID := string(data[offset : offset+4])
		chunkSize := int(binary.LittleEndian.Uint32(data[offset+4 : offset+8]))
		body := offset + 8
		if body+chunkSize > len(data) {
			return nil, fmt.Errorf("chunk %q extends past end of file", chunkID)
		}

		switch chunkID {
		case "fmt ":
			if chunkSize < 16 {
				return nil, errors.New("fmt chunk too small")
			}
			audioFormat := binary.LittleEndian.Uint16(data[body : body+2])
			if audioFormat != 1 {
				return nil, fmt.Errorf("unsupported audio format %d (only PCM is parsed natively)", audioFormat)
			}
			info.Channels = int(binary.LittleEndian.Uint16(data[body+2 : body+4]))
			info.SampleRate = int(binary.LittleEndian.Uint32(data[body+4 : body+8]))
			info.BitsPerSample = int(binary.LittleEndian.Uint16(data[body+14 : body+16]))
			sawFmt = true
		case "data":
			info.Data = data[body : body+chunkSize]
		}

		// Chunks are word-aligned; odd sizes carry a pad byte.
		offset = body + chunkSize
		if chunkSize%2 == 1 {
			offset++
		}
	}

	if !sawFmt {
		return nil, errors.New("missing fmt chunk")
	}
	if info.Data == nil {
		return nil, errors.New("missing data chunk")
	}
	if info.Channels <= 0 || info.SampleRate <= 0 {
		return nil, fmt.Errorf("invalid format: %d channels at %d Hz", info.Channels, info.SampleRate)
	}
	if info.BitsPerSample != 16 {
		return nil, fmt.Errorf("unsupported bit depth %d (only 16-bit is parsed natively)", info.BitsPerSample)
	}

	bytesPerFrame := info.Channels * 2
	info.Duration = float64(len(info.Data)) / float64(bytesPerFrame) / float64(info.SampleRate)
	return info, nil
}

// WavBytesToSamples converts raw 16-bit little-endian PCM bytes into
// float64 samples in [-1, 1). Multi-channel data stays interleaved.
func WavBytesToSamples(data []byte) ([]float64, error) {
	if len(data) == 0 {
		return nil, errors.New("no PCM data")
	}
	if len(data)%2 != 0 {
		return nil, errors.New("PCM data length is not a multiple of the sample size")
	}

	samples := make([]float64, len(data)/2)
	for i := range samples {
		sample := int16(binary.LittleEndian.Uint16(data[i*2 : i*2+2]))
		samples[i] = float64(sample) / 32768.0
	}
	return samples, nil
}

// WriteWavFile writes samples as a 16-bit PCM WAVE file. Samples are
// expected in [-1, 1] and are clipped to that range; multi-channel data
// must be interleaved.
func WriteWavFile(path string, samples []float64, sampleRate, channels int) error {
	if sampleRate <= 0 {
		return fmt.Errorf("invalid sample rate %d", sampleRate)
	}
	if channels <= 0 {
		return fmt.Errorf("invalid channel count %d", channels)
	}
	if len(samples)%channels != 0 {
		return fmt.Errorf("sample count %d is not a multiple of %d channels", len(samples), channels)
	}

	dataSize := len(samples) * 2
	buf := make([]byte, 44+dataSize)

	copy(buf[0:4], "RIFF")
	binary.LittleEndian.PutUint32(buf[4:8], uint32(36+dataSize))
	copy(buf[8:12], "WAVE")

	copy(buf[12:16], "fmt ")
	binary.LittleEndian.PutUint32(buf[16:20], 16) // PCM fmt chunk size
	binary.LittleEndian.PutUint16(buf[20:22], 1)  // PCM
	binary.LittleEndian.PutUint16(buf[22:24], uint16(channels))
	binary.LittleEndian.PutUint32(buf[24:28], uint32(sampleRate))
	byteRate := sampleRate * channels * 2
	binary.LittleEndian.PutUint32(buf[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(buf[32:34], uint16(channels*2)) // block align
	binary.LittleEndian.PutUint16(buf[34:36], 16)                 // bits per sample

	copy(buf[36:40], "data")
	binary.LittleEndian.PutUint32(buf[40:44], uint32(dataSize))

	for i, sample := range samples {
		clipped := math.Max(-1, math.Min(1, sample))
		value := int16(math.Round(clipped * 32767))
		binary.LittleEndian.PutUint16(buf[44+i*2:46+i*2], uint16(value))
	}

	if err := os.WriteFile(path, buf, 0644); err != nil {
		return fmt.Errorf("failed to write WAV file: %w", err)
	}
	return nil
}
