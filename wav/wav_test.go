package wav

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func sineSamples(freq float64, sampleRate, n int) []float64 {
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = 0.5 * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate))
	}
	return samples
}

func TestWriteReadRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "tone.wav")
	original := sineSamples(440, 8000, 4000)
	if err := WriteWavFile(path, original, 8000, 1); err != nil {
		t.Fatalf("WriteWavFile: %v", err)
	}

	info, err := ReadWavInfo(path)
	if err != nil {
		t.Fatalf("ReadWavInfo: %v", err)
	}
	if info.Channels != 1 {
		t.Errorf("channels = %d, want 1", info.Channels)
	}
	if info.SampleRate != 8000 {
		t.Errorf("sample rate = %d, want 8000", info.SampleRate)
	}
	if info.BitsPerSample != 16 {
		t.Errorf("bits per sample = %d, want 16", info.BitsPerSample)
	}
	if math.Abs(info.Duration-0.5) > 1e-9 {
		t.Errorf("duration = %f, want 0.5", info.Duration)
	}

	decoded, err := WavBytesToSamples(info.Data)
	if err != nil {
		t.Fatalf("WavBytesToSamples: %v", err)
	}
	if len(decoded) != len(original) {
		t.Fatalf("decoded %d samples, want %d", len(decoded), len(original))
	}
	for i := range decoded {
		if math.Abs(decoded[i]-original[i]) > 1.0/32768 {
			t.Fatalf("sample %d differs beyond quantisation: %f vs %f", i, decoded[i], original[i])
		}
	}
}

func TestWriteWavFileStereo(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "stereo.wav")
	interleaved := sineSamples(440, 8000, 800)
	if err := WriteWavFile(path, interleaved, 8000, 2); err != nil {
		t.Fatalf("WriteWavFile: %v", err)
	}

	info, err := ReadWavInfo(path)
	if err != nil {
		t.Fatalf("ReadWavInfo: %v", err)
	}
	if info.Channels != 2 {
		t.Errorf("channels = %d, want 2", info.Channels)
	}
	// 800 interleaved samples = 400 frames at 8 kHz.
	if math.Abs(info.Duration-0.05) > 1e-9 {
		t.Errorf("duration = %f, want 0.05", info.Duration)
	}
}

func TestWriteWavFileValidation(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	samples := sineSamples(440, 8000, 100)

	if err := WriteWavFile(filepath.Join(dir, "bad.wav"), samples, 0, 1); err == nil {
		t.Error("expected error for zero sample rate")
	}
	if err := WriteWavFile(filepath.Join(dir, "bad.wav"), samples, 8000, 0); err == nil {
		t.Error("expected error for zero channels")
	}
	if err := WriteWavFile(filepath.Join(dir, "bad.wav"), samples[:99], 8000, 2); err == nil {
		t.Error("expected error for odd sample count with 2 channels")
	}
}

func TestReadWavInfoRejectsGarbage(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	tiny := filepath.Join(dir, "tiny.wav")
	if err := os.WriteFile(tiny, []byte("RIFF"), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := ReadWavInfo(tiny); err == nil {
		t.Error("expected error for truncated file")
	}

	notWav := filepath.Join(dir, "not.wav")
	if err := os.WriteFile(notWav, []byte("this is definitely not a wave file"), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := ReadWavInfo(notWav); err == nil {
		t.Error("expected error for non-RIFF file")
	}

	if _, err := ReadWavInfo(filepath.Join(dir, "missing.wav")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestWavBytesToSamplesValidation(t *testing.T) {
	t.Parallel()

	if _, err := WavBytesToSamples(nil); err == nil {
		t.Error("expected error for empty data")
	}
	if _, err := WavBytesToSamples([]byte{0x01, 0x02, 0x03}); err == nil {
		t.Error("expected error for odd-length data")
	}

	// 0x8000 is the most negative 16-bit sample.
	samples, err := WavBytesToSamples([]byte{0x00, 0x80, 0xFF, 0x7F})
	if err != nil {
		t.Fatalf("WavBytesToSamples: %v", err)
	}
	if samples[0] != -1.0 {
		t.Errorf("samples[0] = %f, want -1.0", samples[0])
	}
	if math.Abs(samples[1]-32767.0/32768.0) > 1e-12 {
		t.Errorf("samples[1] = %f, want ~0.99997", samples[1])
	}
}

func TestDecodeFileNativePath(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "native.wav")
	original := sineSamples(440, 8000, 2000)
	if err := WriteWavFile(path, original, 8000, 1); err != nil {
		t.Fatalf("WriteWavFile: %v", err)
	}

	// A conformant mono WAV at the requested rate must decode without
	// ffmpeg being installed.
	decoded, err := DecodeFile(path, 8000)
	if err != nil {
		t.Fatalf("DecodeFile: %v", err)
	}
	if len(decoded) != len(original) {
		t.Fatalf("decoded %d samples, want %d", len(decoded), len(original))
	}
}

func TestDecodeFileGarbageFails(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "broken.mp3")
	if err := os.WriteFile(path, []byte("not an mp3 file at all"), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	// Fails whether or not ffmpeg is installed: without it the decode is
	// impossible, with it the bytes are rejected.
	if _, err := DecodeFile(path, 8000); err == nil {
		t.Error("expected error for garbage mp3 bytes")
	}
}

func TestDecodeFileResamples(t *testing.T) {
	t.Parallel()

	if err := CheckFFmpegAvailable(); err != nil {
		t.Skipf("skipping: %v", err)
	}

	path := filepath.Join(t.TempDir(), "rate.wav")
	if err := WriteWavFile(path, sineSamples(440, 16000, 16000), 16000, 1); err != nil {
		t.Fatalf("WriteWavFile: %v", err)
	}

	decoded, err := DecodeFile(path, 8000)
	if err != nil {
		t.Fatalf("DecodeFile: %v", err)
	}
	// One second of audio resampled to 8 kHz.
	if len(decoded) < 7900 || len(decoded) > 8100 {
		t.Errorf("resampled length = %d, want ~8000", len(decoded))
	}
}
