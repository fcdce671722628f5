package wavio

import (
	"context"
	"math"
	"path/filepath"
	"testing"
)

func sine(n int, freq float64, sr int) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = float32(0.5 * math.Sin(2*math.Pi*freq*float64(i)/float64(sr)))
	}
	return out
}

func TestWriteFileThenDecode(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "capture.wav")
	in := sine(16000, 440, 16000) // one second

	if err := WriteFile(path, in, 16000); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	out, err := DecodeFileToPCM16k(context.Background(), path, Options{})
	if err != nil {
		t.Fatalf("DecodeFileToPCM16k: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("decoded %d samples, want %d", len(out), len(in))
	}
	for i := 0; i < len(in); i += 997 {
		if diff := math.Abs(float64(out[i] - in[i])); diff > 0.001 {
			t.Fatalf("sample %d differs by %f", i, diff)
		}
	}
}

func TestWriteFile_Empty(t *testing.T) {
	t.Parallel()
	if err := WriteFile(filepath.Join(t.TempDir(), "x.wav"), nil, 16000); err == nil {
		t.Error("expected error for empty PCM")
	}
}

func TestDecode_MaxSamples(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "long.wav")
	if err := WriteFile(path, sine(32000, 220, 16000), 16000); err != nil {
		t.Fatal(err)
	}
	out, err := DecodeFileToPCM16k(context.Background(), path, Options{MaxSamples: 1000})
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 1000 {
		t.Errorf("len = %d, want capped at 1000", len(out))
	}
}

func TestDownmixInterleaved(t *testing.T) {
	t.Parallel()
	in := []float32{1, 0, 0.5, 0.5, -1, 1}
	out := downmixInterleaved(in, 2)
	want := []float32{0.5, 0.5, 0}
	if len(out) != len(want) {
		t.Fatalf("len = %d, want %d", len(out), len(want))
	}
	for i := range want {
		if math.Abs(float64(out[i]-want[i])) > 1e-6 {
			t.Errorf("frame %d = %f, want %f", i, out[i], want[i])
		}
	}
}

func TestResampleLinear_Lengths(t *testing.T) {
	t.Parallel()
	in := sine(44100, 440, 44100)
	out := resampleLinear(in, 44100, 16000)
	if got, want := len(out), 16000; got < want-2 || got > want+2 {
		t.Errorf("resampled length = %d, want ~%d", got, want)
	}
	same := resampleLinear(in, 16000, 16000)
	if len(same) != len(in) {
		t.Error("equal rates should be a no-op")
	}
}
