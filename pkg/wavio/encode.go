package wavio

import (
	"fmt"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// WriteFile encodes mono float32 PCM as a 16-bit single-channel WAV file.
// The file is created (or truncated) at path.
func WriteFile(path string, pcm []float32, sampleRate int) error {
	if len(pcm) == 0 {
		return fmt.Errorf("wavio: no samples to write")
	}
	if sampleRate <= 0 {
		sampleRate = 16000
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("wavio: create %q: %w", path, err)
	}

	enc := wav.NewEncoder(f, sampleRate, 16, 1, 1)

	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           float32ToIntSlice(pcm),
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		enc.Close()
		f.Close()
		return fmt.Errorf("wavio: encode: %w", err)
	}
	if err := enc.Close(); err != nil {
		f.Close()
		return fmt.Errorf("wavio: finalize: %w", err)
	}
	return f.Close()
}

func float32ToIntSlice(pcm []float32) []int {
	out := make([]int, len(pcm))
	for i, v := range pcm {
		s := clamp(float64(v), -1.0, 1.0) * 32767.0
		out[i] = int(math.Round(s))
	}
	return out
}
