// Package audio owns the capture side of push-to-talk: a portaudio input
// stream and the ducking of other desktop audio while it runs.
package audio

import (
	"errors"
	"time"

	"github.com/gordonklaus/portaudio"
)

// SampleRate is the capture rate; the remote endpoint and the local whisper
// transcriber both expect mono 16 kHz.
const SampleRate = 16000

const frameSize = 1024

type Recorder struct{}

func NewRecorder() *Recorder { return &Recorder{} }

func (r *Recorder) Init() error {
	return portaudio.Initialize()
}

func (r *Recorder) Close() {
	portaudio.Terminate()
}

// Record captures mono float32 PCM until stop is closed or maxDur elapses,
// whichever comes first. The buffer is bounded by maxDur, so a forgotten
// toggle cannot grow without limit.
func (r *Recorder) Record(stop <-chan struct{}, maxDur time.Duration) ([]float32, error) {
	if maxDur <= 0 {
		maxDur = 2 * time.Minute
	}

	buf := make([]float32, frameSize)

	stream, err := portaudio.OpenDefaultStream(
		1, // mono input
		0, // no output
		float64(SampleRate),
		len(buf),
		buf,
	)
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return nil, err
	}
	defer stream.Stop()

	maxSamples := int(float64(SampleRate) * maxDur.Seconds())
	deadline := time.Now().Add(maxDur)
	out := make([]float32, 0, maxSamples)

	for {
		if time.Now().After(deadline) || len(out) >= maxSamples {
			break
		}

		select {
		case <-stop:
			if len(out) == 0 {
				return nil, errors.New("no audio recorded")
			}
			return out, nil
		default:
		}

		if err := stream.Read(); err != nil {
			return nil, err
		}

		out = append(out, buf...)
	}

	if len(out) == 0 {
		return nil, errors.New("no audio recorded")
	}

	return out, nil
}
