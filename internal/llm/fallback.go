package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// Fallback tries each client in order and returns the first success.
// Clients that cannot take audio are skipped on the audio path.
type Fallback struct {
	chain []Client
}

var _ Client = (*Fallback)(nil)

// NewFallback builds a chain from primary followed by rest.
func NewFallback(primary Client, rest ...Client) *Fallback {
	return &Fallback{chain: append([]Client{primary}, rest...)}
}

func (f *Fallback) Name() string { return "fallback" }

func (f *Fallback) Complete(ctx context.Context, model, system, user string) (string, error) {
	var errs []error
	for _, c := range f.chain {
		out, err := c.Complete(ctx, model, system, user)
		if err == nil {
			return out, nil
		}
		slog.Warn("generator failed, trying next", "provider", c.Name(), "err", err)
		errs = append(errs, fmt.Errorf("%s: %w", c.Name(), err))
	}
	return "", errors.Join(errs...)
}

func (f *Fallback) CompleteAudio(ctx context.Context, model, system string, wavData []byte) (string, error) {
	var errs []error
	for _, c := range f.chain {
		out, err := c.CompleteAudio(ctx, model, system, wavData)
		if err == nil {
			return out, nil
		}
		if errors.Is(err, ErrAudioUnsupported) {
			continue
		}
		slog.Warn("audio generator failed, trying next", "provider", c.Name(), "err", err)
		errs = append(errs, fmt.Errorf("%s: %w", c.Name(), err))
	}
	if len(errs) == 0 {
		return "", ErrAudioUnsupported
	}
	return "", errors.Join(errs...)
}
