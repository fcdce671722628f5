package llm_test

import (
	"context"
	"errors"
	"testing"

	"scenevox/internal/llm"
)

func TestGemini_MissingKeyFailsBeforeDialing(t *testing.T) {
	t.Parallel()
	g := llm.NewGemini(func() string { return "" }, nil)

	if _, err := g.Complete(context.Background(), "gemini-3-flash", "", "ping"); !errors.Is(err, llm.ErrMissingKey) {
		t.Errorf("Complete err = %v, want ErrMissingKey", err)
	}
	if _, err := g.CompleteAudio(context.Background(), "gemini-3-flash", "", []byte("RIFF")); !errors.Is(err, llm.ErrMissingKey) {
		t.Errorf("CompleteAudio err = %v, want ErrMissingKey", err)
	}
}

func TestOpenAI_MissingKey(t *testing.T) {
	t.Parallel()
	o := llm.NewOpenAI(func() string { return "" }, "", nil)

	if _, err := o.Complete(context.Background(), "", "sys", "hi"); !errors.Is(err, llm.ErrMissingKey) {
		t.Errorf("Complete err = %v, want ErrMissingKey", err)
	}
	if _, err := o.CompleteAudio(context.Background(), "", "sys", nil); !errors.Is(err, llm.ErrAudioUnsupported) {
		t.Errorf("CompleteAudio err = %v, want ErrAudioUnsupported", err)
	}
}
