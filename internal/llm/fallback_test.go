package llm_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"scenevox/internal/llm"
)

type fakeClient struct {
	name     string
	reply    string
	err      error
	audioErr error
	calls    int
}

func (f *fakeClient) Name() string { return f.name }

func (f *fakeClient) Complete(context.Context, string, string, string) (string, error) {
	f.calls++
	return f.reply, f.err
}

func (f *fakeClient) CompleteAudio(context.Context, string, string, []byte) (string, error) {
	f.calls++
	if f.audioErr != nil {
		return "", f.audioErr
	}
	return f.reply, f.err
}

func TestFallback_PrimaryWins(t *testing.T) {
	t.Parallel()
	primary := &fakeClient{name: "a", reply: "print(1)"}
	secondary := &fakeClient{name: "b", reply: "print(2)"}

	out, err := llm.NewFallback(primary, secondary).Complete(context.Background(), "m", "s", "u")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "print(1)" {
		t.Errorf("reply = %q, want primary reply", out)
	}
	if secondary.calls != 0 {
		t.Error("secondary should not be called when primary succeeds")
	}
}

func TestFallback_SecondaryOnPrimaryError(t *testing.T) {
	t.Parallel()
	primary := &fakeClient{name: "a", err: errors.New("quota exceeded")}
	secondary := &fakeClient{name: "b", reply: "print(2)"}

	out, err := llm.NewFallback(primary, secondary).Complete(context.Background(), "m", "s", "u")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "print(2)" {
		t.Errorf("reply = %q, want secondary reply", out)
	}
}

func TestFallback_AllFail_JoinsErrors(t *testing.T) {
	t.Parallel()
	primary := &fakeClient{name: "a", err: errors.New("boom-a")}
	secondary := &fakeClient{name: "b", err: errors.New("boom-b")}

	_, err := llm.NewFallback(primary, secondary).Complete(context.Background(), "m", "s", "u")
	if err == nil {
		t.Fatal("expected error when all providers fail")
	}
	for _, want := range []string{"boom-a", "boom-b"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("joined error should contain %q, got: %v", want, err)
		}
	}
}

func TestFallback_AudioSkipsTextOnlyClients(t *testing.T) {
	t.Parallel()
	textOnly := &fakeClient{name: "a", audioErr: llm.ErrAudioUnsupported}
	audio := &fakeClient{name: "b", reply: "print(3)"}

	out, err := llm.NewFallback(textOnly, audio).CompleteAudio(context.Background(), "m", "s", []byte("RIFF"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "print(3)" {
		t.Errorf("reply = %q, want %q", out, "print(3)")
	}
}

func TestFallback_AudioNoCapableClient(t *testing.T) {
	t.Parallel()
	textOnly := &fakeClient{name: "a", audioErr: llm.ErrAudioUnsupported}

	_, err := llm.NewFallback(textOnly).CompleteAudio(context.Background(), "m", "s", nil)
	if !errors.Is(err, llm.ErrAudioUnsupported) {
		t.Errorf("err = %v, want ErrAudioUnsupported", err)
	}
}
