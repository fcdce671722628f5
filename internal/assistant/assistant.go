// Package assistant wires prompts, capture, generation, the script guard and
// the host bridge into the operations exposed over IPC.
package assistant

import (
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"os"
	"sync"
	"time"

	"scenevox/internal/audio"
	"scenevox/internal/config"
	"scenevox/internal/guard"
	"scenevox/internal/llm"
	"scenevox/internal/session"
	"scenevox/pkg/wavio"
)

// Executor sends a guarded script to the host application. A nil Executor
// puts the assistant in dry-run mode: scripts are reported, not executed.
type Executor interface {
	Execute(ctx context.Context, code string) (string, error)
}

// Recorder captures mono 16 kHz PCM until stop is closed or maxDur elapses.
type Recorder interface {
	Record(stop <-chan struct{}, maxDur time.Duration) ([]float32, error)
}

// TranscribeFunc turns captured PCM into the user-side transcript text.
type TranscribeFunc func(ctx context.Context, pcm []float32) (string, error)

// ErrMissingKey is reported before any network traffic when no API key could
// be resolved from the environment, the env file or the config.
var ErrMissingKey = errors.New("no API key configured (set GEMINI_API_KEY)")

const voicePlaceholder = "[voice prompt]"

type recResult struct {
	pcm []float32
	err error
}

// Assistant is the daemon's single orchestrator. All methods are safe for
// concurrent use; at most one recording is in flight at a time.
type Assistant struct {
	cfg   *config.Config
	sess  *session.Session
	gen   llm.Client
	guard *guard.Guard
	exec  Executor

	rec        Recorder
	transcribe TranscribeFunc

	// Optional cue hooks, invoked outside any lock.
	OnRecordStart func()
	OnRecordStop  func()

	// tmpDir overrides the temp directory for WAV artifacts; tests use it.
	tmpDir string

	mu       sync.Mutex
	stopCh   chan struct{}
	resultCh chan recResult
}

func New(cfg *config.Config, sess *session.Session, gen llm.Client, g *guard.Guard, exec Executor, rec Recorder, transcribe TranscribeFunc) *Assistant {
	return &Assistant{
		cfg:        cfg,
		sess:       sess,
		gen:        gen,
		guard:      g,
		exec:       exec,
		rec:        rec,
		transcribe: transcribe,
	}
}

func (a *Assistant) Session() *session.Session { return a.sess }

// Probe sends the fixed ping prompt and records the outcome in the session.
// The status always reflects this most recent probe only.
func (a *Assistant) Probe(ctx context.Context) error {
	if a.cfg.ResolveAPIKey() == "" {
		a.sess.SetStatus(session.StatusFailed, ErrMissingKey.Error())
		return ErrMissingKey
	}

	_, err := a.gen.Complete(ctx, string(a.sess.Model()), "", llm.ProbePrompt)
	if err != nil {
		a.sess.SetStatus(session.StatusFailed, err.Error())
		return err
	}

	a.sess.SetStatus(session.StatusSuccess, "")
	return nil
}

// RunPrompt generates a script for the free-text prompt and runs it through
// the guard and the host bridge. The returned string is the host output, or
// the script itself in dry-run mode.
func (a *Assistant) RunPrompt(ctx context.Context, prompt string) (string, error) {
	if a.cfg.ResolveAPIKey() == "" {
		return "", ErrMissingKey
	}
	if prompt == "" {
		return "", errors.New("empty prompt")
	}

	reply, err := a.gen.Complete(ctx, string(a.sess.Model()), llm.ScriptInstruction, prompt)
	if err != nil {
		return "", err
	}

	return a.runScript(ctx, prompt, reply)
}

// ToggleRecording starts push-to-talk capture when idle and finishes it when
// recording, mirroring a single hardware button.
func (a *Assistant) ToggleRecording(ctx context.Context) (string, error) {
	if a.sess.Recording() {
		return a.StopRecording(ctx)
	}
	if err := a.StartRecording(); err != nil {
		return "", err
	}
	return "recording", nil
}

// StartRecording opens the microphone in a background goroutine. It fails
// when a recording is already in flight.
func (a *Assistant) StartRecording() error {
	if a.rec == nil {
		return errors.New("no recorder available")
	}

	a.mu.Lock()
	if !a.sess.SetRecording(true) {
		a.mu.Unlock()
		return errors.New("already recording")
	}

	maxDur := time.Duration(a.cfg.Voice.MaxRecordSeconds) * time.Second
	stop := make(chan struct{})
	res := make(chan recResult, 1)
	a.stopCh = stop
	a.resultCh = res
	a.mu.Unlock()

	go func() {
		pcm, err := a.rec.Record(stop, maxDur)
		res <- recResult{pcm: pcm, err: err}
	}()

	if a.OnRecordStart != nil {
		a.OnRecordStart()
	}
	log.Info("recording started")
	return nil
}

// StopRecording closes the capture stream and pushes the audio through the
// remote endpoint, the guard and the bridge. The recording flag is cleared
// and the temporary WAV removed on every path, success or failure.
func (a *Assistant) StopRecording(ctx context.Context) (string, error) {
	a.mu.Lock()
	stop, res := a.stopCh, a.resultCh
	a.stopCh, a.resultCh = nil, nil
	a.mu.Unlock()

	if stop == nil {
		return "", errors.New("not recording")
	}

	defer func() {
		a.sess.SetRecording(false)
		if a.OnRecordStop != nil {
			a.OnRecordStop()
		}
	}()

	close(stop)
	r := <-res
	if r.err != nil {
		return "", fmt.Errorf("capture failed: %w", r.err)
	}

	log.Info("recording stopped", "samples", len(r.pcm))
	return a.processPCM(ctx, r.pcm)
}

// RunAudioFile treats an on-disk audio file as a voice prompt.
func (a *Assistant) RunAudioFile(ctx context.Context, path string) (string, error) {
	maxSamples := a.cfg.Voice.MaxRecordSeconds * audio.SampleRate
	pcm, err := wavio.DecodeFileToPCM16k(ctx, path, wavio.Options{MaxSamples: maxSamples})
	if err != nil {
		return "", fmt.Errorf("decode %q: %w", path, err)
	}
	return a.processPCM(ctx, pcm)
}

// processPCM writes the samples to a temporary WAV, sends it as a multimodal
// prompt and runs the resulting script. The WAV is deleted before returning,
// whether or not the remote call succeeded.
func (a *Assistant) processPCM(ctx context.Context, pcm []float32) (string, error) {
	if a.cfg.ResolveAPIKey() == "" {
		return "", ErrMissingKey
	}

	f, err := os.CreateTemp(a.tmpDir, "scenevox-*.wav")
	if err != nil {
		return "", fmt.Errorf("temp wav: %w", err)
	}
	wavPath := f.Name()
	f.Close()
	defer os.Remove(wavPath)

	if err := wavio.WriteFile(wavPath, pcm, audio.SampleRate); err != nil {
		return "", err
	}

	wavData, err := os.ReadFile(wavPath)
	if err != nil {
		return "", fmt.Errorf("read temp wav: %w", err)
	}

	userText := voicePlaceholder
	if a.transcribe != nil {
		if text, err := a.transcribe(ctx, pcm); err != nil {
			log.Warn("local transcription failed", "err", err)
		} else if text != "" {
			userText = text
		}
	}

	reply, err := a.gen.CompleteAudio(ctx, string(a.sess.Model()), llm.ScriptInstruction, wavData)
	if err != nil {
		return "", err
	}

	return a.runScript(ctx, userText, reply)
}

// runScript strips the markdown fence, records both transcript entries and
// hands the script to the host. Guard rejections are recorded but never
// executed. Host-side failures are reported as text; side effects the script
// performed before failing stay.
func (a *Assistant) runScript(ctx context.Context, userText, reply string) (string, error) {
	script := llm.StripFence(reply)

	a.sess.Append(session.RoleUser, userText)
	a.sess.Append(session.RoleAssistant, script)

	if err := a.guard.Check(script); err != nil {
		return "", err
	}

	if a.exec == nil {
		return "dry-run, script not sent to host:\n" + script, nil
	}

	out, err := a.exec.Execute(ctx, script)
	if err != nil {
		return "", err
	}
	log.Info("script executed", "output", out)
	return out, nil
}
