// Package llm turns user prompts into host scripts via a remote
// text-generation endpoint.
package llm

import (
	"context"
	"errors"
)

// ScriptInstruction is prepended to every generation request.
const ScriptInstruction = "You write Python scripts for the host 3D application. " +
	"Reply with only raw code: no prose, no explanations, no markdown fences."

// ProbePrompt is the fixed prompt used by the connection probe.
const ProbePrompt = "ping"

var (
	// ErrMissingKey is returned before any network traffic when no API key
	// could be resolved.
	ErrMissingKey = errors.New("llm: no API key configured")

	// ErrAudioUnsupported marks clients that cannot take audio prompts.
	ErrAudioUnsupported = errors.New("llm: audio prompts not supported")

	// ErrEmptyReply is returned when the endpoint answered without text.
	ErrEmptyReply = errors.New("llm: empty reply")
)

// Client sends a prompt to a generation endpoint and returns the reply text.
// Model is provider-specific; the system prompt is sent as an instruction.
type Client interface {
	Name() string
	Complete(ctx context.Context, model, system, user string) (string, error)
	// CompleteAudio attaches wavData (single-channel 16 kHz WAV) as a
	// multimodal payload alongside the instruction.
	CompleteAudio(ctx context.Context, model, system string, wavData []byte) (string, error)
}
