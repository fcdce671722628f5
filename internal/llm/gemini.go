package llm

import (
	"context"
	"fmt"
	"net/http"

	"google.golang.org/genai"
)

// Gemini implements Client on the Gemini generateContent API.
//
// The API key is re-resolved through keyFn on every call, so changes to the
// environment or the env file take effect without a restart.
type Gemini struct {
	keyFn      func() string
	httpClient *http.Client
}

var _ Client = (*Gemini)(nil)

// NewGemini returns a Gemini client. keyFn is consulted per request;
// httpClient may be nil to use the default transport.
func NewGemini(keyFn func() string, httpClient *http.Client) *Gemini {
	return &Gemini{keyFn: keyFn, httpClient: httpClient}
}

func (g *Gemini) Name() string { return "gemini" }

func (g *Gemini) connect(ctx context.Context) (*genai.Client, error) {
	key := g.keyFn()
	if key == "" {
		return nil, ErrMissingKey
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     key,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: g.httpClient,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: client: %w", err)
	}
	return client, nil
}

// Complete sends the system instruction plus the user prompt and returns the
// reply text.
func (g *Gemini) Complete(ctx context.Context, model, system, user string) (string, error) {
	client, err := g.connect(ctx)
	if err != nil {
		return "", err
	}

	var genCfg *genai.GenerateContentConfig
	if system != "" {
		genCfg = &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		}
	}

	resp, err := client.Models.GenerateContent(ctx, model, genai.Text(user), genCfg)
	if err != nil {
		return "", fmt.Errorf("gemini: generate: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", ErrEmptyReply
	}
	return text, nil
}

// CompleteAudio sends the raw WAV bytes inline alongside the instruction.
func (g *Gemini) CompleteAudio(ctx context.Context, model, system string, wavData []byte) (string, error) {
	client, err := g.connect(ctx)
	if err != nil {
		return "", err
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(wavData, "audio/wav"),
			genai.NewPartFromText(system),
		}, genai.RoleUser),
	}

	resp, err := client.Models.GenerateContent(ctx, model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("gemini: generate from audio: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", ErrEmptyReply
	}
	return text, nil
}
