package llm

import (
	"context"
	"fmt"
	"net/http"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// OpenAI implements Client on the Chat Completions API. It is the text-only
// fallback behind Gemini; audio prompts are rejected.
type OpenAI struct {
	keyFn func() string
	model string
	opts  []option.RequestOption
}

var _ Client = (*OpenAI)(nil)

// NewOpenAI returns an OpenAI fallback client pinned to the given model
// ("gpt-5-nano" when empty). keyFn is consulted per request.
func NewOpenAI(keyFn func() string, model string, httpClient *http.Client) *OpenAI {
	if model == "" {
		model = string(openai.ChatModelGPT5Nano)
	}
	var opts []option.RequestOption
	if httpClient != nil {
		opts = append(opts, option.WithHTTPClient(httpClient))
	}
	return &OpenAI{keyFn: keyFn, model: model, opts: opts}
}

func (o *OpenAI) Name() string { return "openai" }

// Complete ignores the Gemini model identifier and uses the pinned OpenAI
// model instead.
func (o *OpenAI) Complete(ctx context.Context, _, system, user string) (string, error) {
	key := o.keyFn()
	if key == "" {
		return "", ErrMissingKey
	}

	client := openai.NewClient(append(o.opts, option.WithAPIKey(key))...)

	resp, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		Model: openai.ChatModel(o.model),
	})
	if err != nil {
		return "", fmt.Errorf("openai: chat completion: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", ErrEmptyReply
	}
	return resp.Choices[0].Message.Content, nil
}

func (o *OpenAI) CompleteAudio(context.Context, string, string, []byte) (string, error) {
	return "", ErrAudioUnsupported
}
