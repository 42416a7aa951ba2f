// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/pdiddy/ocr-engine/pkg/types"
)

// openaiMaxTokens bounds the transcription length per request.
const openaiMaxTokens = 4096

// OpenAI performs OCR through the chat completions API.
type OpenAI struct {
	model       string
	completions openai.ChatCompletionService
}

var _ Backend = (*OpenAI)(nil)

// NewOpenAI builds the GPT backend.
func NewOpenAI(token, model string, opts ...Option) *OpenAI {
	o := applyOptions(opts)

	var reqOpts []option.RequestOption
	if o.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(strings.TrimRight(o.baseURL, "/")+"/"))
	}
	if o.client != nil {
		reqOpts = append(reqOpts, option.WithHTTPClient(o.client))
	}
	if token != "" {
		reqOpts = append(reqOpts, option.WithAPIKey(token))
	}

	return &OpenAI{
		model:       model,
		completions: openai.NewChatCompletionService(reqOpts...),
	}
}

// Name implements Backend.
func (p *OpenAI) Name() string {
	return string(types.ProviderOpenAI)
}

// OCR implements Backend. Each page is sent as a data-URL image part with
// high detail; pages are labelled when there is more than one.
func (p *OpenAI) OCR(ctx context.Context, images [][]byte, format types.OutputFormat) (string, error) {
	var parts []openai.ChatCompletionContentPartUnionParam

	for i, img := range images {
		if len(images) > 1 {
			parts = append(parts, openai.TextContentPart(pageMarker(i+1)))
		}
		parts = append(parts, openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
			URL:    dataURL("image/png", img),
			Detail: "high",
		}))
	}

	parts = append(parts, openai.TextContentPart(formatInstruction(format)))

	completion, err := p.completions.New(ctx, openai.ChatCompletionNewParams{
		Model:     p.model,
		MaxTokens: openai.Int(openaiMaxTokens),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(parts),
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}

	if len(completion.Choices) == 0 {
		return "", errors.New("openai: response contains no choices")
	}
	return completion.Choices[0].Message.Content, nil
}
