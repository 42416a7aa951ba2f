// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/pdiddy/ocr-engine/pkg/types"
)

// anthropicMaxTokens bounds the transcription length per request.
const anthropicMaxTokens = 8192

// Anthropic performs OCR through the Claude messages API.
type Anthropic struct {
	model    string
	messages anthropic.MessageService
}

var _ Backend = (*Anthropic)(nil)

// NewAnthropic builds the Claude backend.
func NewAnthropic(token, model string, opts ...Option) *Anthropic {
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

	return &Anthropic{
		model:    model,
		messages: anthropic.NewMessageService(reqOpts...),
	}
}

// Name implements Backend.
func (p *Anthropic) Name() string {
	return string(types.ProviderAnthropic)
}

// OCR implements Backend. Each page is sent as a base64 PNG block; pages
// are labelled when there is more than one.
func (p *Anthropic) OCR(ctx context.Context, images [][]byte, format types.OutputFormat) (string, error) {
	var blocks []anthropic.ContentBlockParamUnion

	for i, img := range images {
		if len(images) > 1 {
			blocks = append(blocks, anthropic.NewTextBlock(pageMarker(i+1)))
		}
		blocks = append(blocks, anthropic.NewImageBlock(anthropic.Base64ImageSourceParam{
			Data:      base64.StdEncoding.EncodeToString(img),
			MediaType: anthropic.Base64ImageSourceMediaType("image/png"),
		}))
	}

	blocks = append(blocks, anthropic.NewTextBlock(formatInstruction(format)))

	message, err := p.messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: anthropicMaxTokens,
		System:    []anthropic.TextBlockParam{{Text: systemPrompt}},
		Messages:  []anthropic.MessageParam{anthropic.NewUserMessage(blocks...)},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic message request: %w", err)
	}

	var sb strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	return sb.String(), nil
}
