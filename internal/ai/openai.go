package ai

import (
	"context"
	"fmt"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// openaiClient implements Client using the official openai-go SDK
// (chat completions).
type openaiClient struct {
	model  string
	client openai.Client
}

func newOpenAIClient(apiKey, model string) *openaiClient {
	return &openaiClient{
		model:  model,
		client: openai.NewClient(option.WithAPIKey(apiKey)),
	}
}

func (o *openaiClient) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty openai response")
	}
	return resp.Choices[0].Message.Content, nil
}
