package ai

import (
	"context"

	"github.com/sashabaranov/go-openai"

	"github.com/EnesGoktekin/detective-ai/internal/errors"
)

var ErrEmptyCompletion = errors.NewSentinel("model returned no choices")

const maxTokens = 1024

type Client struct {
	client *openai.Client
	model  string
}

func NewClient(apiKey, model string) *Client {
	return &Client{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

// Complete runs a synchronous chat completion and returns the assistant text.
func (c *Client) Complete(ctx context.Context, messages []openai.ChatCompletionMessage) (string, error) {
	completion, err := c.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{ //nolint:exhaustruct // this is better for readability
			Model:     c.model,
			MaxTokens: maxTokens,
			Messages:  messages,
		},
	)
	if err != nil {
		return "", errors.Wrap(err, "create chat completion")
	}
	if len(completion.Choices) == 0 {
		return "", errors.Wrap(ErrEmptyCompletion, "create chat completion")
	}
	return completion.Choices[0].Message.Content, nil
}
