package openai

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/sashabaranov/go-openai"

	"chatrelay/internal/config"
)

// Service wraps the OpenAI client behind the single generation call the
// relay needs. The client is safe for concurrent use.
type Service struct {
	client *openai.Client
	model  string
}

func NewService() *Service {
	log.Info().Msg("Initialising OpenAI service")
	key := config.GetOpenAIKey()

	return &Service{
		client: openai.NewClient(key),
		model:  config.GetOpenAIModel(),
	}
}

// Generate submits a single user message under the fixed model configuration
// and returns the completion text. An empty string with a nil error means the
// model produced no usable text; the caller decides how to degrade.
func (s *Service) Generate(ctx context.Context, message string) (string, error) {
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: message,
			},
		},
		Temperature: 0.7,
	})
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		log.Warn().Str("model", s.model).Msg("Completion returned no choices")
		return "", nil
	}

	return resp.Choices[0].Message.Content, nil
}
