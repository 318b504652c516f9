package planner

import (
	"context"
	"errors"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/ashwath129/DayMap/internal/config"
)

type openAIPlanner struct {
	client openai.Client
	model  string
}

func NewOpenAI(cfg *config.Config) Planner {
	model := cfg.Planner.Model
	if model == "" {
		model = "o1-mini"
	}
	return &openAIPlanner{
		client: openai.NewClient(option.WithAPIKey(cfg.Planner.APIKey)),
		model:  model,
	}
}

func (p *openAIPlanner) GeneratePlan(ctx context.Context, req PlanRequest) ([]byte, error) {
	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: p.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(buildPrompt(req)),
		},
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("openai: empty completion")
	}
	return []byte(extractJSON(resp.Choices[0].Message.Content)), nil
}
