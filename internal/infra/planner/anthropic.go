package planner

import (
	"context"
	"errors"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/ashwath129/DayMap/internal/config"
)

type anthropicPlanner struct {
	client anthropic.Client
	model  anthropic.Model
}

func NewAnthropic(cfg *config.Config) Planner {
	model := anthropic.Model(cfg.Planner.Model)
	if model == "" {
		model = anthropic.ModelClaudeSonnet4_5
	}
	return &anthropicPlanner{
		client: anthropic.NewClient(option.WithAPIKey(cfg.Planner.APIKey)),
		model:  model,
	}
}

func (p *anthropicPlanner) GeneratePlan(ctx context.Context, req PlanRequest) ([]byte, error) {
	resp, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     p.model,
		MaxTokens: 4096,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(buildPrompt(req))),
		},
	})
	if err != nil {
		return nil, err
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return nil, errors.New("anthropic: empty completion")
	}
	return []byte(extractJSON(sb.String())), nil
}
