package openai

import (
	"context"
	"fmt"
	"strings"
	"time"

	oa "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"gogPriceBot/internal/gogdb"
)

type Insight struct {
	cli oa.Client
}

func NewInsight(apiKey string) *Insight {
	client := oa.NewClient(option.WithAPIKey(apiKey))
	return &Insight{cli: client}
}

// Comment produces a short buying-advice blurb from a price history.
// The series is condensed to at most 40 sampled points to keep tokens low.
func (i *Insight) Comment(ctx context.Context, productID string, s gogdb.Series, m gogdb.Metrics) (string, error) {
	systemPrompt := `You are a concise assistant commenting on the price history of a PC game. You will receive sampled (date, price) points plus the historical low and highest base price. Reply in at most four short sentences: describe the trend, say how the current price compares to the historical low, and whether a patient buyer should wait for a deeper discount. No markdown headers, no disclaimers.`

	var b strings.Builder
	fmt.Fprintf(&b, "Product %s\n", productID)
	fmt.Fprintf(&b, "Historical low: $%.2f\n", m.LowestPrice)
	fmt.Fprintf(&b, "Highest base price: $%.2f\n", m.HighestBasePrice)
	b.WriteString("Points:\n")
	step := 1
	if len(s.Labels) > 40 {
		step = len(s.Labels) / 40
	}
	for idx := 0; idx < len(s.Labels); idx += step {
		fmt.Fprintf(&b, "%s $%.2f\n", s.Labels[idx].Format(time.DateOnly), s.Prices[idx])
	}

	resp, err := i.cli.Chat.Completions.New(ctx, oa.ChatCompletionNewParams{
		Model: "gpt-4",
		Messages: []oa.ChatCompletionMessageParamUnion{
			oa.SystemMessage(systemPrompt),
			oa.UserMessage(b.String()),
		},
		MaxTokens: oa.Int(300), // Telegram-sized reply
	})
	if err != nil {
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from OpenAI")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
