package adapters

import (
	"context"
	"fmt"
	"strings"

	"shipment-sentinel/internal/features/alerts/domain"

	"github.com/slack-go/slack"
)

// SlackAdapter implements ports.ChatSink using the Slack Web API.
type SlackAdapter struct {
	client *slack.Client
}

// NewSlackAdapter creates a Slack chat sink with the given bot token.
func NewSlackAdapter(botToken string) *SlackAdapter {
	return &SlackAdapter{
		client: slack.New(botToken),
	}
}

// PostAlert posts the alert as a summary line plus a details block.
func (a *SlackAdapter) PostAlert(ctx context.Context, channelID string, alert domain.Alert) (string, error) {
	headline := ":rotating_light: " + alert.Summary
	if alert.CoordinatorID != "" {
		headline = fmt.Sprintf("<@%s> %s", alert.CoordinatorID, headline)
	} else if alert.Region != "" {
		headline = fmt.Sprintf("[%s] %s", alert.Region, headline)
	}

	var details strings.Builder
	for _, d := range alert.Details {
		if d.Value == "" {
			continue
		}
		fmt.Fprintf(&details, "*%s:* %s\n", d.Label, d.Value)
	}

	blocks := []slack.Block{
		slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType, headline, false, false),
			nil, nil,
		),
	}
	if details.Len() > 0 {
		blocks = append(blocks, slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType, details.String(), false, false),
			nil, nil,
		))
	}

	_, ts, err := a.client.PostMessageContext(ctx, channelID,
		slack.MsgOptionText(alert.Summary, false),
		slack.MsgOptionBlocks(blocks...),
	)
	if err != nil {
		return "", fmt.Errorf("failed to post slack message: %w", err)
	}

	return ts, nil
}
