package hook

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/slack-go/slack"
	"github.com/xcreports/xcallure/internal/model"
)

// SlackHook sends a message to a slack channel whenever a failed test
// report is stored.
type SlackHook struct {
	api             *slack.Client
	notifyChannelID string

	log *slog.Logger
}

func NewSlackHook(channelID, token string, log *slog.Logger) *SlackHook {
	return &SlackHook{
		api:             slack.New(token),
		notifyChannelID: channelID,
		log:             log,
	}
}

func (h *SlackHook) Name() string {
	return "Slack"
}

func (h *SlackHook) Init() error {
	_, err := h.api.AuthTest()
	if err != nil {
		return fmt.Errorf("invalid auth token: %w", err)
	}

	return nil
}

func (h *SlackHook) ReportStored(ctx context.Context, report model.TestResult) {
	if report.Status != model.StatusFailed {
		return
	}

	text := strings.Builder{}

	text.WriteString(fmt.Sprintf("Test *%s* failed.", report.Name))
	text.WriteString("\n\n")

	if report.StatusDetails != nil && report.StatusDetails.Message != "" {
		text.WriteString(report.StatusDetails.Message)
		text.WriteString("\n")
	}

	newMarkdownSection := slack.NewSectionBlock(
		slack.NewTextBlockObject(
			"mrkdwn",
			text.String(),
			false, false,
		),
		nil, nil)

	msg := []slack.MsgOption{
		slack.MsgOptionBlocks(newMarkdownSection),
	}

	_, _, err := h.api.PostMessageContext(ctx, h.notifyChannelID, msg...)
	if err != nil {
		h.log.Error("unable to send slack message", "error", err)
	}
}
