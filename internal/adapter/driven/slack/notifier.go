// Package slack envia relatórios para webhooks e interpreta comandos
// recebidos do Slack.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/primanata/aws-monitoring-hub-go/internal/shared/types"
)

const defaultTimeout = 10 * time.Second

// payload is the webhook message body.
type payload struct {
	Text      string `json:"text"`
	Channel   string `json:"channel,omitempty"`
	Username  string `json:"username,omitempty"`
	IconEmoji string `json:"icon_emoji,omitempty"`
}

// Notifier posts messages to Slack incoming webhooks, routing per report
// and client when a dedicated route is configured.
type Notifier struct {
	cfg    types.SlackConfig
	client *http.Client
	logger zerolog.Logger
}

// NewNotifier cria um Notifier com timeout padrão de 10 segundos.
func NewNotifier(cfg types.SlackConfig, logger zerolog.Logger) *Notifier {
	return &Notifier{
		cfg:    cfg,
		client: &http.Client{Timeout: defaultTimeout},
		logger: logger,
	}
}

// resolveRoute picks the webhook for a (report, clientKey) pair, falling
// back to the default webhook when no route matches.
func (n *Notifier) resolveRoute(report, clientKey string) (string, string) {
	for _, r := range n.cfg.Routes {
		if r.Report == report && r.ClientKey == clientKey {
			channel := r.Channel
			if channel == "" {
				channel = n.cfg.Channel
			}
			return r.WebhookURL, channel
		}
	}
	return n.cfg.WebhookURL, n.cfg.Channel
}

// Send posts text to the default webhook.
func (n *Notifier) Send(ctx context.Context, text string) (bool, string) {
	return n.post(ctx, n.cfg.WebhookURL, n.cfg.Channel, text)
}

// SendReport posts text to the webhook routed for the report and client.
func (n *Notifier) SendReport(ctx context.Context, report, clientKey, text string) (bool, string) {
	webhook, channel := n.resolveRoute(report, clientKey)
	return n.post(ctx, webhook, channel, text)
}

func (n *Notifier) post(ctx context.Context, webhook, channel, text string) (bool, string) {
	if webhook == "" {
		return false, "no webhook configured"
	}

	body, err := json.Marshal(payload{
		Text:      text,
		Channel:   channel,
		Username:  n.cfg.Username,
		IconEmoji: n.cfg.IconEmoji,
	})
	if err != nil {
		return false, fmt.Sprintf("marshal payload: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhook, bytes.NewReader(body))
	if err != nil {
		return false, fmt.Sprintf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		n.logger.Warn().Err(err).Msg("slack webhook request failed")
		return false, err.Error()
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		n.logger.Warn().Int("status", resp.StatusCode).Msg("slack webhook rejected message")
		return false, fmt.Sprintf("slack responded with status %d", resp.StatusCode)
	}
	return true, "ok"
}
