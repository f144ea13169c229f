package service

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/participa-df/ouvidoria-service/internal/config"
	"github.com/participa-df/ouvidoria-service/internal/events"
)

// Notifier forwards domain events to outbound channels. Email delivery is a
// logging stub until an SMTP relay is provisioned; webhook delivery posts
// the event JSON when a URL is configured.
type Notifier struct {
	cfg    config.NotifyConfig
	client *http.Client
	logger *zap.Logger
}

// NewNotifier builds the notifier.
func NewNotifier(cfg config.NotifyConfig, logger *zap.Logger) *Notifier {
	return &Notifier{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
		logger: logger,
	}
}

// HandleEvent is the dispatcher callback for all subscribed event types.
func (n *Notifier) HandleEvent(ctx context.Context, event events.Event) error {
	n.logger.Info("notification",
		zap.String("event", string(event.Type)),
		zap.String("complaint_id", event.ComplaintID),
	)

	if n.cfg.EmailFrom != "" {
		// TODO: wire SMTP delivery once the relay host is available.
		n.logger.Debug("email notification skipped, no relay configured",
			zap.String("from", n.cfg.EmailFrom))
	}

	if n.cfg.WebhookURL == "" {
		return nil
	}
	return n.postWebhook(ctx, event)
}

func (n *Notifier) postWebhook(ctx context.Context, event events.Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.cfg.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		n.logger.Warn("webhook delivery failed", zap.Error(err))
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		n.logger.Warn("webhook rejected", zap.Int("status", resp.StatusCode))
	}
	return nil
}
