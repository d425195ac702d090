package notify

import (
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/focusd/internal/logging"
)

// WebhookSink POSTs notifications to an external endpoint (status bars,
// desktop notifiers). Delivery is asynchronous and best-effort; an
// unreachable endpoint only produces a debug log line.
type WebhookSink struct {
	client *resty.Client
	url    string
	log    *logging.Logger
}

// NewWebhookSink creates a webhook sink targeting the given URL.
func NewWebhookSink(url string, log *logging.Logger) *WebhookSink {
	client := resty.New().
		SetTimeout(5 * time.Second).
		SetRetryCount(1)

	return &WebhookSink{client: client, url: url, log: log}
}

type webhookPayload struct {
	Message    string `json:"message"`
	Severity   string `json:"severity"`
	DurationMs int64  `json:"duration_ms"`
}

// Notify delivers the notification without blocking the caller.
func (s *WebhookSink) Notify(message string, severity Severity, duration time.Duration) {
	payload := webhookPayload{
		Message:    message,
		Severity:   severity.String(),
		DurationMs: duration.Milliseconds(),
	}

	go func() {
		_, err := s.client.R().
			SetBody(payload).
			Post(s.url)
		if err != nil {
			s.log.Debug("webhook notification failed", zap.Error(err))
		}
	}()
}
