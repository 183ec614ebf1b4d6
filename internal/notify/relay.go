package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-portal/internal/config"
	apperrors "github.com/spec-kit/helpdesk-portal/pkg/util"
)

// Message is the payload posted to the notification relay.
type Message struct {
	Email          string `json:"email"`
	Title          string `json:"title"`
	Status         string `json:"status"`
	Type           string `json:"type"`
	TicketNumber   string `json:"ticket_number"`
	Description    string `json:"description"`
	SubmitterEmail string `json:"submitter_email,omitempty"`
}

// RelayClient posts ticket notifications to the Telegram relay. Failures are
// best-effort: the caller logs the returned error as a warning and completes
// the triggering operation regardless.
type RelayClient struct {
	url    string
	token  string
	client *http.Client
	logger *zap.Logger
}

// NewRelayClient builds a client from notify configuration. A client with an
// empty URL is valid and silently drops every message.
func NewRelayClient(cfg config.NotifyConfig, logger *zap.Logger) *RelayClient {
	return &RelayClient{
		url:    cfg.RelayURL,
		token:  cfg.RelayToken,
		client: &http.Client{Timeout: cfg.Timeout()},
		logger: logger,
	}
}

// Enabled reports whether a relay endpoint is configured.
func (r *RelayClient) Enabled() bool {
	return strings.TrimSpace(r.url) != ""
}

// Send posts the message with a bearer token. A non-2xx response or transport
// failure comes back as a notification error; it must never unwind the
// caller's success path.
func (r *RelayClient) Send(ctx context.Context, msg Message) error {
	if !r.Enabled() {
		return nil
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return apperrors.NewNotificationError(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		return apperrors.NewNotificationError(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return apperrors.NewNotificationError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return apperrors.NewNotificationError(fmt.Errorf("relay returned status %d", resp.StatusCode))
	}

	r.logger.Debug("notification relayed",
		zap.String("ticket_number", msg.TicketNumber),
		zap.String("type", msg.Type))
	return nil
}
