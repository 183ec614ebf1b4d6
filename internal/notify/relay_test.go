package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-portal/internal/config"
	apperrors "github.com/spec-kit/helpdesk-portal/pkg/util"
)

func relayFor(t *testing.T, url, token string) *RelayClient {
	t.Helper()
	return NewRelayClient(config.NotifyConfig{
		RelayURL:       url,
		RelayToken:     token,
		TimeoutSeconds: 5,
	}, zap.NewNop())
}

func TestSendPostsPayloadWithBearerToken(t *testing.T) {
	var (
		gotAuth string
		gotBody Message
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := relayFor(t, server.URL, "relay-secret")
	err := client.Send(context.Background(), Message{
		Email:        "ada@example.com",
		Title:        "Printer offline",
		Status:       "Open",
		Type:         "submit",
		TicketNumber: "TKT25030001",
		Description:  "3rd floor printer",
	})
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	if gotAuth != "Bearer relay-secret" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotBody.Email != "ada@example.com" || gotBody.TicketNumber != "TKT25030001" || gotBody.Type != "submit" {
		t.Errorf("payload = %+v", gotBody)
	}
}

func TestSendNon2xxIsNotificationError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := relayFor(t, server.URL, "")
	err := client.Send(context.Background(), Message{Email: "ada@example.com"})
	if err == nil {
		t.Fatal("expected error for 502 response")
	}
	if !apperrors.IsNotification(err) {
		t.Errorf("error = %v, want notification error", err)
	}
}

func TestSendUnreachableRelayIsNotificationError(t *testing.T) {
	client := relayFor(t, "http://127.0.0.1:1", "")
	err := client.Send(context.Background(), Message{Email: "ada@example.com"})
	if err == nil {
		t.Fatal("expected error for unreachable relay")
	}
	if !apperrors.IsNotification(err) {
		t.Errorf("error = %v, want notification error", err)
	}
}

func TestSendWithoutURLIsNoOp(t *testing.T) {
	client := relayFor(t, "", "token")
	if client.Enabled() {
		t.Error("client without URL should report disabled")
	}
	if err := client.Send(context.Background(), Message{Email: "ada@example.com"}); err != nil {
		t.Errorf("disabled Send() error = %v, want nil", err)
	}
}
