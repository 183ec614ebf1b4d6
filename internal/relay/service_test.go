package relay

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-portal/internal/config"
	apperrors "github.com/spec-kit/helpdesk-portal/pkg/util"
)

type fakeUsers struct {
	chats map[string]int64
}

func (f *fakeUsers) ChatIDByEmail(ctx context.Context, email string) (int64, error) {
	if id, ok := f.chats[strings.ToLower(email)]; ok {
		return id, nil
	}
	return 0, pgx.ErrNoRows
}

func (f *fakeUsers) Register(ctx context.Context, email string, chatID int64) error {
	if f.chats == nil {
		f.chats = map[string]int64{}
	}
	f.chats[strings.ToLower(email)] = chatID
	return nil
}

type fakeSender struct {
	chatID    int64
	text      string
	parseMode string
	err       error
}

func (f *fakeSender) Send(chatID int64, text, parseMode string) error {
	f.chatID = chatID
	f.text = text
	f.parseMode = parseMode
	return f.err
}

func testApp(secret string, users *fakeUsers, sender *fakeSender) *fiber.App {
	service := NewService(config.NotifyConfig{FunctionSecret: secret}, users, sender, zap.NewNop())
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			domainErr := apperrors.ToDomainError(err)
			return c.Status(domainErr.HTTPStatus).JSON(fiber.Map{"error": domainErr.Code})
		},
	})
	service.RegisterRoutes(app)
	return app
}

func post(t *testing.T, app *fiber.App, path, token, body string) int {
	t.Helper()
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()
	return resp.StatusCode
}

func TestNotifySendsMarkdownMessage(t *testing.T) {
	users := &fakeUsers{chats: map[string]int64{"ada@example.com": 42}}
	sender := &fakeSender{}
	app := testApp("fn-secret", users, sender)

	status := post(t, app, "/notify", "fn-secret",
		`{"email":"ada@example.com","title":"Printer offline","status":"Open","ticket_number":"TKT25030001","description":"3rd floor"}`)
	if status != fiber.StatusOK {
		t.Fatalf("status = %d", status)
	}

	if sender.chatID != 42 {
		t.Errorf("chatID = %d", sender.chatID)
	}
	if sender.parseMode != "Markdown" {
		t.Errorf("parseMode = %q", sender.parseMode)
	}
	for _, want := range []string{"TKT25030001", "Printer offline", "3rd floor", "Open"} {
		if !strings.Contains(sender.text, want) {
			t.Errorf("message missing %q: %s", want, sender.text)
		}
	}
}

func TestNotifyBasicMessageShapes(t *testing.T) {
	users := &fakeUsers{chats: map[string]int64{"ada@example.com": 42}}

	t.Run("submit", func(t *testing.T) {
		sender := &fakeSender{}
		app := testApp("", users, sender)
		status := post(t, app, "/notify/basic", "anything",
			`{"email":"ada@example.com","title":"VPN drops","status":"Open","type":"submit"}`)
		if status != fiber.StatusOK {
			t.Fatalf("status = %d", status)
		}
		if !strings.Contains(sender.text, "New Ticket Submitted") {
			t.Errorf("text = %q", sender.text)
		}
	})

	t.Run("update", func(t *testing.T) {
		sender := &fakeSender{}
		app := testApp("", users, sender)
		status := post(t, app, "/notify/basic", "anything",
			`{"email":"ada@example.com","title":"VPN drops","status":"Resolved","type":"update"}`)
		if status != fiber.StatusOK {
			t.Fatalf("status = %d", status)
		}
		if !strings.Contains(sender.text, "Ticket Updated") || !strings.Contains(sender.text, "Resolved") {
			t.Errorf("text = %q", sender.text)
		}
	})
}

func TestNotifyRejectsBadAuth(t *testing.T) {
	users := &fakeUsers{chats: map[string]int64{"ada@example.com": 42}}
	sender := &fakeSender{}
	app := testApp("fn-secret", users, sender)

	if status := post(t, app, "/notify", "", `{"email":"ada@example.com"}`); status != fiber.StatusUnauthorized {
		t.Errorf("missing token status = %d", status)
	}
	if status := post(t, app, "/notify", "wrong", `{"email":"ada@example.com"}`); status != fiber.StatusUnauthorized {
		t.Errorf("wrong token status = %d", status)
	}
	if sender.chatID != 0 {
		t.Error("sender invoked despite failed auth")
	}
}

func TestNotifyUnknownEmailIsNotFound(t *testing.T) {
	app := testApp("fn-secret", &fakeUsers{}, &fakeSender{})

	status := post(t, app, "/notify", "fn-secret", `{"email":"ghost@example.com","title":"x"}`)
	if status != fiber.StatusNotFound {
		t.Errorf("status = %d, want 404", status)
	}
}

func TestNotifyRequiresEmail(t *testing.T) {
	app := testApp("fn-secret", &fakeUsers{}, &fakeSender{})

	status := post(t, app, "/notify", "fn-secret", `{"title":"x"}`)
	if status != fiber.StatusBadRequest {
		t.Errorf("status = %d, want 400", status)
	}
}
