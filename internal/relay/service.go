// Package relay reimplements the portal's notification functions: it accepts
// ticket event payloads over HTTP and forwards them to the submitter's
// registered Telegram chat.
package relay

import (
	"errors"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-portal/internal/config"
	"github.com/spec-kit/helpdesk-portal/internal/notify"
	"github.com/spec-kit/helpdesk-portal/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-portal/pkg/util"
)

// Sender pushes one message to a chat. Satisfied by the Bot API client;
// faked in tests.
type Sender interface {
	Send(chatID int64, text, parseMode string) error
}

// Service handles relay HTTP requests.
type Service struct {
	secret string
	users  repository.TelegramUserRepository
	sender Sender
	logger *zap.Logger
	now    func() time.Time
}

// NewService builds the relay service.
func NewService(cfg config.NotifyConfig, users repository.TelegramUserRepository, sender Sender, logger *zap.Logger) *Service {
	return &Service{
		secret: cfg.FunctionSecret,
		users:  users,
		sender: sender,
		logger: logger,
		now:    time.Now,
	}
}

// Notify POST /notify sends the detailed ticket message.
func (s *Service) Notify(c *fiber.Ctx) error {
	if err := s.authorize(c); err != nil {
		return err
	}

	var msg notify.Message
	if err := c.BodyParser(&msg); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(msg.Email) == "" {
		return apperrors.NewValidationError("email required", nil)
	}

	chatID, err := s.chatID(c, msg.Email)
	if err != nil {
		return err
	}

	text := fmt.Sprintf(`📩 *New Ticket Submitted*

🆔 *Ticket Number:* %s
👤 *User:* %s
📝 *Title:* %s
🧾 *Description:* %s
📌 *Status:* %s
🕒 *Date:* %s`,
		msg.TicketNumber, msg.Email, msg.Title, msg.Description, msg.Status,
		s.now().Format("02/01/2006, 15:04:05"))

	if err := s.sender.Send(chatID, text, tgbotapi.ModeMarkdown); err != nil {
		return apperrors.NewNotificationError(err)
	}
	return c.JSON(fiber.Map{"success": true})
}

// NotifyBasic POST /notify/basic sends the short submit/update message.
func (s *Service) NotifyBasic(c *fiber.Ctx) error {
	if err := s.authorize(c); err != nil {
		return err
	}

	var msg notify.Message
	if err := c.BodyParser(&msg); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(msg.Email) == "" {
		return apperrors.NewValidationError("email required", nil)
	}

	chatID, err := s.chatID(c, msg.Email)
	if err != nil {
		return err
	}

	var text string
	if msg.Type == "submit" {
		text = fmt.Sprintf("📬 New Ticket Submitted:\n🎫 Title: %s\n📌 Status: %s", msg.Title, msg.Status)
	} else {
		text = fmt.Sprintf("🔄 Ticket Updated:\n🎫 Title: %s\n📌 New Status: %s", msg.Title, msg.Status)
	}

	if err := s.sender.Send(chatID, text, ""); err != nil {
		return apperrors.NewNotificationError(err)
	}
	return c.JSON(fiber.Map{"success": true})
}

func (s *Service) authorize(c *fiber.Ctx) error {
	header := c.Get("Authorization")
	if header == "" || !strings.HasPrefix(header, "Bearer ") {
		return apperrors.NewUnauthorized("missing or malformed authorization header")
	}
	if s.secret != "" && strings.TrimPrefix(header, "Bearer ") != s.secret {
		return apperrors.NewUnauthorized("invalid token")
	}
	return nil
}

func (s *Service) chatID(c *fiber.Ctx, email string) (int64, error) {
	chatID, err := s.users.ChatIDByEmail(c.Context(), email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, repository.ErrRelationMissing) {
			return 0, apperrors.NewNotFound("telegram user", map[string]any{"email": email})
		}
		return 0, apperrors.NewPersistenceError("telegram user lookup", err)
	}
	return chatID, nil
}

// RegisterRoutes wires the relay endpoints.
func (s *Service) RegisterRoutes(app *fiber.App) {
	app.Post("/notify", s.Notify)
	app.Post("/notify/basic", s.NotifyBasic)
}

// BotSender sends through the Telegram Bot API.
type BotSender struct {
	api *tgbotapi.BotAPI
}

// NewBotSender authenticates against the Bot API.
func NewBotSender(token string) (*BotSender, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot: %w", err)
	}
	return &BotSender{api: api}, nil
}

// API exposes the underlying client for the registrar loop.
func (b *BotSender) API() *tgbotapi.BotAPI {
	return b.api
}

// Send implements Sender.
func (b *BotSender) Send(chatID int64, text, parseMode string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	if parseMode != "" {
		msg.ParseMode = parseMode
	}
	_, err := b.api.Send(msg)
	return err
}
