package relay

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-portal/internal/repository"
)

// Registrar consumes bot updates and maps "/start <email>" commands to
// chat registrations so later notifications reach the right chat.
type Registrar struct {
	api    *tgbotapi.BotAPI
	users  repository.TelegramUserRepository
	logger *zap.Logger
}

// NewRegistrar builds the update loop.
func NewRegistrar(api *tgbotapi.BotAPI, users repository.TelegramUserRepository, logger *zap.Logger) *Registrar {
	return &Registrar{api: api, users: users, logger: logger}
}

// Run blocks consuming updates until ctx is cancelled.
func (r *Registrar) Run(ctx context.Context) {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 30
	updates := r.api.GetUpdatesChan(cfg)

	for {
		select {
		case <-ctx.Done():
			r.api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			r.handle(ctx, update)
		}
	}
}

func (r *Registrar) handle(ctx context.Context, update tgbotapi.Update) {
	if update.Message == nil || !update.Message.IsCommand() {
		return
	}
	if update.Message.Command() != "start" {
		return
	}

	chatID := update.Message.Chat.ID
	email := strings.ToLower(strings.TrimSpace(update.Message.CommandArguments()))
	if email == "" || !strings.Contains(email, "@") {
		r.reply(chatID, "Send /start followed by the email address you use on the helpdesk portal.")
		return
	}

	if err := r.users.Register(ctx, email, chatID); err != nil {
		r.logger.Error("register telegram user", zap.String("email", email), zap.Error(err))
		r.reply(chatID, "Registration failed, please try again later.")
		return
	}

	r.logger.Info("telegram user registered", zap.String("email", email), zap.Int64("chat_id", chatID))
	r.reply(chatID, "You're registered. Ticket updates for "+email+" will arrive here.")
}

func (r *Registrar) reply(chatID int64, text string) {
	if _, err := r.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		r.logger.Warn("send reply", zap.Error(err))
	}
}
