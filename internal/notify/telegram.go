package notify

import (
	"context"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/mirzet-943/MarketPlatz-Notification-Helper/internal/model"
)

// TelegramChannel sends an HTML-formatted summary to the job's chat,
// falling back to the configured default chat when the job has none.
type TelegramChannel struct {
	bot           *tgbotapi.BotAPI // nil when no token is configured
	defaultChatID string
	log           zerolog.Logger
}

// NewTelegramChannel initializes the bot API when a token is configured.
// A missing token or failed bot handshake leaves the channel in skip mode
// rather than failing startup.
func NewTelegramChannel(token, defaultChatID string, log zerolog.Logger) *TelegramChannel {
	ch := &TelegramChannel{
		defaultChatID: defaultChatID,
		log:           log.With().Str("component", "telegram").Logger(),
	}

	if token == "" {
		return ch
	}

	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		ch.log.Warn().Err(err).Msg("telegram bot init failed, channel disabled")
		return ch
	}
	ch.bot = bot
	return ch
}

func (t *TelegramChannel) Name() string { return "telegram" }

// Send delivers the notification to the job's chat. Skips silently when the
// bot or destination is unconfigured.
func (t *TelegramChannel) Send(ctx context.Context, job *model.MonitorJob, listings []model.Listing) error {
	chatID := job.TelegramChatID
	if chatID == "" {
		chatID = t.defaultChatID
	}
	if chatID == "" {
		t.log.Warn().Str("job", job.Name).Msg("no telegram chat configured, skipping")
		return nil
	}
	if t.bot == nil {
		t.log.Warn().Str("chat_id", chatID).Msg("telegram bot not configured, skipping")
		return nil
	}

	text := buildTelegramMessage(job, listings)

	var msg tgbotapi.MessageConfig
	if id, err := strconv.ParseInt(chatID, 10, 64); err == nil {
		msg = tgbotapi.NewMessage(id, text)
	} else {
		msg = tgbotapi.NewMessageToChannel(chatID, text)
	}
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true

	if _, err := t.bot.Send(msg); err != nil {
		return err
	}

	t.log.Info().Str("chat_id", chatID).Str("job", job.Name).Msg("telegram notification sent")
	return nil
}
