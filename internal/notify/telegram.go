package notify

import (
	"context"
	"fmt"
	"html"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/manav03panchal/nudge/internal/config"
	"github.com/manav03panchal/nudge/internal/logging"
	"github.com/manav03panchal/nudge/internal/model"
)

// Bot is the part of *tgbotapi.BotAPI the backend uses.
type Bot interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// ActionHandler receives a button press.
type ActionHandler func(id model.ActionID, c model.Category)

// Telegram sends notifications to one chat with inline action buttons.
type Telegram struct {
	bot    Bot
	chatID int64
}

// NewTelegram connects to the Bot API with token.
func NewTelegram(token string, chatID int64) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram: %w", err)
	}
	return NewTelegramWithBot(bot, chatID), nil
}

// NewTelegramWithBot wraps an existing bot client.
func NewTelegramWithBot(bot Bot, chatID int64) *Telegram {
	return &Telegram{bot: bot, chatID: chatID}
}

// Name implements Backend.
func (t *Telegram) Name() string { return "telegram" }

// Deliver implements Backend. Silent notifications are sent without sound.
func (t *Telegram) Deliver(_ context.Context, n *model.Notification) error {
	if _, err := t.bot.Send(t.message(n)); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}

func (t *Telegram) message(n *model.Notification) tgbotapi.MessageConfig {
	var b strings.Builder
	fmt.Fprintf(&b, "<b>%s</b>\n%s", html.EscapeString(n.Title), html.EscapeString(n.Message))
	for _, fl := range sortedFields(n) {
		fmt.Fprintf(&b, "\n<i>%s:</i> %s", html.EscapeString(fl.Name), html.EscapeString(fl.Value))
	}

	msg := tgbotapi.NewMessage(t.chatID, b.String())
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableNotification = !n.Sound
	if kb, ok := actionKeyboard(n); ok {
		msg.ReplyMarkup = kb
	}
	return msg
}

func actionKeyboard(n *model.Notification) (tgbotapi.InlineKeyboardMarkup, bool) {
	var row []tgbotapi.InlineKeyboardButton
	for _, a := range n.Actions {
		if a == model.ActionOpenSettings {
			continue
		}
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(a.Label(), EncodeCallback(a, n.Category)))
	}
	if len(row) == 0 {
		return tgbotapi.InlineKeyboardMarkup{}, false
	}
	return tgbotapi.NewInlineKeyboardMarkup(row), true
}

// EncodeCallback packs an action into button callback data.
func EncodeCallback(a model.ActionID, c model.Category) string {
	if c == "" {
		return string(a)
	}
	return string(a) + ":" + string(c)
}

// DecodeCallback is the inverse of EncodeCallback.
func DecodeCallback(data string) (model.ActionID, model.Category, bool) {
	id, cat, _ := strings.Cut(data, ":")
	if id == "" {
		return "", "", false
	}
	return model.ActionID(id), model.Category(cat), true
}

// Listen long-polls for button presses until ctx is done.
func (t *Telegram) Listen(ctx context.Context, handle ActionHandler) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = config.Global.Telegram.PollTimeout
	updates := t.bot.GetUpdatesChan(u)

	log := logging.Component("telegram")
	log.Info("listening for button presses")

	for {
		select {
		case <-ctx.Done():
			t.bot.StopReceivingUpdates()
			return
		case upd, ok := <-updates:
			if !ok {
				return
			}
			t.HandleUpdate(upd, handle)
		}
	}
}

// HandleUpdate routes one callback query from the configured chat.
func (t *Telegram) HandleUpdate(upd tgbotapi.Update, handle ActionHandler) {
	cb := upd.CallbackQuery
	if cb == nil || cb.Message == nil || cb.Message.Chat == nil {
		return
	}
	if cb.Message.Chat.ID != t.chatID {
		logging.DebugLog("ignoring callback from unknown chat", "chat_id", cb.Message.Chat.ID)
		return
	}

	id, cat, ok := DecodeCallback(cb.Data)
	ack := "Unknown action"
	if ok {
		ack = id.Label()
		handle(id, cat)
	}
	if _, err := t.bot.Request(tgbotapi.NewCallback(cb.ID, ack)); err != nil {
		logging.DebugLog("callback ack failed", logging.KeyError, err)
	}
}
