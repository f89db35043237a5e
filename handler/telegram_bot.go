package handler

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"VoteBot/model"
	"VoteBot/repo"
)

// MessageSender is the part of *bot.Bot the handler replies through.
type MessageSender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
}

// TelegramBotHandler feeds Telegram chats into the dispatcher. Each chat is
// its own room.
type TelegramBotHandler struct {
	dispatcher *Dispatcher
}

func NewTelegramBotHandler(d *Dispatcher) *TelegramBotHandler {
	return &TelegramBotHandler{dispatcher: d}
}

// Handler is registered as the bot's default handler.
func (t *TelegramBotHandler) Handler(ctx context.Context, b *bot.Bot, update *models.Update) {
	t.Handle(ctx, b, update)
}

func (t *TelegramBotHandler) Handle(ctx context.Context, sender MessageSender, update *models.Update) {
	if update.Message == nil {
		return
	}

	chatID := update.Message.Chat.ID
	username := "User"
	if from := update.Message.From; from != nil {
		username = from.Username
		if username == "" {
			username = from.FirstName
		}
	}

	id := uuid.NewString()
	logger := log.With().Str("request_id", id).Int64("chat_id", chatID).Logger()
	ctx = logger.WithContext(repo.WithRequestID(ctx, id))
	logger.Info().Str("user", username).Str("text", update.Message.Text).Msg("telegram message")

	room := strconv.FormatInt(chatID, 10)
	var replies []string
	text := commandText(update.Message.Text)
	dispatch := true
	if text == "start" {
		replies = append(replies, fmt.Sprintf("Hey %s! I'm %s, I help you create surveys and collect votes.", esc(username), model.BotName))
		// /start must not become the answer to an open question.
		if prompt, busy := t.dispatcher.Resume(room); busy {
			replies = append(replies, prompt)
			dispatch = false
		} else {
			text = "help"
		}
	}

	if dispatch {
		// The first message echoes the user's text, which Telegram already shows.
		messages := t.dispatcher.Handle(ctx, room, username, text)
		for _, m := range messages[1:] {
			replies = append(replies, m.Text)
		}
	}

	for _, text := range replies {
		params := &bot.SendMessageParams{
			ChatID:    chatID,
			Text:      strings.ReplaceAll(text, "<br>", "\n"),
			ParseMode: models.ParseModeHTML,
		}
		if _, err := sender.SendMessage(ctx, params); err != nil {
			logger.Error().Err(err).Msg("error sending message")
		}
	}
}

// commandText turns Telegram commands into plain chat commands:
// "/vote@VoteBot abc" becomes "vote abc".
func commandText(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return text
	}
	command, param := text[1:], ""
	if i := strings.IndexFunc(command, isSpace); i >= 0 {
		command, param = command[:i], command[i:]
	}
	if at := strings.IndexByte(command, '@'); at >= 0 {
		command = command[:at]
	}
	return strings.TrimSpace(command + param)
}
