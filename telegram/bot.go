package telegram

import (
	"emsp/internal"
	"emsp/ocpi/commands"
	"emsp/ocpi/observer"
	"fmt"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
	"log"
	"strings"
)

// TgBot implements observer.Observer and reports the outcome of commands to the configured chats
type TgBot struct {
	api     *tgbotapi.BotAPI
	chatIds []int64
	logger  internal.LogHandler
	event   chan MessageContent
	send    chan MessageContent
}

type MessageContent struct {
	ChatID int64
	Text   string
}

func NewBot(apiKey string, chatIds []int64) (*TgBot, error) {
	tgBot := newBot(chatIds)
	api, err := tgbotapi.NewBotAPI(apiKey)
	if err != nil {
		return nil, err
	}
	tgBot.api = api
	return tgBot, nil
}

func newBot(chatIds []int64) *TgBot {
	return &TgBot{
		chatIds: chatIds,
		logger:  internal.Discard,
		event:   make(chan MessageContent, 100),
		send:    make(chan MessageContent, 100),
	}
}

func (b *TgBot) SetLogger(logger internal.LogHandler) {
	b.logger = internal.OrDiscard(logger)
}

func (b *TgBot) Start() {
	go b.sendPump()
	go b.eventPump()
}

// eventPump fans every event out to all chats
func (b *TgBot) eventPump() {
	for event := range b.event {
		for _, id := range b.chatIds {
			b.send <- MessageContent{ChatID: id, Text: event.Text}
		}
	}
}

func (b *TgBot) sendPump() {
	for event := range b.send {
		b.sendMessage(event.ChatID, event.Text)
	}
}

// sendMessage common routine to send a message via bot API
func (b *TgBot) sendMessage(id int64, text string) {
	msg := tgbotapi.NewMessage(id, text)
	msg.ParseMode = "MarkdownV2"
	_, err := b.api.Send(msg)
	if err != nil {
		// maybe error was while parsing, so we can send a message about this error
		msg = tgbotapi.NewMessage(id, fmt.Sprintf("Error: %v", err))
		_, err = b.api.Send(msg)
		if err != nil {
			log.Printf("bot: error sending message: %v", err)
		}
	}
}

func (b *TgBot) OnRequest(_ *observer.RequestEvent) {}

func (b *TgBot) OnResponse(_ *observer.ResponseEvent) {}

// OnCommand reports rejected commands, final results and entries that expired without a result.
func (b *TgBot) OnCommand(event *observer.CommandEvent) {
	var msg string
	switch event.Stage {
	case observer.StageResponse:
		if event.Result == string(commands.ResponseAccepted) {
			return
		}
		msg = fmt.Sprintf("*%v*: `%v`\nResponse: `%v`\n", sanitize(event.CommandType), sanitize(event.CommandId), sanitize(event.Result))
	case observer.StageResult:
		msg = fmt.Sprintf("*%v*: `%v`\nResult: `%v`\n", sanitize(event.CommandType), sanitize(event.CommandId), sanitize(event.Result))
	case observer.StageExpired:
		if !event.NoResult {
			return
		}
		msg = fmt.Sprintf("*%v*: `%v`\nNo result received\n", sanitize(event.CommandType), sanitize(event.CommandId))
	default:
		return
	}
	if event.Message != "" {
		msg += fmt.Sprintf("%v\n", sanitize(event.Message))
	}
	b.enqueue(msg)
}

// enqueue never blocks the observer chain; messages are dropped when the queue is full
func (b *TgBot) enqueue(text string) {
	select {
	case b.event <- MessageContent{Text: text}:
	default:
		b.logger.Warn("bot: event queue is full, message dropped")
	}
}

func sanitize(input string) string {
	// Define a list of reserved characters that need to be escaped
	reservedChars := "\\`*_{}[]()#+-.!|>=~"

	var sanitized strings.Builder
	for _, char := range input {
		if strings.ContainsRune(reservedChars, char) {
			sanitized.WriteRune('\\')
		}
		sanitized.WriteRune(char)
	}
	return sanitized.String()
}
