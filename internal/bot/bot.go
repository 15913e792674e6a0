package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/jaruiz/ticket-scan-bot/internal/extraction"
)

const (
	welcomeMessage = "¡Hola! Envíame una foto de tu ticket de restaurante y usaré la inteligencia artificial " +
		"para extraer la información. Asegúrate de que el texto sea lo más legible posible para obtener los mejores resultados."

	ackMessage = "He recibido tu foto. Dame un momento mientras la IA la analiza..."

	failureMessage = "Lo siento, hubo un error al procesar tu foto. " +
		"Asegúrate de que la foto sea un ticket real y con texto legible."
)

// Bot wires the Telegram transport to the extraction pipeline.
type Bot struct {
	api      *tgbotapi.BotAPI
	pipeline *Pipeline
}

// New creates a Bot for the given token. tempDir is where images are
// staged; empty means the system temp directory.
func New(token string, vision extraction.VisionClient, tempDir string) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("creating telegram client: %w", err)
	}

	return &Bot{
		api:      api,
		pipeline: NewPipeline(newTelegramStager(api, tempDir), vision),
	}, nil
}

// Run polls for updates until ctx is cancelled, dispatching one
// goroutine per update. Requests share nothing but the read-only
// clients.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := b.api.GetUpdatesChan(u)

	slog.Info("Bot started, listening for messages", "username", b.api.Self.UserName)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			go b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil {
		return
	}

	switch {
	case msg.IsCommand():
		if msg.Command() == "start" {
			b.send(msg.Chat.ID, welcomeMessage)
		}
	case len(msg.Photo) > 0:
		// Telegram orders photo variants smallest first.
		photo := msg.Photo[len(msg.Photo)-1]
		b.handleReceipt(ctx, msg, photo.FileID, "image/jpeg")
	case msg.Document != nil && isReceiptDocument(msg.Document.MimeType):
		b.handleReceipt(ctx, msg, msg.Document.FileID, msg.Document.MimeType)
	}
}

// isReceiptDocument reports whether a document attachment can be
// staged: images (including HEIC) and PDF scans.
func isReceiptDocument(mimeType string) bool {
	mimeType = strings.ToLower(mimeType)
	return mimeType == "application/pdf" || strings.HasPrefix(mimeType, "image/")
}

func (b *Bot) handleReceipt(ctx context.Context, msg *tgbotapi.Message, fileID string, contentType string) {
	if msg.From != nil {
		slog.Info("Photo received", "from", msg.From.FirstName, "user_id", msg.From.ID)
	}
	b.send(msg.Chat.ID, ackMessage)

	reply, err := b.pipeline.Process(ctx, fileID, contentType)
	if err != nil {
		slog.Error("Failed to process receipt photo", "error", err)
		b.send(msg.Chat.ID, failureMessage)
		return
	}

	b.sendMarkdown(msg.Chat.ID, reply)
}

func (b *Bot) send(chatID int64, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		slog.Warn("Failed to send message", "chat_id", chatID, "error", err)
	}
}

func (b *Bot) sendMarkdown(chatID int64, text string) {
	reply := tgbotapi.NewMessage(chatID, text)
	reply.ParseMode = tgbotapi.ModeMarkdown
	if _, err := b.api.Send(reply); err != nil {
		slog.Warn("Failed to send message", "chat_id", chatID, "error", err)
	}
}
