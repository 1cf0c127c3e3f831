package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/apex/log"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	app "crop-breed-bot/internal/application"
	"crop-breed-bot/internal/container"
	"crop-breed-bot/internal/domain/entity"
)

const (
	msgStart = `🌱 Hi! I am the Crop Breed Generator.

Send me photos of two crops and I will invent a new breed that combines the best features of both.

📋 Commands:
/breed — start a new breed
/help — how it works
/cancel — cancel the current breed`

	msgHelp = `ℹ️ How it works:

1️⃣ Send a photo of the first crop
2️⃣ Send a photo of the second crop
3️⃣ AI analyzes both and describes a hypothetical new breed
4️⃣ You get the description as a message and as a text file

🔧 Tips:
• Use clear, well-lit crop images
• Images of mature crops work best
• Try different combinations for variety

This is for creative/educational purposes only. Real crop breeding involves complex genetics and extensive testing.`

	msgAwaitingFirst   = "🌾 Send a photo of the first crop."
	msgAwaitingSecond  = "🌽 Got it! Now send a photo of the second crop."
	msgCancelled       = "❌ Cancelled. Send /breed to start again."
	msgSendPhoto       = "📸 Please send a crop photo. Both crop images are needed to generate a new breed."
	msgUnknownCommand  = "❓ Unknown command. Use /help."
	msgProcessing      = "⏳ Analyzing crops and generating new breed..."
	msgBusy            = "⏳ Still working on your previous breed, please wait."
	msgResultHeader    = "🎉 Your New Crop Breed!"
	msgProcessingError = "⚠️ Could not process the photo. Please try another one."

	// Ограничение Telegram на длину текста сообщения
	maxMessageLen = 4096
)

// Bot представляет Telegram-бота
type Bot struct {
	api    *tgbotapi.BotAPI
	users  *app.UserService
	breeds *app.BreedService
}

// NewBot создаёт нового бота
func NewBot(token string, c *container.Container) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	log.Infof("Authorized on account %s", api.Self.UserName)

	return &Bot{
		api:    api,
		users:  c.UserService,
		breeds: c.BreedService,
	}, nil
}

// Run обрабатывает сообщения по одному, пока не отменён ctx
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil {
				continue
			}
			b.handleMessage(ctx, update.Message)
		}
	}
}

// handleMessage обрабатывает входящее сообщение
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil {
		return
	}

	// Обработка команд
	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}

	// Фото, в том числе присланное файлом
	if fileID, ok := imageFileID(msg); ok {
		b.handlePhoto(ctx, msg, fileID)
		return
	}

	b.sendMessage(msg.Chat.ID, msgSendPhoto)
}

// handleCommand обрабатывает команды бота
func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	userID, chatID := msg.From.ID, msg.Chat.ID

	switch msg.Command() {
	case "start":
		if _, err := b.breeds.CancelBreed(ctx, userID, chatID); err != nil {
			log.WithError(err).Error("failed to reset user")
		}
		b.sendMessage(chatID, msgStart)

	case "help":
		b.sendMessage(chatID, msgHelp)

	case "breed":
		if _, err := b.users.BeginBreed(ctx, userID, chatID); err != nil {
			log.WithError(err).Error("failed to begin breed")
			return
		}
		b.sendMessage(chatID, msgAwaitingFirst)

	case "cancel":
		if _, err := b.breeds.CancelBreed(ctx, userID, chatID); err != nil {
			log.WithError(err).Error("failed to cancel breed")
		}
		b.sendMessage(chatID, msgCancelled)

	default:
		b.sendMessage(chatID, msgUnknownCommand)
	}
}

// handlePhoto скачивает фото и передаёт его в сервис
func (b *Bot) handlePhoto(ctx context.Context, msg *tgbotapi.Message, fileID string) {
	chatID := msg.Chat.ID
	logger := log.WithFields(log.Fields{"user_id": msg.From.ID, "chat_id": chatID})

	user, err := b.users.Get(ctx, msg.From.ID, chatID)
	if err != nil {
		logger.WithError(err).Error("failed to get user")
		return
	}
	if user.IsBusy() {
		b.sendMessage(chatID, msgBusy)
		return
	}
	if user.State == entity.StateAwaitingSecondCrop {
		b.sendMessage(chatID, msgProcessing)
	}

	imageData, err := b.downloadFile(fileID)
	if err != nil {
		logger.WithError(err).Error("failed to download photo")
		b.sendMessage(chatID, msgProcessingError)
		return
	}

	outcome, err := b.breeds.AcceptCrop(ctx, msg.From.ID, chatID, imageData)
	switch {
	case errors.Is(err, app.ErrBusy):
		b.sendMessage(chatID, msgBusy)
		return
	case errors.Is(err, entity.ErrMissingCrop):
		b.sendMessage(chatID, msgAwaitingFirst)
		return
	case err != nil:
		logger.WithError(err).Error("failed to accept crop")
		b.sendMessage(chatID, msgProcessingError)
		return
	}

	if outcome.Result == nil {
		logger.WithField("bytes", len(imageData)).Info("first crop received")
		b.sendMessage(chatID, msgAwaitingSecond)
		return
	}

	logger.WithFields(log.Fields{"result_id": outcome.Result.ID, "failed": outcome.Result.Failed}).Info("breed generated")
	b.sendResult(chatID, outcome.Result)
}

// sendResult отправляет текст частями и тот же текст файлом
func (b *Bot) sendResult(chatID int64, result *entity.BreedResult) {
	b.sendMessage(chatID, msgResultHeader)
	for _, chunk := range splitMessage(result.Text, maxMessageLen) {
		b.sendMessage(chatID, chunk)
	}

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
		Name:  entity.ResultFileName,
		Bytes: result.Bytes(),
	})
	doc.Caption = "📄 Breed Description"
	if _, err := b.api.Send(doc); err != nil {
		log.WithError(err).Error("failed to send breed document")
	}
}

// downloadFile скачивает файл из Telegram
func (b *Bot) downloadFile(fileID string) ([]byte, error) {
	file, err := b.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}

	fileURL := file.Link(b.api.Token)

	resp, err := http.Get(fileURL)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download file: unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	return data, nil
}

// sendMessage отправляет текстовое сообщение
func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		log.WithError(err).Error("failed to send message")
	}
}

// imageFileID выбирает фото максимального размера или изображение, присланное документом
func imageFileID(msg *tgbotapi.Message) (string, bool) {
	if len(msg.Photo) > 0 {
		return msg.Photo[len(msg.Photo)-1].FileID, true
	}
	if msg.Document != nil && strings.HasPrefix(msg.Document.MimeType, "image/") {
		return msg.Document.FileID, true
	}
	return "", false
}

// splitMessage режет текст на куски не длиннее limit, стараясь резать по строкам.
// Длина считается в UTF-16, как её считает Telegram: эмодзи занимают две единицы.
func splitMessage(text string, limit int) []string {
	if text == "" {
		return nil
	}

	var chunks []string
	for text != "" {
		units, cut, lastNL := 0, len(text), 0
		for i, r := range text {
			n := utf16.RuneLen(r)
			if n < 0 {
				n = 1
			}
			if units+n > limit {
				cut = i
				break
			}
			units += n
			if r == '\n' {
				lastNL = i + 1
			}
		}
		if cut < len(text) && lastNL > 0 {
			cut = lastNL
		}
		if cut == 0 {
			_, cut = utf8.DecodeRuneInString(text)
		}
		chunks = append(chunks, text[:cut])
		text = text[cut:]
	}
	return chunks
}
