// Package source reads raw promotional messages from the configured
// Telegram broadcast channel.
package source

import (
	"context"
	"log/slog"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/dealscout/dealscout/internal/models"
)

// maxBuffered bounds the in-memory backlog between cycles. The channel
// posts a handful of promotions per hour, so this is generous.
const maxBuffered = 500

// TelegramReader buffers channel posts from the bot updates stream and
// drains them batch-wise, one batch per extraction cycle.
type TelegramReader struct {
	bot       *tgbotapi.BotAPI
	channelID int64

	mu     sync.Mutex
	buffer []models.RawMessage
}

func NewTelegramReader(bot *tgbotapi.BotAPI, channelID int64) *TelegramReader {
	r := &TelegramReader{bot: bot, channelID: channelID}
	go r.listen()
	return r
}

func (r *TelegramReader) listen() {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := r.bot.GetUpdatesChan(u)

	for update := range updates {
		post := update.ChannelPost
		if post == nil || post.Chat == nil || post.Chat.ID != r.channelID {
			continue
		}
		msg := models.RawMessage{
			Text:      messageText(post),
			PhotoRef:  largestPhotoRef(post),
			MessageID: post.MessageID,
			ChannelID: post.Chat.ID,
		}
		if msg.Text == "" {
			continue
		}
		r.push(msg)
	}
	slog.Warn("Telegram updates stream closed")
}

func (r *TelegramReader) push(msg models.RawMessage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.buffer = append(r.buffer, msg)
	if len(r.buffer) > maxBuffered {
		r.buffer = r.buffer[len(r.buffer)-maxBuffered:]
	}
}

// ReadMessages drains up to limit buffered messages in arrival order.
func (r *TelegramReader) ReadMessages(_ context.Context, limit int) ([]models.RawMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := len(r.buffer)
	if n > limit {
		n = limit
	}
	batch := make([]models.RawMessage, n)
	copy(batch, r.buffer[:n])
	r.buffer = r.buffer[n:]
	return batch, nil
}

func messageText(post *tgbotapi.Message) string {
	if post.Text != "" {
		return post.Text
	}
	return post.Caption
}

// largestPhotoRef picks the highest-resolution attached photo, matching what
// the publisher will want to re-send.
func largestPhotoRef(post *tgbotapi.Message) string {
	var best string
	var bestArea int
	for _, p := range post.Photo {
		if area := p.Width * p.Height; area > bestArea {
			bestArea = area
			best = p.FileID
		}
	}
	return best
}
