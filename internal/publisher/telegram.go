// Package publisher posts accepted deals to the output Telegram channel.
package publisher

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"

	"github.com/dealscout/dealscout/internal/models"
)

// Telegram hard limits.
const (
	captionLimit = 1024
	messageLimit = 4096
)

type TelegramPublisher struct {
	bot        *tgbotapi.BotAPI
	channelID  int64
	currency   string
	disclosure string
	limiter    *rate.Limiter
}

// NewTelegram builds a publisher for the given output channel. disclosure,
// when non-empty, is appended as the affiliate disclosure link. Sends are
// paced to one per two seconds to stay clear of Telegram rate limits.
func NewTelegram(bot *tgbotapi.BotAPI, channelID int64, currency, disclosure string) *TelegramPublisher {
	return &TelegramPublisher{
		bot:        bot,
		channelID:  channelID,
		currency:   currency,
		disclosure: disclosure,
		limiter:    rate.NewLimiter(rate.Every(2*time.Second), 1),
	}
}

// Publish renders the deal and sends it: photo with caption when the deal
// carries one (falling back to plain text if the photo send fails), text
// message otherwise. Failures are the caller's to count, never retried here.
func (p *TelegramPublisher) Publish(ctx context.Context, deal models.Deal) error {
	if err := p.limiter.Wait(ctx); err != nil {
		return err
	}

	body := p.render(deal)
	keyboard := shareKeyboard(deal.AffiliateURL, deal.Title)

	if deal.PhotoRef != "" {
		photo := tgbotapi.NewPhoto(p.channelID, tgbotapi.FileID(deal.PhotoRef))
		photo.Caption = truncate(body, captionLimit)
		photo.ParseMode = tgbotapi.ModeMarkdown
		photo.ReplyMarkup = keyboard
		if _, err := p.bot.Send(photo); err == nil {
			return nil
		} else {
			slog.Warn("Photo send failed, falling back to text", "id", deal.ProductID, "error", err)
		}
	}

	msg := tgbotapi.NewMessage(p.channelID, truncate(body, messageLimit))
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.ReplyMarkup = keyboard
	if _, err := p.bot.Send(msg); err != nil {
		return fmt.Errorf("send deal %s: %w", deal.ProductID, err)
	}
	return nil
}

func (p *TelegramPublisher) render(deal models.Deal) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🔥 *DEAL ALERT* 🔥\n\n")
	fmt.Fprintf(&b, "📦 %s\n\n", escapeMarkdown(deal.Title))
	fmt.Fprintf(&b, "💰 *Price*: %s\n", formatMoney(p.currency, deal.CurrentPriceMinor))
	if deal.ListPriceMinor > deal.CurrentPriceMinor {
		fmt.Fprintf(&b, "~%s~\n", formatMoney(p.currency, deal.ListPriceMinor))
	}
	if deal.DiscountPercent > 0 {
		fmt.Fprintf(&b, "\n🎯 *Discount*: -%d%%\n", deal.DiscountPercent)
	}
	if p.disclosure != "" {
		fmt.Fprintf(&b, "\n#affiliate: %s", p.disclosure)
	}
	return b.String()
}

func formatMoney(symbol string, minor int64) string {
	return fmt.Sprintf("%s%d.%02d", symbol, minor/100, minor%100)
}

// shareKeyboard mirrors the share buttons the channel has always carried:
// the buy link on top, then WhatsApp/Facebook and X/Telegram share intents.
func shareKeyboard(affiliateURL, title string) tgbotapi.InlineKeyboardMarkup {
	shareText := fmt.Sprintf("🔥 %s\n🛒 %s", title, affiliateURL)
	encodedText := url.QueryEscape(shareText)
	encodedURL := url.QueryEscape(affiliateURL)

	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("🛒 VIEW ON AMAZON", affiliateURL),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("💬 WhatsApp", "https://wa.me/?text="+encodedText),
			tgbotapi.NewInlineKeyboardButtonURL("👍 Facebook", "https://www.facebook.com/sharer/sharer.php?u="+encodedURL),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("𝕏 Share", "https://twitter.com/intent/tweet?text="+encodedText),
			tgbotapi.NewInlineKeyboardButtonURL("✈️ Telegram", "https://t.me/share/url?url="+encodedURL+"&text="+encodedText),
		),
	)
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}

// escapeMarkdown keeps titles with underscores or asterisks from breaking
// Telegram's Markdown parser.
func escapeMarkdown(text string) string {
	replacer := strings.NewReplacer(
		"_", "\\_",
		"*", "\\*",
		"[", "\\[",
		"`", "\\`",
	)
	return replacer.Replace(text)
}
