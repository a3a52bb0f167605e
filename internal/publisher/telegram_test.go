package publisher

import (
	"strings"
	"testing"

	"github.com/dealscout/dealscout/internal/models"
)

func testDeal() models.Deal {
	return models.Deal{
		ProductID:         "B0DS63GM2Z",
		Title:             "Kettle Deluxe 1.7L",
		CurrentPriceMinor: 999,
		ListPriceMinor:    1999,
		DiscountPercent:   50,
		SourceURL:         "https://www.amazon.co.uk/dp/B0DS63GM2Z",
		AffiliateURL:      "https://www.amazon.co.uk/dp/B0DS63GM2Z?tag=deals-21",
		Country:           "UK",
	}
}

func TestRender(t *testing.T) {
	p := &TelegramPublisher{currency: "£", disclosure: "https://t.me/dealsdisclosure"}
	body := p.render(testDeal())

	for _, want := range []string{
		"DEAL ALERT",
		"Kettle Deluxe 1.7L",
		"£9.99",
		"~£19.99~",
		"-50%",
		"#affiliate: https://t.me/dealsdisclosure",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("render() missing %q in:\n%s", want, body)
		}
	}
}

func TestRenderWithoutListPrice(t *testing.T) {
	p := &TelegramPublisher{currency: "£"}
	deal := testDeal()
	deal.ListPriceMinor = deal.CurrentPriceMinor
	deal.DiscountPercent = 0
	body := p.render(deal)

	if strings.Contains(body, "~") {
		t.Errorf("render() shows strikethrough without a higher list price:\n%s", body)
	}
	if strings.Contains(body, "Discount") {
		t.Errorf("render() shows discount line for 0%%:\n%s", body)
	}
	if strings.Contains(body, "#affiliate") {
		t.Errorf("render() shows disclosure without one configured:\n%s", body)
	}
}

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		minor int64
		want  string
	}{
		{249, "£2.49"},
		{999, "£9.99"},
		{100000, "£1000.00"},
		{5, "£0.05"},
	}
	for _, tt := range tests {
		if got := formatMoney("£", tt.minor); got != tt.want {
			t.Errorf("formatMoney(£, %d) = %q, want %q", tt.minor, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate(short) = %q", got)
	}
	long := strings.Repeat("x", 20)
	got := truncate(long, 10)
	if len([]rune(got)) != 10 {
		t.Errorf("len(truncate) = %d, want 10", len([]rune(got)))
	}
	if !strings.HasSuffix(got, "…") {
		t.Errorf("truncate = %q, want … suffix", got)
	}
}

func TestEscapeMarkdown(t *testing.T) {
	got := escapeMarkdown("50_shades *of* [grey] `code`")
	want := `50\_shades \*of\* \[grey] \` + "`" + `code\` + "`"
	if got != want {
		t.Errorf("escapeMarkdown = %q, want %q", got, want)
	}
}

func TestShareKeyboard(t *testing.T) {
	kb := shareKeyboard("https://www.amazon.co.uk/dp/B0DS63GM2Z?tag=deals-21", "Kettle Deluxe")

	if len(kb.InlineKeyboard) != 3 {
		t.Fatalf("keyboard rows = %d, want 3", len(kb.InlineKeyboard))
	}
	buy := kb.InlineKeyboard[0][0]
	if buy.URL == nil || *buy.URL != "https://www.amazon.co.uk/dp/B0DS63GM2Z?tag=deals-21" {
		t.Errorf("buy button URL = %v", buy.URL)
	}
	wa := kb.InlineKeyboard[1][0]
	if wa.URL == nil || !strings.HasPrefix(*wa.URL, "https://wa.me/?text=") {
		t.Errorf("WhatsApp button URL = %v", wa.URL)
	}
	for _, row := range kb.InlineKeyboard {
		for _, btn := range row {
			if btn.URL == nil || strings.ContainsAny(*btn.URL, " \n") {
				t.Errorf("button %q has unescaped URL %v", btn.Text, btn.URL)
			}
		}
	}
}
