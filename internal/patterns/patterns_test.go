package patterns

import (
	"testing"
)

func ukLibrary() *Library {
	return New("£", ".",
		[]string{"www.amazon.co.uk", "amazon.co.uk"},
		[]string{"amzn.to", "amzn.eu"})
}

func TestValidID(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want bool
	}{
		{"canonical id", "B0DS63GM2Z", true},
		{"digits only", "1234567890", true},
		{"too short", "B0DS63GM2", false},
		{"too long", "B0DS63GM2ZX", false},
		{"lowercase", "b0ds63gm2z", false},
		{"empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidID(tt.in); got != tt.want {
				t.Errorf("ValidID(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestFindURL(t *testing.T) {
	lib := ukLibrary()

	tests := []struct {
		name    string
		text    string
		want    string
		wantHit bool
	}{
		{
			name:    "product link",
			text:    "Great deal https://www.amazon.co.uk/dp/B0DS63GM2Z/?tag=old-21 today",
			want:    "https://www.amazon.co.uk/dp/B0DS63GM2Z/?tag=old-21",
			wantHit: true,
		},
		{
			name:    "short link",
			text:    "check https://amzn.to/3xYzAbC now",
			want:    "https://amzn.to/3xYzAbC",
			wantHit: true,
		},
		{
			name:    "foreign store ignored",
			text:    "https://www.example.com/dp/B0DS63GM2Z",
			wantHit: false,
		},
		{
			name:    "no link",
			text:    "just words, no deal here",
			wantHit: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, hit := lib.FindURL(tt.text)
			if hit != tt.wantHit {
				t.Fatalf("FindURL() hit = %v, want %v", hit, tt.wantHit)
			}
			if hit && got != tt.want {
				t.Errorf("FindURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsShortLink(t *testing.T) {
	lib := ukLibrary()
	if !lib.IsShortLink("amzn.to") {
		t.Error("amzn.to should be a short-link host")
	}
	if lib.IsShortLink("www.amazon.co.uk") {
		t.Error("www.amazon.co.uk is a store host, not a short link")
	}
}

func TestPrices(t *testing.T) {
	lib := ukLibrary()

	tests := []struct {
		name         string
		text         string
		wantContains []int64
		wantEmpty    bool
	}{
		{
			name:         "symbol before amount",
			text:         "Only £2.49 today",
			wantContains: []int64{249},
		},
		{
			name:         "amount before symbol",
			text:         "9.99£ shipped",
			wantContains: []int64{999},
		},
		{
			name:         "keyword prefixed",
			text:         "Was: £19.99 Now: £9.99",
			wantContains: []int64{1999, 999},
		},
		{
			name:      "no price",
			text:      "50% off everything",
			wantEmpty: true,
		},
		{
			name:      "bare integer is not a price",
			text:      "pack of 12",
			wantEmpty: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			signals := lib.Prices(tt.text)
			if tt.wantEmpty {
				if len(signals) != 0 {
					t.Fatalf("Prices(%q) = %v, want none", tt.text, signals)
				}
				return
			}
			got := make(map[int64]bool)
			for _, s := range signals {
				got[s.Minor] = true
			}
			for _, want := range tt.wantContains {
				if !got[want] {
					t.Errorf("Prices(%q) missing %d, got %v", tt.text, want, signals)
				}
			}
		})
	}
}

func TestPricesItalianSeparator(t *testing.T) {
	lib := New("€", ",", []string{"www.amazon.it"}, []string{"amzn.to"})
	signals := lib.Prices("solo €12,50 oggi")
	if len(signals) == 0 {
		t.Fatal("expected a price signal for €12,50")
	}
	if signals[0].Minor != 1250 {
		t.Errorf("Minor = %d, want 1250", signals[0].Minor)
	}
}

func TestDiscount(t *testing.T) {
	lib := ukLibrary()

	tests := []struct {
		name    string
		text    string
		want    int
		wantHit bool
	}{
		{"off suffix", "now 20% off", 20, true},
		{"save prefix", "save 35%", 35, true},
		{"price drop", "💥 50% Price drop", 50, true},
		{"dash prefix", "-15% today only", 15, true},
		{"bare percentage ignored", "grab 40% while it lasts", 0, false},
		{"material percentage ignored", "100% cotton T-Shirt", 0, false},
		{"zero rejected", "0% off", 0, false},
		{"over hundred rejected", "120% off", 0, false},
		{"no percentage", "best deal ever", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, hit := lib.Discount(tt.text)
			if hit != tt.wantHit {
				t.Fatalf("Discount(%q) hit = %v, want %v", tt.text, hit, tt.wantHit)
			}
			if hit && got != tt.want {
				t.Errorf("Discount(%q) = %d, want %d", tt.text, got, tt.want)
			}
		})
	}
}

func TestProductID(t *testing.T) {
	lib := ukLibrary()

	tests := []struct {
		name    string
		path    string
		want    string
		wantHit bool
	}{
		{"dp path", "/dp/B0DS63GM2Z", "B0DS63GM2Z", true},
		{"dp with trailing slash", "/dp/B0DS63GM2Z/", "B0DS63GM2Z", true},
		{"gp product path", "/gp/product/B0DS63GM2Z", "B0DS63GM2Z", true},
		{"bare segment", "/B0DS63GM2Z", "B0DS63GM2Z", true},
		{"dp with slug prefix", "/some-product-name/dp/B0DS63GM2Z", "B0DS63GM2Z", true},
		{"short token", "/dp/B0DS63", "", false},
		{"no id", "/gp/bestsellers", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, hit := lib.ProductID(tt.path)
			if hit != tt.wantHit {
				t.Fatalf("ProductID(%q) hit = %v, want %v", tt.path, hit, tt.wantHit)
			}
			if hit && got != tt.want {
				t.Errorf("ProductID(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}
