package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything that differs per country plus process-level
// settings. Country-specific behavior is data here, never code: one engine
// consumes whichever Config it is given.
type Config struct {
	Country          string
	CurrencySymbol   string
	DecimalSeparator string
	Domains          []string // hosts accepted as product links
	ShortLinkDomains []string // hosts expanded via redirect before id extraction
	AffiliateTag     string

	// Disclosure link appended to republished deals, replacing whatever the
	// source channel embedded.
	DisclosureLink string

	MinDiscountPercent int
	MaxPriceMinor      int64
	BatchSize          int
	PublishLimit       int
	CycleInterval      time.Duration

	BotToken         string
	SourceChannelID  int64
	PublishChannelID int64

	Port string

	// Dedup backing. FirestoreProject wins over SeenFilePath; with neither
	// set the seen-set is memory only.
	FirestoreProject string
	SeenFilePath     string
}

// countryPresets carries the per-country defaults the original deployment
// duplicated across modules. Overridable through the environment.
var countryPresets = map[string]Config{
	"UK": {
		Country:          "UK",
		CurrencySymbol:   "£",
		DecimalSeparator: ".",
		Domains:          []string{"www.amazon.co.uk", "amazon.co.uk"},
		ShortLinkDomains: []string{"amzn.to", "amzn.eu"},
	},
	"IT": {
		Country:          "IT",
		CurrencySymbol:   "€",
		DecimalSeparator: ",",
		Domains:          []string{"www.amazon.it", "amazon.it"},
		ShortLinkDomains: []string{"amzn.to", "amzn.eu"},
	},
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	country := getEnv("WORKER_COUNTRY", "UK")
	preset, ok := countryPresets[country]
	if !ok {
		return nil, fmt.Errorf("no preset for country %q", country)
	}
	cfg := preset

	cfg.AffiliateTag = os.Getenv("AFFILIATE_TAG")
	if cfg.AffiliateTag == "" {
		return nil, fmt.Errorf("AFFILIATE_TAG environment variable is required but not set")
	}

	cfg.BotToken = os.Getenv("WORKER_BOT_TOKEN")
	if cfg.BotToken == "" {
		return nil, fmt.Errorf("WORKER_BOT_TOKEN environment variable is required but not set")
	}

	var err error
	cfg.SourceChannelID, err = requiredInt64("SOURCE_CHANNEL_ID")
	if err != nil {
		return nil, err
	}
	cfg.PublishChannelID, err = requiredInt64("PUBLISH_CHANNEL_ID")
	if err != nil {
		return nil, err
	}

	cfg.DisclosureLink = os.Getenv("DISCLOSURE_LINK")

	cfg.MinDiscountPercent, err = intEnv("MIN_DISCOUNT_PERCENT", 10)
	if err != nil {
		return nil, err
	}
	maxPrice, err := intEnv("MAX_PRICE_MINOR", 10000000)
	if err != nil {
		return nil, err
	}
	cfg.MaxPriceMinor = int64(maxPrice)

	cfg.BatchSize, err = intEnv("BATCH_SIZE", 50)
	if err != nil {
		return nil, err
	}
	cfg.PublishLimit, err = intEnv("PUBLISH_LIMIT", 5)
	if err != nil {
		return nil, err
	}

	intervalStr := getEnv("CYCLE_INTERVAL", "15m")
	cfg.CycleInterval, err = time.ParseDuration(intervalStr)
	if err != nil {
		return nil, fmt.Errorf("invalid CYCLE_INTERVAL %q: %w", intervalStr, err)
	}

	cfg.Port = os.Getenv("PORT")
	if cfg.Port == "" {
		cfg.Port = "8001"
		slog.Info("Defaulting to port", "port", cfg.Port)
	}

	cfg.FirestoreProject = os.Getenv("GOOGLE_CLOUD_PROJECT")
	cfg.SeenFilePath = os.Getenv("SEEN_FILE_PATH")
	if cfg.FirestoreProject == "" && cfg.SeenFilePath == "" {
		slog.Warn("No durable seen-store configured, deduplication is in-memory only")
	}

	return &cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func intEnv(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return parsed, nil
}

func requiredInt64(key string) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return 0, fmt.Errorf("%s environment variable is required but not set", key)
	}
	parsed, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return parsed, nil
}
