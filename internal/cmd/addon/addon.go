// Package addon parses addon command flags and launches the addon runtime.
package addon

import (
	"context"
	"flag"
	"time"

	entrypoint "github.com/cartside/addons/internal/platform/cmd"
	addonserver "github.com/cartside/addons/internal/services/addon/app"
)

// Config holds addon command configuration.
type Config struct {
	HTTPAddr           string        `env:"CARTSIDE_ADDON_HTTP_ADDR" envDefault:":8091"`
	HealthPort         int           `env:"CARTSIDE_ADDON_HEALTH_PORT" envDefault:"8092"`
	StorefrontURL      string        `env:"CARTSIDE_ADDON_STOREFRONT_URL"`
	DBPath             string        `env:"CARTSIDE_ADDON_DB_PATH" envDefault:"data/addon.db"`
	SettleDelay        time.Duration `env:"CARTSIDE_ADDON_SETTLE_DELAY" envDefault:"300ms"`
	DedupeRetention    time.Duration `env:"CARTSIDE_ADDON_DEDUPE_RETENTION" envDefault:"10s"`
	RefreshMinInterval time.Duration `env:"CARTSIDE_ADDON_REFRESH_MIN_INTERVAL" envDefault:"1s"`
	NoticeDuration     time.Duration `env:"CARTSIDE_ADDON_NOTICE_DURATION" envDefault:"5s"`
	Locale             string        `env:"CARTSIDE_ADDON_LOCALE" envDefault:"en"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "The storefront gateway HTTP listen address")
	fs.IntVar(&cfg.HealthPort, "health-port", cfg.HealthPort, "The addon health gRPC server port")
	fs.StringVar(&cfg.StorefrontURL, "storefront-url", cfg.StorefrontURL, "The host storefront base URL")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "The addon SQLite database path")
	fs.DurationVar(&cfg.SettleDelay, "settle-delay", cfg.SettleDelay, "Wait before appending after a cart update")
	fs.DurationVar(&cfg.DedupeRetention, "dedupe-retention", cfg.DedupeRetention, "How long processed event identifiers are kept")
	fs.DurationVar(&cfg.RefreshMinInterval, "refresh-min-interval", cfg.RefreshMinInterval, "Minimum gap between cart count refreshes")
	fs.DurationVar(&cfg.NoticeDuration, "notice-duration", cfg.NoticeDuration, "How long failure notices stay visible")
	fs.StringVar(&cfg.Locale, "locale", cfg.Locale, "BCP 47 locale for user-visible notices")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the addon runtime.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceAddon, func(context.Context) error {
		return addonserver.Run(ctx, addonserver.RuntimeConfig{
			HTTPAddr:           cfg.HTTPAddr,
			HealthPort:         cfg.HealthPort,
			StorefrontURL:      cfg.StorefrontURL,
			DBPath:             cfg.DBPath,
			SettleDelay:        cfg.SettleDelay,
			DedupeRetention:    cfg.DedupeRetention,
			RefreshMinInterval: cfg.RefreshMinInterval,
			NoticeDuration:     cfg.NoticeDuration,
			Locale:             cfg.Locale,
		})
	})
}
