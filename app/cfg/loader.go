package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Application configuration
	Port   string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	DBPath string `long:"db-path" env:"DB_PATH" default:"./ideas.db" description:"Path to the sqlite database file"`

	// Admin credentials
	AdminUsername string `long:"admin-username" env:"ADMIN_USERNAME" default:"admin" description:"Admin dashboard username"`
	AdminPassword string `long:"admin-password" env:"ADMIN_PASSWORD" default:"changeme" description:"Admin dashboard password"`

	// Rate limiting
	RateLimitMaxAttempts int `long:"rate-limit-max-attempts" env:"RATE_LIMIT_MAX_ATTEMPTS" default:"3" description:"Maximum submissions allowed per address within the window"`
	RateLimitWindow      int `long:"rate-limit-window" env:"RATE_LIMIT_WINDOW" default:"3600" description:"Rate limit window in seconds"`

	// Content screening
	DenylistFile string `long:"denylist-file" env:"DENYLIST_FILE" description:"Path to a YAML denylist file overriding the built-in list (optional)"`

	// Notification configuration
	SMTPHost     string `long:"smtp-host" env:"SMTP_ADDRESS" description:"SMTP server host (notifications disabled when empty)"`
	SMTPPort     string `long:"smtp-port" env:"SMTP_PORT" default:"587" description:"SMTP server port"`
	SMTPUsername string `long:"smtp-username" env:"SMTP_USERNAME" description:"SMTP username"`
	SMTPPassword string `long:"smtp-password" env:"SMTP_PASSWORD" description:"SMTP password"`
	NotifyEmail  string `long:"notify-email" env:"ADMIN_EMAIL" description:"Recipient address for submission notifications"`
	NotifyFrom   string `long:"notify-from" env:"NOTIFY_FROM" default:"noreply@dumbidea.app" description:"Sender address for submission notifications"`

	// Application metadata
	Timezone string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/New_York)"`
	Debug    bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		Port:                 raw.Port,
		DBPath:               raw.DBPath,
		AdminUsername:        raw.AdminUsername,
		AdminPassword:        raw.AdminPassword,
		RateLimitMaxAttempts: raw.RateLimitMaxAttempts,
		RateLimitWindow:      raw.RateLimitWindow,
		DenylistFile:         raw.DenylistFile,
		SMTPHost:             raw.SMTPHost,
		SMTPPort:             raw.SMTPPort,
		SMTPUsername:         raw.SMTPUsername,
		SMTPPassword:         raw.SMTPPassword,
		NotifyEmail:          raw.NotifyEmail,
		NotifyFrom:           raw.NotifyFrom,
		Timezone:             raw.Timezone,
		Debug:                raw.Debug,
		Version:              GetVersion(),
	}

	if cfg.RateLimitMaxAttempts <= 0 {
		return nil, fmt.Errorf("rate limit max attempts must be positive, got %d", cfg.RateLimitMaxAttempts)
	}
	if cfg.RateLimitWindow <= 0 {
		return nil, fmt.Errorf("rate limit window must be positive, got %d", cfg.RateLimitWindow)
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

// Set replaces the global configuration. Intended for tests that bypass
// flag parsing.
func Set(c *Cfg) {
	globalCfg = c
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}
