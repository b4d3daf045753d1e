package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Telegram holds the chat transport settings.
type Telegram struct {
	Token string
	// AuthorizedUsers is the allow-list of Telegram user IDs. Empty means
	// the bot answers anyone.
	AuthorizedUsers []int64
	// PollTimeout is the long-poll timeout in seconds.
	PollTimeout int
}

// LoadTelegram loads the transport settings. Precedence:
// 1. Viper configuration (config file or GASTOS_ env vars)
// 2. Direct environment variables (TELEGRAM_BOT_TOKEN, AUTHORIZED_USERS)
func LoadTelegram() (Telegram, error) {
	cfg := Telegram{
		Token:       viper.GetString("telegram.token"),
		PollTimeout: viper.GetInt("telegram.poll_timeout"),
	}
	if cfg.Token == "" {
		cfg.Token = os.Getenv("TELEGRAM_BOT_TOKEN")
	}
	if cfg.Token == "" {
		return Telegram{}, fmt.Errorf("missing Telegram bot token: set telegram.token or TELEGRAM_BOT_TOKEN")
	}
	if cfg.PollTimeout <= 0 {
		cfg.PollTimeout = 30
	}

	entries := viper.GetStringSlice("telegram.authorized_users")
	if len(entries) == 0 {
		entries = splitList(os.Getenv("AUTHORIZED_USERS"))
	}
	users, err := parseUserIDs(entries)
	if err != nil {
		return Telegram{}, err
	}
	cfg.AuthorizedUsers = users

	return cfg, nil
}

func splitList(raw string) []string {
	var entries []string
	for _, entry := range strings.Split(raw, ",") {
		if entry = strings.TrimSpace(entry); entry != "" {
			entries = append(entries, entry)
		}
	}
	return entries
}

func parseUserIDs(entries []string) ([]int64, error) {
	users := make([]int64, 0, len(entries))
	for _, entry := range entries {
		id, err := strconv.ParseInt(strings.TrimSpace(entry), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid authorized user ID %q: %w", entry, err)
		}
		users = append(users, id)
	}
	return users, nil
}

// DatabasePath returns the SQLite database location. Precedence: Viper,
// the DB_PATH environment variable, then the default under the user's
// data directory.
func DatabasePath() (string, error) {
	if v := viper.GetString("database.path"); v != "" {
		return ExpandPath(v), nil
	}
	if v := os.Getenv("DB_PATH"); v != "" {
		return ExpandPath(v), nil
	}

	dir, err := dataDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve data directory: %w", err)
	}
	return filepath.Join(dir, "gastosbot.db"), nil
}

// Blob selects and parameterizes the receipt photo backend.
type Blob struct {
	Backend string // "local" or "gcs"
	Dir     string // local backend root
	Bucket  string // gcs backend bucket
}

// LoadBlob loads the photo store settings, defaulting to a local directory
// next to the database.
func LoadBlob() (Blob, error) {
	cfg := Blob{
		Backend: viper.GetString("blob.backend"),
		Dir:     ExpandPath(viper.GetString("blob.dir")),
		Bucket:  viper.GetString("blob.bucket"),
	}
	if cfg.Backend == "" {
		cfg.Backend = "local"
	}

	switch cfg.Backend {
	case "local":
		if cfg.Dir == "" {
			dir, err := dataDir()
			if err != nil {
				return Blob{}, fmt.Errorf("failed to resolve data directory: %w", err)
			}
			cfg.Dir = filepath.Join(dir, "photos")
		}
	case "gcs":
		if cfg.Bucket == "" {
			return Blob{}, fmt.Errorf("blob.backend is gcs but blob.bucket is not set")
		}
	default:
		return Blob{}, fmt.Errorf("unknown blob backend %q (want local or gcs)", cfg.Backend)
	}

	return cfg, nil
}

// DailyTrigger is the time of day the recurring engine runs.
type DailyTrigger struct {
	Hour   int
	Minute int
}

// CronSpec renders the trigger as a standard five-field cron expression.
func (d DailyTrigger) CronSpec() string {
	return fmt.Sprintf("%d %d * * *", d.Minute, d.Hour)
}

// LoadRecurring parses recurring.daily_at ("HH:MM", default 08:00).
func LoadRecurring() (DailyTrigger, error) {
	raw := viper.GetString("recurring.daily_at")
	if raw == "" {
		return DailyTrigger{Hour: 8}, nil
	}

	hh, mm, found := strings.Cut(raw, ":")
	if !found {
		return DailyTrigger{}, fmt.Errorf("invalid recurring.daily_at %q: want HH:MM", raw)
	}
	hour, err := strconv.Atoi(hh)
	if err != nil || hour < 0 || hour > 23 {
		return DailyTrigger{}, fmt.Errorf("invalid recurring.daily_at %q: hour outside 0-23", raw)
	}
	minute, err := strconv.Atoi(mm)
	if err != nil || minute < 0 || minute > 59 {
		return DailyTrigger{}, fmt.Errorf("invalid recurring.daily_at %q: minute outside 0-59", raw)
	}

	return DailyTrigger{Hour: hour, Minute: minute}, nil
}

// LoadLocation resolves the configured IANA timezone, defaulting to the
// system's local zone. Day bounds and the recurring trigger both use it.
func LoadLocation() (*time.Location, error) {
	name := viper.GetString("timezone")
	if name == "" {
		return time.Local, nil
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", name, err)
	}
	return loc, nil
}
