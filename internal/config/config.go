package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Browser  BrowserConfig
	Dispatch DispatchConfig
	Batch    BatchConfig
	Auth     AuthConfig
	Probe    ProbeConfig
	Contacts ContactsConfig
	Database DatabaseConfig
	Server   ServerConfig
	Log      LogConfig
	Notify   NotifyConfig
}

type BrowserConfig struct {
	BaseURL         string
	SessionDir      string
	ChromePath      string
	Headless        bool
	PageLoadTimeout time.Duration
	LocatorsFile    string
}

type DispatchConfig struct {
	RetryLimit     int
	InputTimeout   time.Duration
	RetryBackoff   time.Duration
	SettleDelay    time.Duration
	MinTypingPause time.Duration
	MaxTypingPause time.Duration
	MinSendDelay   time.Duration
	MaxSendDelay   time.Duration
}

type BatchConfig struct {
	MaxPerMinute int
	DryRun       bool
}

type AuthConfig struct {
	LoginTimeout      time.Duration
	CredentialTimeout time.Duration
}

type ProbeConfig struct {
	Timeout time.Duration
}

type ContactsConfig struct {
	Source    string // csv or db
	CSVFile   string
	Delimiter rune
	Tag       string
}

type DatabaseConfig struct {
	Driver string // sqlite or postgres
	Path   string
	DSN    string
}

type ServerConfig struct {
	StatusAddr string
}

type LogConfig struct {
	Level  string
	Format string // console or json
}

type NotifyConfig struct {
	Bell bool
}

func LoadConfig() *Config {
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: Error loading .env file")
	}

	cwd, _ := os.Getwd()

	return &Config{
		Browser: BrowserConfig{
			BaseURL:         strings.TrimRight(getEnv("WHATSAPP_WEB_URL", "https://web.whatsapp.com"), "/"),
			SessionDir:      getEnv("SESSION_DIR", filepath.Join(cwd, "whatsapp_session")),
			ChromePath:      getEnv("CHROME_PATH", ""),
			Headless:        getBool("HEADLESS", false),
			PageLoadTimeout: getDuration("PAGE_LOAD_TIMEOUT", 60*time.Second),
			LocatorsFile:    getEnv("LOCATORS_FILE", ""),
		},
		Dispatch: DispatchConfig{
			RetryLimit:     getInt("RETRY_LIMIT", 2),
			InputTimeout:   getDuration("INPUT_TIMEOUT", 30*time.Second),
			RetryBackoff:   getDuration("RETRY_BACKOFF", 5*time.Second),
			SettleDelay:    getDuration("SETTLE_DELAY", 2*time.Second),
			MinTypingPause: getDuration("MIN_TYPING_PAUSE", 1*time.Second),
			MaxTypingPause: getDuration("MAX_TYPING_PAUSE", 3*time.Second),
			MinSendDelay:   getDuration("MIN_DELAY_SEC", 3*time.Second),
			MaxSendDelay:   getDuration("MAX_DELAY_SEC", 5*time.Second),
		},
		Batch: BatchConfig{
			MaxPerMinute: getInt("MAX_PER_MINUTE", 0),
		},
		Auth: AuthConfig{
			LoginTimeout:      getDuration("LOGIN_TIMEOUT", 30*time.Second),
			CredentialTimeout: getDuration("CREDENTIAL_TIMEOUT", 30*time.Second),
		},
		Probe: ProbeConfig{
			Timeout: getDuration("PROBE_TIMEOUT", 10*time.Second),
		},
		Contacts: ContactsConfig{
			Source:    getEnv("CONTACT_SOURCE", "csv"),
			CSVFile:   getEnv("CSV_FILE", "contacts.csv"),
			Delimiter: getRune("CSV_DELIMITER", ','),
			Tag:       getEnv("CONTACT_TAG", ""),
		},
		Database: DatabaseConfig{
			Driver: getEnv("DB_DRIVER", "sqlite"),
			Path:   getEnv("DB_PATH", "./contacts.db"),
			DSN:    getEnv("DB_DSN", ""),
		},
		Server: ServerConfig{
			StatusAddr: getEnv("STATUS_ADDR", ""),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "console"),
		},
		Notify: NotifyConfig{
			Bell: getBool("NOTIFY_BELL", true),
		},
	}
}

// Validate reports every invalid setting, joined.
func (c *Config) Validate() error {
	var errs []error
	if c.Browser.BaseURL == "" {
		errs = append(errs, errors.New("WHATSAPP_WEB_URL must not be empty"))
	}
	if c.Browser.SessionDir == "" {
		errs = append(errs, errors.New("SESSION_DIR must not be empty"))
	}
	if c.Dispatch.RetryLimit < 1 {
		errs = append(errs, fmt.Errorf("RETRY_LIMIT must be >= 1, got %d", c.Dispatch.RetryLimit))
	}
	for _, t := range []struct {
		key string
		d   time.Duration
	}{
		{"PAGE_LOAD_TIMEOUT", c.Browser.PageLoadTimeout},
		{"INPUT_TIMEOUT", c.Dispatch.InputTimeout},
		{"LOGIN_TIMEOUT", c.Auth.LoginTimeout},
		{"CREDENTIAL_TIMEOUT", c.Auth.CredentialTimeout},
		{"PROBE_TIMEOUT", c.Probe.Timeout},
	} {
		if t.d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %s", t.key, t.d))
		}
	}
	if c.Dispatch.MinTypingPause > c.Dispatch.MaxTypingPause {
		errs = append(errs, errors.New("MIN_TYPING_PAUSE exceeds MAX_TYPING_PAUSE"))
	}
	if c.Dispatch.MinSendDelay > c.Dispatch.MaxSendDelay {
		errs = append(errs, errors.New("MIN_DELAY_SEC exceeds MAX_DELAY_SEC"))
	}
	if c.Batch.MaxPerMinute < 0 {
		errs = append(errs, errors.New("MAX_PER_MINUTE must not be negative"))
	}
	switch c.Contacts.Source {
	case "csv", "db":
	default:
		errs = append(errs, fmt.Errorf("unknown contact source %q", c.Contacts.Source))
	}
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		errs = append(errs, fmt.Errorf("unknown DB_DRIVER %q", c.Database.Driver))
	}
	if c.Database.Driver == "postgres" && c.Database.DSN == "" && c.Contacts.Source == "db" {
		errs = append(errs, errors.New("DB_DSN is required for postgres"))
	}
	return errors.Join(errs...)
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		log.Printf("Warning: invalid %s=%q, using %d", key, value, fallback)
		return fallback
	}
	return n
}

func getBool(key string, fallback bool) bool {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	b, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		log.Printf("Warning: invalid %s=%q, using %t", key, value, fallback)
		return fallback
	}
	return b
}

// getDuration accepts Go durations ("30s", "1m") and bare numbers as seconds.
func getDuration(key string, fallback time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	d, err := parseDuration(value)
	if err != nil {
		log.Printf("Warning: invalid %s=%q, using %s", key, value, fallback)
		return fallback
	}
	return d
}

func getRune(key string, fallback rune) rune {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return fallback
	}
	if value == `\t` {
		return '\t'
	}
	return []rune(value)[0]
}

func parseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		if f < 0 {
			return 0, fmt.Errorf("negative duration %q", s)
		}
		return time.Duration(f * float64(time.Second)), nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %q", s)
	}
	return d, nil
}
