package config

import (
	"strings"
	"testing"
	"time"
)

func TestParseDuration(t *testing.T) {
	cases := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"30s", 30 * time.Second, false},
		{"5", 5 * time.Second, false},
		{"1.5", 1500 * time.Millisecond, false},
		{" 2m ", 2 * time.Minute, false},
		{"-1", 0, true},
		{"soon", 0, true},
	}
	for _, tc := range cases {
		got, err := parseDuration(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("parseDuration(%q): expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("parseDuration(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("parseDuration(%q) = %s, want %s", tc.in, got, tc.want)
		}
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("RETRY_LIMIT", "4")
	t.Setenv("MIN_DELAY_SEC", "1")
	t.Setenv("MAX_DELAY_SEC", "2")
	t.Setenv("HEADLESS", "true")
	t.Setenv("CSV_DELIMITER", ";")
	t.Setenv("WHATSAPP_WEB_URL", "https://example.test/")

	cfg := LoadConfig()
	if cfg.Dispatch.RetryLimit != 4 {
		t.Fatalf("RetryLimit = %d, want 4", cfg.Dispatch.RetryLimit)
	}
	if cfg.Dispatch.MinSendDelay != time.Second || cfg.Dispatch.MaxSendDelay != 2*time.Second {
		t.Fatalf("unexpected send delay bounds: %s..%s", cfg.Dispatch.MinSendDelay, cfg.Dispatch.MaxSendDelay)
	}
	if !cfg.Browser.Headless {
		t.Fatalf("expected headless")
	}
	if cfg.Contacts.Delimiter != ';' {
		t.Fatalf("Delimiter = %q", cfg.Contacts.Delimiter)
	}
	if cfg.Browser.BaseURL != "https://example.test" {
		t.Fatalf("BaseURL = %q", cfg.Browser.BaseURL)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig()
	if cfg.Dispatch.RetryLimit != 2 {
		t.Fatalf("RetryLimit = %d, want 2", cfg.Dispatch.RetryLimit)
	}
	if cfg.Dispatch.InputTimeout != 30*time.Second || cfg.Auth.CredentialTimeout != 30*time.Second {
		t.Fatalf("unexpected timeouts: %+v %+v", cfg.Dispatch, cfg.Auth)
	}
	if !strings.HasSuffix(cfg.Browser.SessionDir, "whatsapp_session") {
		t.Fatalf("SessionDir = %q", cfg.Browser.SessionDir)
	}
}

func TestValidateCollectsErrors(t *testing.T) {
	cfg := LoadConfig()
	cfg.Dispatch.RetryLimit = 0
	cfg.Dispatch.MinSendDelay = 10 * time.Second
	cfg.Dispatch.MaxSendDelay = time.Second
	cfg.Contacts.Source = "ftp"

	err := cfg.Validate()
	if err == nil {
		t.Fatalf("expected validation error")
	}
	msg := err.Error()
	for _, want := range []string{"RETRY_LIMIT", "MIN_DELAY_SEC", "ftp"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("error %q missing %q", msg, want)
		}
	}
}

func TestValidateRejectsNonPositiveTimeouts(t *testing.T) {
	cfg := LoadConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}

	cfg.Auth.CredentialTimeout = 0
	cfg.Dispatch.InputTimeout = -time.Second
	cfg.Probe.Timeout = 0

	err := cfg.Validate()
	if err == nil {
		t.Fatalf("expected validation error")
	}
	for _, want := range []string{"CREDENTIAL_TIMEOUT", "INPUT_TIMEOUT", "PROBE_TIMEOUT"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("error %q missing %q", err, want)
		}
	}
	if strings.Contains(err.Error(), "LOGIN_TIMEOUT") {
		t.Fatalf("positive LOGIN_TIMEOUT reported: %v", err)
	}
}
