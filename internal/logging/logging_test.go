package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	gormlogger "gorm.io/gorm/logger"

	"wa-bulk-sender/internal/config"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"":        zerolog.InfoLevel,
		"DEBUG":   zerolog.DebugLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"off":     zerolog.Disabled,
		"bogus":   zerolog.InfoLevel,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(config.LogConfig{Level: "info", Format: "json"}, &buf)
	log.Info().Str("phone", "15551234567").Msg("sent")
	log.Debug().Msg("hidden")

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("expected a single JSON line, got %q: %v", buf.String(), err)
	}
	if entry["message"] != "sent" || entry["phone"] != "15551234567" {
		t.Fatalf("unexpected entry: %v", entry)
	}
}

func TestGormLevel(t *testing.T) {
	if GormLevel(zerolog.DebugLevel) != gormlogger.Info {
		t.Fatalf("debug should surface SQL")
	}
	if GormLevel(zerolog.InfoLevel) != gormlogger.Warn {
		t.Fatalf("info should only surface slow queries and warnings")
	}
	if GormLevel(zerolog.Disabled) != gormlogger.Silent {
		t.Fatalf("disabled should silence gorm")
	}
}
