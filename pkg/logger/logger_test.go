package logger

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"debug": zerolog.DebugLevel,
		"warn":  zerolog.WarnLevel,
		"error": zerolog.ErrorLevel,
		"":      zerolog.InfoLevel,
		"bogus": zerolog.InfoLevel,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q): expected %v, got %v", in, want, got)
		}
	}
}

func TestWithContextUsesRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	reqLogger := zerolog.New(&buf).With().Str("request_id", "abc").Logger()
	ctx := NewContext(context.Background(), reqLogger)

	Info(ctx).Msg("hello")

	if !strings.Contains(buf.String(), `"request_id":"abc"`) {
		t.Errorf("Expected request id in output, got %s", buf.String())
	}
}
