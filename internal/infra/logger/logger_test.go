package logger

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestInitLevels(t *testing.T) {
	cases := []struct {
		level string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"", zerolog.InfoLevel},
		{"garbage", zerolog.InfoLevel},
	}

	for _, tc := range cases {
		Init(tc.level)
		if got := zerolog.GlobalLevel(); got != tc.want {
			t.Fatalf("Init(%q) set global level %s, want %s", tc.level, got, tc.want)
		}
	}
}
