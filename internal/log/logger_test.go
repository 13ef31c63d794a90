// SPDX-License-Identifier: MIT
package log

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in     string
		want   LogLevel
		wantOK bool
	}{
		{"debug", LevelDebug, true},
		{"INFO", LevelInfo, true},
		{"Warning", LevelWarn, true},
		{"warn", LevelWarn, true},
		{" error ", LevelError, true},
		{"fatal", LevelFatal, true},
		{"verbose", LevelInfo, false},
		{"", LevelInfo, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseLevel(tt.in)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("ParseLevel(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestLevelString(t *testing.T) {
	if LevelWarn.String() != "WARN" {
		t.Errorf("LevelWarn.String() = %q", LevelWarn.String())
	}
	if LogLevel(42).String() != "UNKNOWN" {
		t.Errorf("LogLevel(42).String() = %q", LogLevel(42).String())
	}
}

func TestSetLevelFiltersOutput(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stderr)
	defer SetLevel(LevelInfo)

	SetLevel(LevelWarn)
	if GetLevel() != LevelWarn {
		t.Fatalf("GetLevel() = %v, want WARN", GetLevel())
	}

	Infof("hidden %d", 1)
	Warnf("shown %d", 2)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info message written at WARN level: %q", out)
	}
	if !strings.Contains(out, "shown 2") {
		t.Errorf("warn message missing: %q", out)
	}
	if Enabled(LevelDebug) {
		t.Error("debug should not be enabled at WARN level")
	}
}

func TestWithFields(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stderr)

	WithFields(Fields{"component": "framer"}).Info("ready")

	out := buf.String()
	if !strings.Contains(out, "component=framer") || !strings.Contains(out, "ready") {
		t.Errorf("structured fields missing: %q", out)
	}
}
