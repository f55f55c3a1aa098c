package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func testPaths(t *testing.T) *Paths {
	t.Helper()
	tmpDir := t.TempDir()
	return &Paths{
		Root:    tmpDir,
		Reports: filepath.Join(tmpDir, "reports"),
		Config:  filepath.Join(tmpDir, "adaptive.yaml"),
	}
}

func TestLoadSettings(t *testing.T) {
	t.Run("applies defaults when no settings file exists", func(t *testing.T) {
		s, err := LoadSettings(testPaths(t))
		if err != nil {
			t.Fatalf("LoadSettings failed: %v", err)
		}

		if s.Cascade.MarginMM != 0 {
			t.Errorf("default cascade margin = %v, want 0", s.Cascade.MarginMM)
		}
		if s.Cascade.Suffix != "_x" {
			t.Errorf("default cascade suffix = %q, want %q", s.Cascade.Suffix, "_x")
		}
		if s.Cascade.Lighten != 0.4 {
			t.Errorf("default cascade lighten = %v, want 0.4", s.Cascade.Lighten)
		}
		if s.Log.Level != "info" {
			t.Errorf("default log level = %q, want %q", s.Log.Level, "info")
		}
		if s.Log.Format != "text" {
			t.Errorf("default log format = %q, want %q", s.Log.Format, "text")
		}
	})

	t.Run("reads values from the settings file", func(t *testing.T) {
		paths := testPaths(t)
		content := strings.Join([]string{
			"cascade:",
			"  margin_mm: 3.5",
			"  prefix: adaptive_",
			"  suffix: _plan",
			"  lighten: 0.25",
			"crop:",
			"  margin_mm: 2.0",
			"log:",
			"  level: debug",
			"  format: json",
		}, "\n")
		if err := os.WriteFile(paths.Config, []byte(content), 0644); err != nil {
			t.Fatalf("failed to write settings file: %v", err)
		}

		s, err := LoadSettings(paths)
		if err != nil {
			t.Fatalf("LoadSettings failed: %v", err)
		}

		if s.Cascade.MarginMM != 3.5 {
			t.Errorf("cascade margin = %v, want 3.5", s.Cascade.MarginMM)
		}
		if s.Cascade.Prefix != "adaptive_" {
			t.Errorf("cascade prefix = %q, want adaptive_", s.Cascade.Prefix)
		}
		if s.Cascade.Suffix != "_plan" {
			t.Errorf("cascade suffix = %q, want _plan", s.Cascade.Suffix)
		}
		if s.Crop.MarginMM != 2.0 {
			t.Errorf("crop margin = %v, want 2.0", s.Crop.MarginMM)
		}
		if s.Log.Level != "debug" {
			t.Errorf("log level = %q, want debug", s.Log.Level)
		}
		if s.Log.Format != "json" {
			t.Errorf("log format = %q, want json", s.Log.Format)
		}
	})

	t.Run("environment variables override the file", func(t *testing.T) {
		paths := testPaths(t)
		if err := os.WriteFile(paths.Config, []byte("log:\n  level: info\n"), 0644); err != nil {
			t.Fatalf("failed to write settings file: %v", err)
		}

		t.Setenv("ADAPTIVE_LOG_LEVEL", "warn")

		s, err := LoadSettings(paths)
		if err != nil {
			t.Fatalf("LoadSettings failed: %v", err)
		}
		if s.Log.Level != "warn" {
			t.Errorf("log level = %q, want warn from environment", s.Log.Level)
		}
	})

	t.Run("rejects invalid settings", func(t *testing.T) {
		tests := []struct {
			name    string
			content string
			wantErr string
		}{
			{
				name:    "negative cascade margin",
				content: "cascade:\n  margin_mm: -1\n",
				wantErr: "cascade.margin_mm",
			},
			{
				name:    "lighten above one",
				content: "cascade:\n  lighten: 1.5\n",
				wantErr: "cascade.lighten",
			},
			{
				name:    "negative crop margin",
				content: "crop:\n  margin_mm: -0.5\n",
				wantErr: "crop.margin_mm",
			},
			{
				name:    "unknown log level",
				content: "log:\n  level: verbose\n",
				wantErr: "log.level",
			},
			{
				name:    "unknown log format",
				content: "log:\n  format: xml\n",
				wantErr: "log.format",
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				paths := testPaths(t)
				if err := os.WriteFile(paths.Config, []byte(tt.content), 0644); err != nil {
					t.Fatalf("failed to write settings file: %v", err)
				}

				_, err := LoadSettings(paths)
				if err == nil {
					t.Fatal("expected validation error, got nil")
				}
				if !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("error %q should name %q", err.Error(), tt.wantErr)
				}
			})
		}
	})
}
