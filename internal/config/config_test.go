package config_test

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Tiliavir/timesheet/internal/config"
)

// isolate points HOME at a temp dir and clears overrides from the environment.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, k := range []string{"TIMESHEET_DB", "TIMESHEET_STORAGE_DB_PATH", "TIMESHEET_LOG_LEVEL", "TIMESHEET_REPORT_FORMAT"} {
		t.Setenv(k, "")
	}
	return home
}

func TestLoadFirstRunWritesTemplate(t *testing.T) {
	home := isolate(t)

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	wantDB := filepath.Join(home, ".timesheet", "timesheets.db")
	if cfg.Storage.DBPath != wantDB {
		t.Errorf("DBPath = %q, want %q", cfg.Storage.DBPath, wantDB)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %q, want warn", cfg.Log.Level)
	}
	if cfg.Report.Format != "csv" {
		t.Errorf("Report.Format = %q, want csv", cfg.Report.Format)
	}

	data, err := os.ReadFile(filepath.Join(home, ".timesheet", "config.yaml"))
	if err != nil {
		t.Fatalf("template not written: %v", err)
	}
	if !strings.Contains(string(data), "db_path:") {
		t.Errorf("template missing db_path:\n%s", data)
	}

	// The written template must load back to the same values.
	again, err := config.Load("")
	if err != nil {
		t.Fatalf("Load after template: %v", err)
	}
	if *again != *cfg {
		t.Errorf("reloaded config = %+v, want %+v", *again, *cfg)
	}
}

func TestLoadReadsFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "custom.yaml")
	content := "storage:\n  db_path: /var/lib/ts.db\nlog:\n  level: debug\nreport:\n  format: md\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Storage.DBPath != "/var/lib/ts.db" {
		t.Errorf("DBPath = %q", cfg.Storage.DBPath)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q", cfg.Log.Level)
	}
	if cfg.Report.Format != "md" {
		t.Errorf("Report.Format = %q", cfg.Report.Format)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("storage:\n  db_path: /from/file.db\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("TIMESHEET_DB", "/from/env.db")
	t.Setenv("TIMESHEET_REPORT_FORMAT", "json")

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Storage.DBPath != "/from/env.db" {
		t.Errorf("DBPath = %q, want /from/env.db", cfg.Storage.DBPath)
	}
	if cfg.Report.Format != "json" {
		t.Errorf("Report.Format = %q, want json", cfg.Report.Format)
	}
}

func TestLoadInvalidFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("storage: [unclosed\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := config.Load(path); err == nil {
		t.Fatal("expected error for invalid YAML, got nil")
	}
}

func TestExpandHome(t *testing.T) {
	home := isolate(t)

	tests := []struct {
		in, want string
	}{
		{"~/data/ts.db", filepath.Join(home, "data", "ts.db")},
		{"~", home},
		{"/abs/ts.db", "/abs/ts.db"},
		{"rel/ts.db", "rel/ts.db"},
		{"~other/ts.db", "~other/ts.db"},
	}
	for _, tt := range tests {
		got, err := config.ExpandHome(tt.in)
		if err != nil {
			t.Fatalf("ExpandHome(%q): %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ExpandHome(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSetupLoggerLevel(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	config.SetupLogger(&buf, "info")
	slog.Debug("hidden")
	slog.Info("shown", "k", "v")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug message logged at info level: %q", out)
	}
	if !strings.Contains(out, "msg=shown") || !strings.Contains(out, "k=v") {
		t.Errorf("info message missing: %q", out)
	}
}
