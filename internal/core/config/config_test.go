package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	cfg, err := Load("")
	requireNoError(t, err)

	if cfg.Input.Format != "auto" || cfg.Input.DelimiterRune() != ',' {
		t.Fatalf("unexpected input defaults: %+v", cfg.Input)
	}
	if cfg.Input.OnMalformed != OnMalformedAbort {
		t.Fatalf("expected abort policy by default, got %q", cfg.Input.OnMalformed)
	}
	if cfg.Output.Format != OutputText {
		t.Fatalf("expected text output by default, got %q", cfg.Output.Format)
	}
	if cfg.Server.Enabled {
		t.Fatal("server should be disabled by default")
	}
}

func TestLoad_ValidConfigFile(t *testing.T) {
	root := t.TempDir()
	cfgPath := filepath.Join(root, "loanagg.yaml")
	requireNoError(t, os.WriteFile(cfgPath, []byte(`
input:
  format: "csv"
  delimiter: " "
  quote: "|"
  on_malformed: "skip"
output:
  format: "json"
server:
  enabled: true
  port: 9090
  host: "127.0.0.1"
  mode: "debug"
`), 0o644))

	cfg, err := Load(cfgPath)
	requireNoError(t, err)

	if cfg.Input.DelimiterRune() != ' ' || cfg.Input.QuoteRune() != '|' {
		t.Fatalf("unexpected input config: %+v", cfg.Input)
	}
	if cfg.Input.CommentRune() != 0 {
		t.Fatalf("expected no comment marker, got %q", cfg.Input.CommentRune())
	}
	if cfg.Input.OnMalformed != OnMalformedSkip || cfg.Output.Format != OutputJSON {
		t.Fatalf("unexpected policy/output: %+v %+v", cfg.Input, cfg.Output)
	}
	if !cfg.Server.Enabled || cfg.Server.Port != 9090 {
		t.Fatalf("unexpected server config: %+v", cfg.Server)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	root := t.TempDir()
	cfgPath := filepath.Join(root, "loanagg.yaml")
	requireNoError(t, os.WriteFile(cfgPath, []byte(`
output:
  format: "json"
`), 0o644))

	t.Setenv("LOANAGG_OUTPUT__FORMAT", "yaml")

	cfg, err := Load(cfgPath)
	requireNoError(t, err)
	if cfg.Output.Format != OutputYAML {
		t.Fatalf("expected env override to yaml, got %q", cfg.Output.Format)
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	root := t.TempDir()
	cfgPath := filepath.Join(root, "loanagg.yaml")
	requireNoError(t, os.WriteFile(cfgPath, []byte(`
input:
  delimiter: ";"
`), 0o644))

	t.Setenv("LOANAGG_SERVER__PORT", "9191")

	cfg, err := Load(cfgPath)
	requireNoError(t, err)
	if cfg.Input.DelimiterRune() != ';' {
		t.Fatalf("expected file delimiter, got %q", cfg.Input.Delimiter)
	}
	if cfg.Input.Format != "auto" || cfg.Input.OnMalformed != OnMalformedAbort {
		t.Fatalf("expected input defaults to survive, got %+v", cfg.Input)
	}
	if cfg.Server.Port != 9191 || cfg.Server.Host != "0.0.0.0" {
		t.Fatalf("unexpected server config: %+v", cfg.Server)
	}
}

func TestLoad_MissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil || !strings.Contains(err.Error(), "load config file") {
		t.Fatalf("expected config file error, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	valid := Default

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "bad format", mutate: func(c *Config) { c.Input.Format = "xlsx" }, wantErr: "invalid input.format"},
		{name: "empty delimiter", mutate: func(c *Config) { c.Input.Delimiter = "" }, wantErr: "input.delimiter"},
		{name: "long delimiter", mutate: func(c *Config) { c.Input.Delimiter = ";;" }, wantErr: "input.delimiter"},
		{name: "quote delimiter", mutate: func(c *Config) { c.Input.Delimiter = "\"" }, wantErr: "invalid input.delimiter"},
		{name: "comment equals delimiter", mutate: func(c *Config) { c.Input.Comment = "," }, wantErr: "must differ"},
		{name: "long quote", mutate: func(c *Config) { c.Input.Quote = "''" }, wantErr: "input.quote"},
		{name: "quote equals delimiter", mutate: func(c *Config) { c.Input.Delimiter = "|"; c.Input.Quote = "|" }, wantErr: "input.quote"},
		{name: "bad policy", mutate: func(c *Config) { c.Input.OnMalformed = "ignore" }, wantErr: "invalid input.on_malformed"},
		{name: "bad output", mutate: func(c *Config) { c.Output.Format = "xml" }, wantErr: "invalid output.format"},
		{name: "server port ignored when disabled", mutate: func(c *Config) { c.Server.Port = -1 }},
		{name: "bad server port", mutate: func(c *Config) { c.Server.Enabled = true; c.Server.Port = -1 }, wantErr: "invalid server.port"},
		{name: "bad server mode", mutate: func(c *Config) { c.Server.Enabled = true; c.Server.Mode = "prod" }, wantErr: "invalid server.mode"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr == "" {
				requireNoError(t, err)
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tc.wantErr, err)
			}
		})
	}
}

func requireNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}
