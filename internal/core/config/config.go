package config

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Malformed-record policies.
const (
	OnMalformedAbort = "abort"
	OnMalformedSkip  = "skip"
)

// Report output formats.
const (
	OutputText = "text"
	OutputJSON = "json"
	OutputYAML = "yaml"
)

// Config is the top-level configuration for loanagg.
type Config struct {
	Input  InputConfig  `koanf:"input"`
	Output OutputConfig `koanf:"output"`
	Server ServerConfig `koanf:"server"`
}

// InputConfig controls how record files are opened and read.
type InputConfig struct {
	Format      string `koanf:"format"`    // auto | csv | parquet
	Delimiter   string `koanf:"delimiter"` // single character
	Comment     string `koanf:"comment"`   // single character or empty
	Quote       string `koanf:"quote"` // single character; empty means '"'
	LazyQuotes  bool   `koanf:"lazy_quotes"`
	OnMalformed string `koanf:"on_malformed"` // abort | skip
}

// OutputConfig controls report rendering.
type OutputConfig struct {
	Format string `koanf:"format"` // text | json | yaml
}

// ServerConfig holds the optional query API settings.
type ServerConfig struct {
	Enabled bool   `koanf:"enabled"`
	Port    int    `koanf:"port"`
	Host    string `koanf:"host"`
	Mode    string `koanf:"mode"` // debug | release
}

// DelimiterRune returns the configured delimiter as a rune.
func (c InputConfig) DelimiterRune() rune { return firstRune(c.Delimiter) }

// CommentRune returns the comment marker, or 0 when unset.
func (c InputConfig) CommentRune() rune { return firstRune(c.Comment) }

// QuoteRune returns the field quote character, or 0 for the default '"'.
func (c InputConfig) QuoteRune() rune { return firstRune(c.Quote) }

func firstRune(s string) rune {
	if s == "" {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r
}

func (c *Config) Validate() error {
	switch c.Input.Format {
	case "auto", "csv", "parquet":
	default:
		return fmt.Errorf("invalid input.format %q (must be auto, csv or parquet)", c.Input.Format)
	}
	if utf8.RuneCountInString(c.Input.Delimiter) != 1 {
		return fmt.Errorf("input.delimiter must be exactly one character, got %q", c.Input.Delimiter)
	}
	if c.Input.Delimiter == "\"" || c.Input.Delimiter == "\n" || c.Input.Delimiter == "\r" {
		return fmt.Errorf("invalid input.delimiter %q", c.Input.Delimiter)
	}
	if utf8.RuneCountInString(c.Input.Comment) > 1 {
		return fmt.Errorf("input.comment must be at most one character, got %q", c.Input.Comment)
	}
	if c.Input.Comment != "" && c.Input.Comment == c.Input.Delimiter {
		return fmt.Errorf("input.comment and input.delimiter must differ")
	}
	if utf8.RuneCountInString(c.Input.Quote) > 1 {
		return fmt.Errorf("input.quote must be at most one character, got %q", c.Input.Quote)
	}
	if q := c.Input.Quote; q != "" {
		if q == c.Input.Delimiter || q == c.Input.Comment || q == "\n" || q == "\r" {
			return fmt.Errorf("invalid input.quote %q (must differ from delimiter, comment and line breaks)", q)
		}
	}
	if c.Input.OnMalformed != OnMalformedAbort && c.Input.OnMalformed != OnMalformedSkip {
		return fmt.Errorf("invalid input.on_malformed %q (must be abort or skip)", c.Input.OnMalformed)
	}

	switch c.Output.Format {
	case OutputText, OutputJSON, OutputYAML:
	default:
		return fmt.Errorf("invalid output.format %q (must be text, json or yaml)", c.Output.Format)
	}

	if c.Server.Enabled {
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			return fmt.Errorf("invalid server.port %d (must be 1-65535)", c.Server.Port)
		}
		if strings.TrimSpace(c.Server.Host) == "" {
			return fmt.Errorf("server.host is required")
		}
		if c.Server.Mode != "debug" && c.Server.Mode != "release" {
			return fmt.Errorf("invalid server.mode %q (must be debug or release)", c.Server.Mode)
		}
	}

	return nil
}

const envPrefix = "LOANAGG_"

// Default returns the settings used for any key no file or env var sets.
func Default() Config {
	return Config{
		Input: InputConfig{
			Format:      "auto",
			Delimiter:   ",",
			OnMalformed: OnMalformedAbort,
		},
		Output: OutputConfig{Format: OutputText},
		Server: ServerConfig{Port: 8080, Host: "0.0.0.0", Mode: "release"},
	}
}

type layer struct {
	name     string
	provider koanf.Provider
	parser   koanf.Parser
}

// layers lists config sources from lowest to highest precedence.
func layers(configPath string) []layer {
	var ls []layer
	if configPath != "" {
		ls = append(ls, layer{name: "config file " + configPath, provider: file.Provider(configPath), parser: yaml.Parser()})
	}
	return append(ls, layer{name: "environment", provider: env.Provider(envPrefix, ".", envKey)})
}

// envKey maps LOANAGG_INPUT__ON_MALFORMED to input.on_malformed.
func envKey(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(name, envPrefix)), "__", ".")
}

// Load overlays an optional YAML file and LOANAGG_ environment variables on
// Default and validates the result.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")
	for _, l := range layers(configPath) {
		if err := k.Load(l.provider, l.parser); err != nil {
			return nil, fmt.Errorf("load %s: %w", l.name, err)
		}
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
