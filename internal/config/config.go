package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"x509lint/internal/lint"
)

type Config struct {
	// MAINTAINER NOTE: If you add/change/remove config fields, keep these in sync:
	// - CLI flags in internal/cli/lint.go
	// - flag to config key mapping in internal/flags/flags.go
	// - defaults() in loader.go
	Input   Input   `koanf:"input"`
	Lints   Lints   `koanf:"lints"`
	Output  Output  `koanf:"output"`
	Runtime Runtime `koanf:"runtime"`
}

type Input struct {
	// Files are the documents to lint. "-" or no files means stdin.
	// Positional arguments only; never read from config files.
	Files []string `koanf:"-"`

	// Kind forces how every document is decoded (see --kind, --cert, --crl).
	// Allowed values: auto, cert, crl.
	Kind string `koanf:"kind"`
}

type Lints struct {
	// Filter keeps only lints whose name starts with this prefix (see --filter).
	Filter string `koanf:"filter"`

	// FailOn is the lowest finding status that makes the run exit 1 (see --fail-on).
	// Allowed values: warn, error.
	FailOn string `koanf:"fail_on"`

	// ZLint appends the zlint lint corpus to the built-in lints (see --zlint).
	ZLint bool `koanf:"zlint"`

	// ZLintConfig is a zlint TOML configuration file (see --zlint-config).
	ZLintConfig string `koanf:"zlint_config"`
}

type Output struct {
	// ConsoleFormat controls the human-facing console sink format (see --console-format).
	// Allowed values: text, json, ndjson.
	ConsoleFormat string `koanf:"console_format"`

	// Report writes a Markdown report to this path (see --report).
	Report string `koanf:"report"`

	// Out writes structured output to this path (see --out).
	Out string `koanf:"out"`

	// OutFormat selects the format for --out (see --out-format).
	// Allowed values: json, ndjson. If empty, it is inferred from the --out file extension.
	OutFormat string `koanf:"out_format"`

	// NoConsole suppresses the console sink (see --no-console).
	NoConsole bool `koanf:"no_console"`

	// NoColor disables colored console output (see --no-color).
	NoColor bool `koanf:"no_color"`
}

type Runtime struct {
	// Concurrency is how many documents are linted at once (see --concurrency).
	// Must be >= 1.
	Concurrency int `koanf:"concurrency"`

	// LintWorkers is how many lints of one document run at once (see --lint-workers).
	// 1 evaluates sequentially.
	LintWorkers int `koanf:"lint_workers"`

	// Verbose enables debug logging on stderr.
	Verbose bool `koanf:"verbose"`
}

const (
	KindAuto = "auto"
	KindCert = "cert"
	KindCRL  = "crl"
)

func New() *Config {
	return &Config{
		Input: Input{
			Kind: KindAuto,
		},
		Lints: Lints{
			FailOn: "warn",
		},
		Output: Output{
			ConsoleFormat: "text",
		},
		Runtime: Runtime{
			Concurrency: 4,
			LintWorkers: 1,
		},
	}
}

func (c *Config) Validate() error {
	c.Input.Kind = normalizeEnumValue(c.Input.Kind)
	if c.Input.Kind == "" {
		c.Input.Kind = KindAuto
	}
	if c.Input.Kind != KindAuto && c.Input.Kind != KindCert && c.Input.Kind != KindCRL {
		return fmt.Errorf("unsupported --kind: %s (must be one of: auto, cert, crl)", c.Input.Kind)
	}

	c.Lints.FailOn = normalizeEnumValue(c.Lints.FailOn)
	if c.Lints.FailOn == "warning" {
		c.Lints.FailOn = "warn"
	}
	if c.Lints.FailOn != "warn" && c.Lints.FailOn != "error" {
		return fmt.Errorf("unsupported --fail-on: %s (must be one of: warn, error)", c.Lints.FailOn)
	}
	if c.Lints.ZLintConfig != "" && !c.Lints.ZLint {
		return errors.New("--zlint-config requires --zlint")
	}

	// Output validation
	c.Output.ConsoleFormat = normalizeEnumValue(c.Output.ConsoleFormat)
	if c.Output.ConsoleFormat == "" {
		return errors.New("--console-format must be one of: text, json, ndjson")
	}
	if c.Output.ConsoleFormat != "text" && c.Output.ConsoleFormat != "json" && c.Output.ConsoleFormat != "ndjson" {
		return fmt.Errorf("unsupported --console-format: %s (must be one of: text, json, ndjson)", c.Output.ConsoleFormat)
	}

	if c.Output.Out != "" {
		c.Output.OutFormat = normalizeEnumValue(c.Output.OutFormat)
		if c.Output.OutFormat == "" {
			ext := strings.ToLower(filepath.Ext(c.Output.Out))
			switch ext {
			case ".json":
				c.Output.OutFormat = "json"
			case ".ndjson", ".jsonl":
				c.Output.OutFormat = "ndjson"
			default:
				if ext == "" {
					return errors.New("cannot infer output format from file extension (missing extension); use --out-format")
				}
				return fmt.Errorf("cannot infer output format from file extension %q; use --out-format", ext)
			}
		} else if c.Output.OutFormat != "json" && c.Output.OutFormat != "ndjson" {
			return fmt.Errorf("unsupported output format: %s", c.Output.OutFormat)
		}
	}

	// Runtime validation
	if c.Runtime.Concurrency <= 0 {
		return errors.New("--concurrency must be >= 1")
	}
	if c.Runtime.LintWorkers <= 0 {
		return errors.New("--lint-workers must be >= 1")
	}

	return nil
}

// FailOnStatus is the parsed FailOn threshold. Call after Validate.
func (c *Config) FailOnStatus() lint.Status {
	if c.Lints.FailOn == "error" {
		return lint.Error
	}
	return lint.Warn
}

func normalizeEnumValue(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
