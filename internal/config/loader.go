package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"x509lint/internal/flags"
)

// EnvPrefix is the prefix of environment overrides. A double underscore
// separates sections: X509LINT_OUTPUT__CONSOLE_FORMAT sets output.console_format.
const EnvPrefix = "X509LINT_"

// Searched in the working directory when no --config is given.
var configFileNames = []string{"x509lint.yaml", "x509lint.yml"}

// findConfigFile finds the config file to use.
// Priority: explicit path > x509lint.yaml > x509lint.yml
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range configFileNames {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

func defaults() map[string]interface{} {
	d := New()
	return map[string]interface{}{
		"input.kind":            d.Input.Kind,
		"lints.filter":          d.Lints.Filter,
		"lints.fail_on":         d.Lints.FailOn,
		"lints.zlint":           d.Lints.ZLint,
		"lints.zlint_config":    d.Lints.ZLintConfig,
		"output.console_format": d.Output.ConsoleFormat,
		"output.report":         d.Output.Report,
		"output.out":            d.Output.Out,
		"output.out_format":     d.Output.OutFormat,
		"output.no_console":     d.Output.NoConsole,
		"output.no_color":       d.Output.NoColor,
		"runtime.concurrency":   d.Runtime.Concurrency,
		"runtime.lint_workers":  d.Runtime.LintWorkers,
		"runtime.verbose":       d.Runtime.Verbose,
	}
}

func envKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
}

// Load builds a Config from defaults, a YAML file, environment variables and
// the explicitly set flags of fs. It returns the config file used, if any.
// Precedence (highest to lowest): flags > env vars > config file > defaults.
// The result is not validated.
func Load(cfgFile string, fs *pflag.FlagSet) (*Config, string, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, "", fmt.Errorf("failed to load defaults: %w", err)
	}

	used := findConfigFile(cfgFile)
	if used != "" {
		if err := k.Load(file.Provider(used), yaml.Parser()); err != nil {
			return nil, "", fmt.Errorf("error reading config file %s: %w", used, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, "", fmt.Errorf("failed to load env vars: %w", err)
	}

	if fs != nil {
		if err := k.Load(posflag.ProviderWithFlag(fs, ".", k, func(f *pflag.Flag) (string, interface{}) {
			// Only load flags that were explicitly set and map onto a config field.
			if !f.Changed {
				return "", nil
			}
			key, ok := flags.ConfigKey(f.Name)
			if !ok {
				return "", nil
			}
			return key, posflag.FlagVal(fs, f)
		}), nil); err != nil {
			return nil, "", fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, "", fmt.Errorf("unable to decode config: %w", err)
	}
	return &cfg, used, nil
}
