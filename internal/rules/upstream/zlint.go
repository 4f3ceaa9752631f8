// Package upstream exposes the zlint lint corpus as lint registries so it can
// be merged with the built-in catalogs.
package upstream

import (
	"fmt"
	"os"

	zlint "github.com/zmap/zlint/v3/lint"

	"x509lint/internal/lint"
	"x509lint/internal/subject"

	// Registers every zlint lint with the global zlint registry.
	_ "github.com/zmap/zlint/v3"
)

// Prefix is prepended to every zlint lint name.
const Prefix = "zlint:"

// Options selects which zlint lints are bridged and how they are configured.
type Options struct {
	// ConfigPath points at a zlint TOML configuration file. Empty means the
	// zlint defaults.
	ConfigPath string
}

// LoadConfiguration reads the zlint configuration named by opts.
func LoadConfiguration(opts Options) (zlint.Configuration, error) {
	if opts.ConfigPath == "" {
		return zlint.NewEmptyConfig(), nil
	}
	raw, err := os.ReadFile(opts.ConfigPath)
	if err != nil {
		return zlint.Configuration{}, fmt.Errorf("read zlint config: %w", err)
	}
	cfg, err := zlint.NewConfigFromString(string(raw))
	if err != nil {
		return zlint.Configuration{}, fmt.Errorf("parse zlint config %s: %w", opts.ConfigPath, err)
	}
	return cfg, nil
}

// CertificateLints bridges every registered zlint certificate lint. A
// certificate that zcrypto could not decode passes all of them.
func CertificateLints(cfg zlint.Configuration) *lint.Registry[*subject.Certificate] {
	reg := lint.New[*subject.Certificate]()
	for _, l := range zlint.GlobalRegistry().CertificateLints().Lints() {
		reg.Insert(definition(l.LintMetadata), func(c *subject.Certificate) lint.Result {
			if c.Parsed == nil {
				return lint.Passed()
			}
			return convert(l.Execute(c.Parsed, cfg))
		})
	}
	return reg
}

// RevocationListLints bridges every registered zlint CRL lint.
func RevocationListLints(cfg zlint.Configuration) *lint.Registry[*subject.RevocationList] {
	reg := lint.New[*subject.RevocationList]()
	for _, l := range zlint.GlobalRegistry().RevocationListLints().Lints() {
		reg.Insert(definition(l.LintMetadata), func(crl *subject.RevocationList) lint.Result {
			if crl.Parsed == nil {
				return lint.Passed()
			}
			return convert(l.Execute(crl.Parsed, cfg))
		})
	}
	return reg
}

func definition(meta zlint.LintMetadata) *lint.Definition {
	def := lint.NewDefinition(Prefix+meta.Name, meta.Description)
	if meta.Citation != "" {
		def = def.WithCitation(meta.Citation)
	}
	return def
}

// convert maps the zlint status scale onto pass/warn/error. Not-applicable
// and not-effective results are passes.
func convert(res *zlint.LintResult) lint.Result {
	if res == nil {
		return lint.Passed()
	}
	switch res.Status {
	case zlint.Notice, zlint.Warn:
		return lint.NewResultWithDetails(lint.Warn, res.Details)
	case zlint.Error, zlint.Fatal:
		return lint.NewResultWithDetails(lint.Error, res.Details)
	default:
		return lint.Passed()
	}
}
