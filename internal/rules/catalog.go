// Package rules composes the lint registries the linter runs: the built-in
// RFC 5280 catalog, optionally followed by the zlint corpus, narrowed by a
// name prefix.
package rules

import (
	"fmt"

	"x509lint/internal/lint"
	"x509lint/internal/rules/rfc"
	"x509lint/internal/rules/upstream"
	"x509lint/internal/subject"
)

// Options controls catalog composition.
type Options struct {
	// Filter keeps only lints whose name starts with it. Empty keeps all.
	Filter string
	// ZLint appends the zlint lints after the built-in ones.
	ZLint bool
	// ZLintConfig is an optional zlint TOML configuration file.
	ZLintConfig string
}

// Catalog holds one registry per subject kind.
type Catalog struct {
	Certificates    *lint.Registry[*subject.Certificate]
	RevocationLists *lint.Registry[*subject.RevocationList]
}

// Build returns freshly composed registries for opts.
func Build(opts Options) (*Catalog, error) {
	certs := rfc.CertificateLints()
	crls := rfc.RevocationListLints()

	if opts.ZLint {
		cfg, err := upstream.LoadConfiguration(upstream.Options{ConfigPath: opts.ZLintConfig})
		if err != nil {
			return nil, err
		}
		certs.Merge(upstream.CertificateLints(cfg))
		crls.Merge(upstream.RevocationListLints(cfg))
	}

	if opts.Filter != "" {
		certs.Filter(opts.Filter)
		crls.Filter(opts.Filter)
	}
	return &Catalog{Certificates: certs, RevocationLists: crls}, nil
}

// Entry is a catalog listing row.
type Entry struct {
	Kind       subject.Kind
	Definition *lint.Definition
}

// Entries lists every definition, certificate lints first. A definition shared
// by several lint functions is listed once.
func (c *Catalog) Entries() []Entry {
	var entries []Entry
	entries = appendUnique(entries, subject.KindCertificate, c.Certificates.Definitions())
	entries = appendUnique(entries, subject.KindRevocationList, c.RevocationLists.Definitions())
	return entries
}

func appendUnique(entries []Entry, kind subject.Kind, defs []*lint.Definition) []Entry {
	seen := make(map[*lint.Definition]bool, len(defs))
	for _, def := range defs {
		if seen[def] {
			continue
		}
		seen[def] = true
		entries = append(entries, Entry{Kind: kind, Definition: def})
	}
	return entries
}

// Find returns the entry named name.
func (c *Catalog) Find(name string) (Entry, error) {
	for _, e := range c.Entries() {
		if e.Definition.Name() == name {
			return e, nil
		}
	}
	return Entry{}, fmt.Errorf("lint not found: %s", name)
}
