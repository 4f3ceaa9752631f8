package rules

import (
	"strings"
	"testing"

	"x509lint/internal/subject"
)

func TestBuild_Default(t *testing.T) {
	cat, err := Build(Options{})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if cat.Certificates.Len() != 17 {
		t.Errorf("expected 17 certificate lints, got %d", cat.Certificates.Len())
	}
	if cat.RevocationLists.Len() != 12 {
		t.Errorf("expected 12 CRL lints, got %d", cat.RevocationLists.Len())
	}

	entries := cat.Entries()
	// Shared definitions (pre/post 2049) are listed once per kind.
	if len(entries) != 15+10 {
		t.Errorf("expected 25 entries, got %d", len(entries))
	}
	if entries[0].Kind != subject.KindCertificate || entries[len(entries)-1].Kind != subject.KindRevocationList {
		t.Error("expected certificate entries before CRL entries")
	}
}

func TestBuild_Filter(t *testing.T) {
	cat, err := Build(Options{Filter: "rfc:crl_"})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if cat.Certificates.Len() != 0 {
		t.Errorf("expected no certificate lints, got %d", cat.Certificates.Len())
	}
	for _, e := range cat.Entries() {
		if !strings.HasPrefix(e.Definition.Name(), "rfc:crl_") {
			t.Errorf("unexpected entry %s", e.Definition.Name())
		}
	}
}

func TestBuild_ZLint(t *testing.T) {
	cat, err := Build(Options{ZLint: true})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if cat.Certificates.Len() <= 17 {
		t.Fatalf("expected zlint lints after the built-in ones, got %d", cat.Certificates.Len())
	}
	defs := cat.Certificates.Definitions()
	if defs[0].Name() != "rfc:check_version" {
		t.Errorf("expected built-in lints first, got %s", defs[0].Name())
	}
	if !strings.HasPrefix(defs[len(defs)-1].Name(), "zlint:") {
		t.Errorf("expected zlint lints last, got %s", defs[len(defs)-1].Name())
	}

	filtered, err := Build(Options{ZLint: true, Filter: "zlint:"})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if filtered.Certificates.Len() != cat.Certificates.Len()-17 {
		t.Errorf("expected only zlint lints, got %d", filtered.Certificates.Len())
	}
}

func TestBuild_BadZLintConfig(t *testing.T) {
	if _, err := Build(Options{ZLint: true, ZLintConfig: "/nonexistent/zlint.toml"}); err == nil {
		t.Error("expected an error for a missing zlint config")
	}
}

func TestCatalog_Find(t *testing.T) {
	cat, err := Build(Options{})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	e, err := cat.Find("rfc:crl_extensions_notv2")
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if e.Kind != subject.KindRevocationList {
		t.Errorf("expected crl kind, got %s", e.Kind)
	}
	if c, ok := e.Definition.Citation(); !ok || c != "RFC5280: 5.1.2.1" {
		t.Errorf("unexpected citation %q", c)
	}

	if _, err := cat.Find("rfc:nope"); err == nil {
		t.Error("expected error for unknown lint")
	}
}
