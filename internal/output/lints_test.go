package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"x509lint/internal/rules"
)

func defaultEntries(t *testing.T) []rules.Entry {
	t.Helper()
	c, err := rules.Build(rules.Options{})
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	return c.Entries()
}

func TestWriteLints_Text(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteLints(&buf, defaultEntries(t), "text", false); err != nil {
		t.Fatalf("WriteLints error: %v", err)
	}
	out := buf.String()

	certs := strings.Index(out, "Certificate Lints:")
	crls := strings.Index(out, "CRL Lints:")
	if certs < 0 || crls < 0 || certs > crls {
		t.Fatalf("expected certificate then CRL headings:\n%s", out)
	}
	for _, want := range []string{"  rfc:check_version\n", "Citation: RFC5280: 4.1.2.1", "  rfc:crl_check_version\n"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q", want)
		}
	}
	if strings.Index(out, "rfc:crl_check_version") < crls {
		t.Error("CRL lint listed under certificate heading")
	}
}

func TestWriteLints_Quiet(t *testing.T) {
	entries := defaultEntries(t)
	var buf bytes.Buffer
	if err := WriteLints(&buf, entries, "table", true); err != nil {
		t.Fatalf("WriteLints error: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != len(entries) {
		t.Fatalf("expected %d lines, got %d", len(entries), len(lines))
	}
	if lines[0] != "rfc:check_version" {
		t.Errorf("unexpected first line %q", lines[0])
	}
}

func TestWriteLints_JSON(t *testing.T) {
	entries := defaultEntries(t)
	var buf bytes.Buffer
	if err := WriteLints(&buf, entries, "json", false); err != nil {
		t.Fatalf("WriteLints error: %v", err)
	}
	var got []lintEntryJSON
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(got) != len(entries) {
		t.Fatalf("expected %d entries, got %d", len(entries), len(got))
	}
	if got[0].Kind != "certificate" || got[0].Citation != "RFC5280: 4.1.2.1" {
		t.Errorf("unexpected first entry %+v", got[0])
	}
	if got[len(got)-1].Kind != "crl" {
		t.Errorf("expected CRL entries last, got %+v", got[len(got)-1])
	}
}

func TestWriteLints_Table(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteLints(&buf, defaultEntries(t), "table", false); err != nil {
		t.Fatalf("WriteLints error: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"rfc:serial_msb", "RFC5280: 4.1.2.2", "(25 lints)"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q\n%s", want, out)
		}
	}
}

func TestWriteLints_BadFormat(t *testing.T) {
	if err := WriteLints(&bytes.Buffer{}, defaultEntries(t), "yaml", false); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestWriteLint(t *testing.T) {
	c, err := rules.Build(rules.Options{})
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	e, err := c.Find("rfc:crl_next_update_before_this_update")
	if err != nil {
		t.Fatalf("Find error: %v", err)
	}
	var buf bytes.Buffer
	WriteLint(&buf, e)
	for _, want := range []string{"LINT: rfc:crl_next_update_before_this_update", "Applies to: crl", "Citation:   RFC5280: 5.1.2.5"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("missing %q in\n%s", want, buf.String())
		}
	}
}
