package output

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"x509lint/internal/lint"
	"x509lint/internal/subject"
)

func TestReportSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.md")
	sink, err := NewReportSink(path)
	if err != nil {
		t.Fatalf("NewReportSink error: %v", err)
	}

	pipeDef := lint.NewDefinition("test:pipe", "Has a | pipe")
	_ = sink.Write(Event{Type: EventRunStarted, CertificateLints: 17, CRLLints: 12})
	_ = sink.Write(NewDocument("a.pem", 0, subject.KindCertificate, "CN=a", sampleFindings()))
	_ = sink.Write(NewDocument("a.pem", 1, subject.KindCertificate, "CN=b", []lint.Finding{
		{Definition: defSerial, Result: lint.NewResult(lint.Warn)},
		{Definition: defSerial, Result: lint.NewResultWithDetails(lint.Warn, "second registration")},
		{Definition: pipeDef, Result: lint.NewResultWithDetails(lint.Warn, "line1\nline2")},
	}))
	_ = sink.Write(NewDocument("b.crl", 0, subject.KindRevocationList, "CN=CA", nil))
	_ = sink.Write(FailedDocument("c.der", 0, errors.New("parse crl: bad")))
	_ = sink.Write(Event{Type: EventRunFinished, ExitCode: 2})
	if err := sink.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile error: %v", err)
	}
	report := string(data)

	for _, want := range []string{
		"# x509lint Report",
		"| 4 | 2 | 1 | 1 | 5 | 1 |",
		"Lints per certificate: 17",
		"Lints per CRL: 12",
		"Exit code: 2",
		"| Lint | Status | Documents | Findings |",
		"| `rfc:serial_msb` | warn | 2 | 3 |",
		"| `test:pipe` | warn | 1 | 1 |",
		"### a.pem#0: Subject: CN=a",
		"### b.crl#0: CRL Issuer: CN=CA",
		"No warnings/errors",
		"Could not decode: parse crl: bad",
		`Has a \| pipe`,
		"line1 line2",
	} {
		if !strings.Contains(report, want) {
			t.Errorf("report missing %q\n%s", want, report)
		}
	}

	// The lint seen on most documents is listed first.
	if strings.Index(report, "`rfc:serial_msb` | warn | 2") > strings.Index(report, "`rfc:issuer_empty`") {
		t.Error("expected findings table ordered by document count")
	}
}

func TestReportSink_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.md")
	sink, err := NewReportSink(path)
	if err != nil {
		t.Fatalf("NewReportSink error: %v", err)
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}
	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), "No documents were linted.") {
		t.Errorf("unexpected report:\n%s", data)
	}
	if strings.Contains(string(data), "Findings by Lint") {
		t.Error("empty report should not have a findings table")
	}
}
