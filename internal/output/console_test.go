package output

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"x509lint/internal/subject"
)

func TestConsoleSink_Text(t *testing.T) {
	tests := []struct {
		name string
		doc  Document
		want []string
	}{
		{
			name: "Findings - Certificate",
			doc:  NewDocument("cert.pem", 0, subject.KindCertificate, "C=FR, CN=Test", sampleFindings()),
			want: []string{
				"cert.pem#0: Subject: C=FR, CN=Test\n",
				"  [warn] rfc:serial_msb: Serial number is negative (RFC5280: 4.1.2.2)\n",
				"  [error] rfc:issuer_empty: Issuer must not be empty (RFC5280: 4.1.2.4)\n",
				"  [warn] rfc:cert_extensions_unsupported: Unsupported extension - 1.2.3.4\n",
			},
		},
		{
			name: "Clean - CRL",
			doc:  NewDocument("-", 3, subject.KindRevocationList, "CN=CA", nil),
			want: []string{"-#3: CRL Issuer: CN=CA\n", "  No warnings/errors\n"},
		},
		{
			name: "Undecodable",
			doc:  FailedDocument("junk.der", 1, errors.New("parse crl: malformed")),
			want: []string{"junk.der#1: parse crl: malformed\n"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			sink := NewConsoleSink(&buf, "text", WithNoColor(true))
			if err := sink.Write(Event{Type: EventRunStarted}); err != nil {
				t.Fatalf("Write(event) error: %v", err)
			}
			if err := sink.Write(tt.doc); err != nil {
				t.Fatalf("Write error: %v", err)
			}
			if err := sink.Close(); err != nil {
				t.Fatalf("Close error: %v", err)
			}
			if got, want := buf.String(), strings.Join(tt.want, ""); got != want {
				t.Errorf("output mismatch\n got: %q\nwant: %q", got, want)
			}
		})
	}
}

func TestConsoleSink_JSONAggregates(t *testing.T) {
	var buf bytes.Buffer
	sink := NewConsoleSink(&buf, "json")
	_ = sink.Write(Event{Type: EventRunStarted})
	_ = sink.Write(NewDocument("a.pem", 0, subject.KindCertificate, "CN=a", nil))
	_ = sink.Write(NewDocument("a.pem", 1, subject.KindCertificate, "CN=b", sampleFindings()))

	if buf.Len() != 0 {
		t.Fatalf("json mode wrote before Close: %q", buf.String())
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}

	var docs []Document
	if err := json.Unmarshal(buf.Bytes(), &docs); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}
	if len(docs) != 2 || docs[1].Name != "CN=b" || len(docs[1].Findings) != 3 {
		t.Errorf("unexpected documents: %+v", docs)
	}
}

func TestConsoleSink_JSONEmpty(t *testing.T) {
	var buf bytes.Buffer
	sink := NewConsoleSink(&buf, "json")
	if err := sink.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}
	if strings.TrimSpace(buf.String()) != "[]" {
		t.Errorf("expected empty array, got %q", buf.String())
	}
}

func TestConsoleSink_UnsupportedFormat(t *testing.T) {
	sink := NewConsoleSink(io.Discard, "xml")
	if err := sink.Write(Document{}); err == nil {
		t.Error("expected Write error")
	}
	if err := sink.Close(); err == nil {
		t.Error("expected Close error")
	}
}

func TestConsoleSink_NDJSON_FlushesPerWrite(t *testing.T) {
	pr, pw := io.Pipe()
	defer pr.Close()
	defer pw.Close()

	bw := bufio.NewWriterSize(pw, 64*1024)
	s := NewConsoleSink(bw, "ndjson")

	lineCh := make(chan string, 2)
	errCh := make(chan error, 1)
	go func() {
		r := bufio.NewReader(pr)
		for range 2 {
			line, err := r.ReadString('\n')
			if err != nil {
				errCh <- err
				return
			}
			lineCh <- line
		}
	}()

	if err := s.Write(Event{Type: EventRunStarted}); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}
	if err := s.Write(NewDocument("a.pem", 0, subject.KindCertificate, "CN=a", nil)); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}

	for _, want := range []string{`"type":"run.started"`, `"type":"document.result"`} {
		select {
		case line := <-lineCh:
			if !strings.Contains(line, want) {
				t.Fatalf("expected %s, got %q", want, line)
			}
		case err := <-errCh:
			t.Fatalf("read error: %v", err)
		case <-time.After(250 * time.Millisecond):
			t.Fatalf("timed out waiting for ndjson line; writer likely not flushing")
		}
	}
}
