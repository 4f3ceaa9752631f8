package output

import (
	"cmp"
	"fmt"
	"os"
	"slices"
	"strings"
	"sync"

	"x509lint/internal/lint"
	"x509lint/internal/subject"
)

// ReportSink aggregates Documents and writes a Markdown report on Close.
type ReportSink struct {
	path         string
	file         *os.File
	mu           sync.Mutex
	documents    []Document
	certLints    int
	crlLints     int
	exitCode     int
	haveExitCode bool
}

func NewReportSink(path string) (*ReportSink, error) {
	if path == "" {
		return nil, fmt.Errorf("report path required")
	}
	if err := ensureDir(path); err != nil {
		return nil, err
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create report file: %w", err)
	}

	return &ReportSink{
		path: path,
		file: f,
	}, nil
}

func (s *ReportSink) Write(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch t := v.(type) {
	case Document:
		s.documents = append(s.documents, t)
	case Event:
		switch t.Type {
		case EventRunStarted:
			s.certLints, s.crlLints = t.CertificateLints, t.CRLLints
		case EventRunFinished:
			s.exitCode = t.ExitCode
			s.haveExitCode = true
		}
	}
	return nil
}

// lintCount tallies one lint and status across the run. A lint registered
// more than once can report several findings on the same document.
type lintCount struct {
	name      string
	status    lint.Status
	documents int
	findings  int
	lastDoc   int
}

func (s *ReportSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var certs, crls, failed, warns, errs int
	counts := make(map[string]*lintCount)
	for i, d := range s.documents {
		switch {
		case d.Failed():
			failed++
			continue
		case d.Kind == subject.KindCertificate:
			certs++
		case d.Kind == subject.KindRevocationList:
			crls++
		}
		for _, f := range d.Findings {
			switch f.Status {
			case lint.Warn:
				warns++
			case lint.Error:
				errs++
			}
			key := f.Lint + "\x00" + f.Status.String()
			c, ok := counts[key]
			if !ok {
				c = &lintCount{name: f.Lint, status: f.Status, lastDoc: -1}
				counts[key] = c
			}
			c.findings++
			if c.lastDoc != i {
				c.documents++
				c.lastDoc = i
			}
		}
	}

	var b strings.Builder
	b.WriteString("# x509lint Report\n\n")

	b.WriteString("## Summary\n\n")
	b.WriteString("| Documents | Certificates | CRLs | Undecodable | Warnings | Errors |\n")
	b.WriteString("|---|---|---|---|---|---|\n")
	fmt.Fprintf(&b, "| %d | %d | %d | %d | %d | %d |\n\n", len(s.documents), certs, crls, failed, warns, errs)
	if s.certLints > 0 || s.crlLints > 0 {
		fmt.Fprintf(&b, "Lints per certificate: %d\n\nLints per CRL: %d\n\n", s.certLints, s.crlLints)
	}
	if s.haveExitCode {
		fmt.Fprintf(&b, "Exit code: %d\n\n", s.exitCode)
	}

	if len(counts) > 0 {
		rows := make([]*lintCount, 0, len(counts))
		for _, c := range counts {
			rows = append(rows, c)
		}
		// Most widespread first, then by severity and name.
		slices.SortFunc(rows, func(a, b *lintCount) int {
			return cmp.Or(
				cmp.Compare(b.documents, a.documents),
				cmp.Compare(b.findings, a.findings),
				cmp.Compare(b.status, a.status),
				cmp.Compare(a.name, b.name),
			)
		})
		b.WriteString("## Findings by Lint\n\n")
		b.WriteString("| Lint | Status | Documents | Findings |\n")
		b.WriteString("|---|---|---|---|\n")
		for _, c := range rows {
			fmt.Fprintf(&b, "| `%s` | %s | %d | %d |\n", c.name, c.status, c.documents, c.findings)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Documents\n\n")
	if len(s.documents) == 0 {
		b.WriteString("No documents were linted.\n\n")
	}
	for _, d := range s.documents {
		if d.Failed() {
			fmt.Fprintf(&b, "### %s#%d\n\n", d.Source, d.Index)
			fmt.Fprintf(&b, "Could not decode: %s\n\n", mdCell(d.Error))
			continue
		}
		fmt.Fprintf(&b, "### %s#%d: %s\n\n", d.Source, d.Index, mdCell(d.Label()))
		if len(d.Findings) == 0 {
			b.WriteString("No warnings/errors\n\n")
			continue
		}
		b.WriteString("| Status | Lint | Description | Details | Citation |\n")
		b.WriteString("|---|---|---|---|---|\n")
		for _, f := range d.Findings {
			fmt.Fprintf(&b, "| %s | `%s` | %s | %s | %s |\n",
				f.Status, f.Lint, mdCell(f.Description), mdCell(f.Details), mdCell(f.Citation))
		}
		b.WriteString("\n")
	}

	if _, err := s.file.WriteString(b.String()); err != nil {
		_ = s.file.Close()
		return err
	}
	return s.file.Close()
}

// mdCell escapes text for a single Markdown table cell.
func mdCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	s = strings.ReplaceAll(s, "\r", "")
	return strings.ReplaceAll(s, "\n", " ")
}
