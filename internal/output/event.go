package output

import (
	"x509lint/internal/lint"
	"x509lint/internal/subject"
)

// Event types.
const (
	EventRunStarted     = "run.started"
	EventDocumentResult = "document.result"
	EventRunFinished    = "run.finished"
)

// Finding is the serialized form of a lint.Finding.
type Finding struct {
	Lint        string      `json:"lint"`
	Description string      `json:"description"`
	Citation    string      `json:"citation,omitempty"`
	Status      lint.Status `json:"status"`
	Details     string      `json:"details,omitempty"`
}

// Document is the outcome of linting one input document.
//
// Error is set when the document could not be decoded; such a document has
// no findings and no Kind.
type Document struct {
	Source          string       `json:"source"`
	Index           int          `json:"index"`
	Kind            subject.Kind `json:"kind,omitempty"`
	Name            string       `json:"name,omitempty"`
	Status          lint.Status  `json:"status"`
	Findings        []Finding    `json:"findings"`
	WarningsPresent bool         `json:"warnings_present"`
	ErrorsPresent   bool         `json:"errors_present"`
	Error           string       `json:"error,omitempty"`
}

// NewDocument converts the findings of one linted document. name is the
// certificate subject or the CRL issuer.
func NewDocument(source string, index int, kind subject.Kind, name string, findings []lint.Finding) Document {
	d := Document{
		Source:   source,
		Index:    index,
		Kind:     kind,
		Name:     name,
		Status:   lint.MaxStatus(findings),
		Findings: make([]Finding, 0, len(findings)),
	}
	for _, f := range findings {
		citation, _ := f.Definition.Citation()
		d.Findings = append(d.Findings, Finding{
			Lint:        f.Definition.Name(),
			Description: f.Definition.Description(),
			Citation:    citation,
			Status:      f.Result.Status,
			Details:     f.Result.Details,
		})
		switch f.Result.Status {
		case lint.Warn:
			d.WarningsPresent = true
		case lint.Error:
			d.ErrorsPresent = true
		}
	}
	return d
}

// FailedDocument records a document that could not be decoded.
func FailedDocument(source string, index int, err error) Document {
	return Document{
		Source:   source,
		Index:    index,
		Status:   lint.Error,
		Findings: []Finding{},
		Error:    err.Error(),
	}
}

// Failed reports whether the document could not be decoded.
func (d Document) Failed() bool {
	return d.Error != ""
}

// Label is the header of a decoded document: "Subject: <DN>" for
// certificates, "CRL Issuer: <DN>" for revocation lists.
func (d Document) Label() string {
	switch d.Kind {
	case subject.KindCertificate:
		return "Subject: " + d.Name
	case subject.KindRevocationList:
		return "CRL Issuer: " + d.Name
	default:
		return d.Name
	}
}

// Event is a lifecycle record for NDJSON streaming output.
//
// In NDJSON mode, sinks emit Events (one JSON object per line):
// - run.started
// - document.result
// - run.finished
//
// JSON mode remains an aggregate of Document values.
type Event struct {
	Type string `json:"type"`
	*Document
	Sources          int `json:"sources,omitempty"`
	Documents        int `json:"documents,omitempty"`
	CertificateLints int `json:"certificate_lints,omitempty"`
	CRLLints         int `json:"crl_lints,omitempty"`
	ExitCode         int `json:"exit_code,omitempty"`
}

func eventFromDocument(d Document) Event {
	return Event{Type: EventDocumentResult, Document: &d}
}
