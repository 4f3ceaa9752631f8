package engine

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"x509lint/internal/config"
	"x509lint/internal/input"
	"x509lint/internal/output"
	"x509lint/internal/rules"
	"x509lint/internal/subject"
)

// ErrUndecodable is returned for a block that is neither a certificate nor a CRL.
var ErrUndecodable = errors.New("document is neither a certificate nor a CRL")

// Linter decodes one block and runs the registry matching its kind.
type Linter struct {
	catalog *rules.Catalog
	kind    string
	workers int
	log     logrus.FieldLogger
}

// NewLinter returns a Linter decoding blocks as kind (config.KindAuto,
// config.KindCert or config.KindCRL) and evaluating up to workers lints of a
// document at once.
func NewLinter(catalog *rules.Catalog, kind string, workers int, log logrus.FieldLogger) (*Linter, error) {
	if catalog == nil {
		return nil, errors.New("catalog is nil")
	}
	switch kind {
	case config.KindAuto, config.KindCert, config.KindCRL:
	default:
		return nil, fmt.Errorf("unsupported kind: %s", kind)
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Linter{catalog: catalog, kind: kind, workers: workers, log: log}, nil
}

// Lint decodes b and lints it. Decoding failures are reported on the
// returned Document, never as an error.
func (l *Linter) Lint(b input.Block) output.Document {
	log := l.log.WithFields(logrus.Fields{"source": b.Source, "index": b.Index})
	if b.Err != nil {
		log.WithError(b.Err).Debug("unframed document")
		return output.FailedDocument(b.Source, b.Index, b.Err)
	}
	if b.UnexpectedLabel() {
		log.WithField("label", b.Label).Warn("unexpected PEM label")
	}

	decoded, err := l.decode(b)
	if err != nil {
		log.WithError(err).Debug("undecodable document")
		return output.FailedDocument(b.Source, b.Index, err)
	}

	var doc output.Document
	switch s := decoded.(type) {
	case *subject.Certificate:
		findings := l.catalog.Certificates.RunLintsParallel(s, l.workers)
		doc = output.NewDocument(b.Source, b.Index, subject.KindCertificate, s.Subject.String(), findings)
	case *subject.RevocationList:
		findings := l.catalog.RevocationLists.RunLintsParallel(s, l.workers)
		doc = output.NewDocument(b.Source, b.Index, subject.KindRevocationList, s.Issuer.String(), findings)
	}
	log.WithFields(logrus.Fields{"kind": doc.Kind, "findings": len(doc.Findings)}).Debug("linted document")
	return doc
}

func (l *Linter) decode(b input.Block) (any, error) {
	hint := b.Hint()
	switch l.kind {
	case config.KindCert:
		if hint == subject.KindRevocationList {
			l.log.WithFields(logrus.Fields{"source": b.Source, "index": b.Index}).Warnf("PEM label %q decoded as a certificate", b.Label)
		}
		return subject.ParseCertificate(b.DER)
	case config.KindCRL:
		if hint == subject.KindCertificate {
			l.log.WithFields(logrus.Fields{"source": b.Source, "index": b.Index}).Warnf("PEM label %q decoded as a CRL", b.Label)
		}
		return subject.ParseRevocationList(b.DER)
	}

	// Auto: certificate first unless the PEM label announces a CRL.
	if hint == subject.KindRevocationList {
		crl, crlErr := subject.ParseRevocationList(b.DER)
		if crlErr == nil {
			return crl, nil
		}
		cert, certErr := subject.ParseCertificate(b.DER)
		if certErr == nil {
			return cert, nil
		}
		return nil, fmt.Errorf("%w: %v; %v", ErrUndecodable, crlErr, certErr)
	}

	cert, certErr := subject.ParseCertificate(b.DER)
	if certErr == nil {
		return cert, nil
	}
	crl, crlErr := subject.ParseRevocationList(b.DER)
	if crlErr == nil {
		return crl, nil
	}
	return nil, fmt.Errorf("%w: %v; %v", ErrUndecodable, certErr, crlErr)
}
