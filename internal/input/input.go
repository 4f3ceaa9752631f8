// Package input reads certificate and CRL documents from files or stdin and
// frames them into DER blocks.
package input

import (
	"bytes"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
	"io"
	"os"

	"x509lint/internal/subject"
)

var (
	// ErrUnknownFormat is returned when data is neither PEM, base64 nor DER.
	ErrUnknownFormat = errors.New("could not determine input format")
	// ErrCorruptPEM is carried by a Block whose PEM armor or body is invalid.
	ErrCorruptPEM = errors.New("corrupt PEM block")
)

var (
	pemBegin = []byte("-----BEGIN ")
	pemDash  = []byte("-----")
)

// StdinName is the source name used for standard input.
const StdinName = "-"

// Format is the framing a block was found in.
type Format string

const (
	FormatTextPEM Format = "text+pem"
	FormatPEM     Format = "pem"
	FormatBase64  Format = "base64"
	FormatDER     Format = "der"
)

// PEM labels mapped to the subject kind they announce.
var pemLabels = map[string]subject.Kind{
	"CERTIFICATE":         subject.KindCertificate,
	"TRUSTED CERTIFICATE": subject.KindCertificate,
	"X509 CERTIFICATE":    subject.KindCertificate,
	"X509 CRL":            subject.KindRevocationList,
	"CRL":                 subject.KindRevocationList,
}

// Block is one DER document extracted from a source. Err is set, and DER is
// empty, when the block could not be framed.
type Block struct {
	Source string
	Index  int
	Format Format
	Label  string // PEM label, empty for base64 and DER
	DER    []byte
	Err    error
}

// Hint returns the subject kind the PEM label announces, or "" when the
// label is absent or unknown.
func (b Block) Hint() subject.Kind {
	return pemLabels[b.Label]
}

// UnexpectedLabel reports a PEM label that names neither a certificate nor a CRL.
func (b Block) UnexpectedLabel() bool {
	return b.Label != "" && b.Hint() == ""
}

// ReadSource reads the named file, or r when name is StdinName.
func ReadSource(name string, r io.Reader) ([]Block, error) {
	var data []byte
	var err error
	if name == StdinName {
		data, err = io.ReadAll(r)
	} else {
		data, err = os.ReadFile(name)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	blocks, err := Split(name, data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return blocks, nil
}

// Split detects the framing of data and returns its DER blocks in order.
//
// Detection order: an openssl text dump ("Certificate:" followed by PEM),
// PEM, base64, then raw DER.
func Split(source string, data []byte) ([]Block, error) {
	switch {
	case bytes.HasPrefix(data, []byte("Certificate:\n")):
		idx := bytes.Index(data, []byte("\n---"))
		if idx < 0 {
			return nil, errors.New("text dump without PEM block")
		}
		return splitPEM(source, data[idx+1:], FormatTextPEM)
	case bytes.HasPrefix(data, []byte("---")):
		return splitPEM(source, data, FormatPEM)
	}

	if der, ok := decodeBase64(data); ok {
		return []Block{{Source: source, Format: FormatBase64, DER: der}}, nil
	}
	if len(data) > 0 && data[0] == 0x30 {
		return []Block{{Source: source, Format: FormatDER, DER: data}}, nil
	}
	return nil, ErrUnknownFormat
}

// splitPEM frames every "-----BEGIN" marker in data. A marker whose block
// does not decode yields a Block carrying ErrCorruptPEM, so the document is
// reported instead of skipped.
func splitPEM(source string, data []byte, format Format) ([]Block, error) {
	var blocks []Block
	rest := data
	for {
		start := bytes.Index(rest, pemBegin)
		if start < 0 {
			break
		}
		rest = rest[start:]
		end := len(rest)
		if next := bytes.Index(rest[len(pemBegin):], pemBegin); next >= 0 {
			end = len(pemBegin) + next
		}
		segment := rest[:end]
		rest = rest[end:]

		b := Block{Source: source, Index: len(blocks), Format: format}
		if p, _ := pem.Decode(segment); p != nil {
			b.Label, b.DER = p.Type, p.Bytes
		} else {
			b.Label = beginLabel(segment)
			b.Err = fmt.Errorf("%w: %s", ErrCorruptPEM, b.Label)
		}
		blocks = append(blocks, b)
	}
	if len(blocks) == 0 {
		return nil, errors.New("no PEM block found")
	}
	return blocks, nil
}

// beginLabel extracts the label of a "-----BEGIN <label>-----" line.
func beginLabel(segment []byte) string {
	line := segment[len(pemBegin):]
	if i := bytes.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	label, _, _ := bytes.Cut(line, pemDash)
	return string(bytes.TrimSpace(label))
}

// decodeBase64 accepts standard base64, possibly wrapped over several lines,
// whose payload looks like a DER SEQUENCE.
func decodeBase64(data []byte) ([]byte, bool) {
	compact := bytes.Join(bytes.Fields(data), nil)
	if len(compact) == 0 || len(compact)%4 != 0 {
		return nil, false
	}
	der, err := base64.StdEncoding.DecodeString(string(compact))
	if err != nil || len(der) == 0 || der[0] != 0x30 {
		return nil, false
	}
	return der, true
}
