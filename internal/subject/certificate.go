package subject

import (
	"errors"
	"fmt"

	zx509 "github.com/zmap/zcrypto/x509"
	"golang.org/x/crypto/cryptobyte"
	cryptobyte_asn1 "golang.org/x/crypto/cryptobyte/asn1"
)

var (
	tagExplicitVersion  = cryptobyte_asn1.Tag(0).Constructed().ContextSpecific()
	tagIssuerUniqueID   = cryptobyte_asn1.Tag(1).ContextSpecific()
	tagSubjectUniqueID  = cryptobyte_asn1.Tag(2).ContextSpecific()
	tagCertExtensions   = cryptobyte_asn1.Tag(3).Constructed().ContextSpecific()
	errMalformedVersion = errors.New("malformed version")
)

// Certificate is a decoded X.509 certificate. It is immutable after parsing.
type Certificate struct {
	Raw []byte

	Version            Version
	RawSerial          []byte
	Signature          AlgorithmIdentifier // tbsCertificate.signature
	SignatureAlgorithm AlgorithmIdentifier // Certificate.signatureAlgorithm
	Issuer             Name
	Validity           Validity
	Subject            Name
	IssuerUniqueID     []byte // nil when absent
	SubjectUniqueID    []byte // nil when absent
	Extensions         []Extension

	// Parsed is the zcrypto decode of Raw, or nil when zcrypto rejected it.
	Parsed *zx509.Certificate
}

// ParseCertificate decodes a single DER certificate. Errors are returned only
// for input that is not structurally a certificate; encoding irregularities
// that lints report on (negative serials, wrong time tags, unknown
// extensions) are preserved instead.
func ParseCertificate(der []byte) (*Certificate, error) {
	cert, err := parseCertificate(der)
	if err != nil {
		return nil, fmt.Errorf("parse certificate: %w", err)
	}
	if parsed, zerr := zx509.ParseCertificate(der); zerr == nil {
		cert.Parsed = parsed
	}
	return cert, nil
}

func parseCertificate(der []byte) (*Certificate, error) {
	input := cryptobyte.String(der)
	var certSeq cryptobyte.String
	if !input.ReadASN1(&certSeq, cryptobyte_asn1.SEQUENCE) {
		return nil, errors.New("malformed certificate")
	}
	if !input.Empty() {
		return nil, ErrTrailingData
	}

	var tbs cryptobyte.String
	if !certSeq.ReadASN1(&tbs, cryptobyte_asn1.SEQUENCE) {
		return nil, errors.New("malformed tbsCertificate")
	}

	cert := &Certificate{Raw: append([]byte{}, der...)}

	var err error
	if cert.Version, _, err = readVersion(&tbs, tagExplicitVersion); err != nil {
		return nil, err
	}
	var serial cryptobyte.String
	if !tbs.ReadASN1(&serial, cryptobyte_asn1.INTEGER) {
		return nil, errors.New("malformed serial number")
	}
	cert.RawSerial = append([]byte{}, serial...)

	if cert.Signature, err = readAlgorithmIdentifier(&tbs); err != nil {
		return nil, fmt.Errorf("signature: %w", err)
	}
	if cert.Issuer, err = readName(&tbs); err != nil {
		return nil, fmt.Errorf("issuer: %w", err)
	}

	var validity cryptobyte.String
	if !tbs.ReadASN1(&validity, cryptobyte_asn1.SEQUENCE) {
		return nil, errors.New("malformed validity")
	}
	if cert.Validity.NotBefore, err = readTime(&validity); err != nil {
		return nil, fmt.Errorf("notBefore: %w", err)
	}
	if cert.Validity.NotAfter, err = readTime(&validity); err != nil {
		return nil, fmt.Errorf("notAfter: %w", err)
	}
	if !validity.Empty() {
		return nil, errors.New("trailing data in validity")
	}

	if cert.Subject, err = readName(&tbs); err != nil {
		return nil, fmt.Errorf("subject: %w", err)
	}
	if !tbs.SkipASN1(cryptobyte_asn1.SEQUENCE) {
		return nil, errors.New("malformed subjectPublicKeyInfo")
	}

	if cert.IssuerUniqueID, err = readUniqueID(&tbs, tagIssuerUniqueID); err != nil {
		return nil, fmt.Errorf("issuerUniqueID: %w", err)
	}
	if cert.SubjectUniqueID, err = readUniqueID(&tbs, tagSubjectUniqueID); err != nil {
		return nil, fmt.Errorf("subjectUniqueID: %w", err)
	}

	var exts cryptobyte.String
	var present bool
	if !tbs.ReadOptionalASN1(&exts, &present, tagCertExtensions) {
		return nil, errors.New("malformed extensions")
	}
	if present {
		if cert.Extensions, err = readExtensions(&exts); err != nil {
			return nil, err
		}
		if !exts.Empty() {
			return nil, errors.New("trailing data in extensions")
		}
	}
	if !tbs.Empty() {
		return nil, errors.New("trailing data in tbsCertificate")
	}

	if cert.SignatureAlgorithm, err = readAlgorithmIdentifier(&certSeq); err != nil {
		return nil, fmt.Errorf("signatureAlgorithm: %w", err)
	}
	if !certSeq.SkipASN1(cryptobyte_asn1.BIT_STRING) || !certSeq.Empty() {
		return nil, errors.New("malformed signature value")
	}
	return cert, nil
}

// readVersion reads the optional explicitly tagged version. Absent means V1.
func readVersion(s *cryptobyte.String, tag cryptobyte_asn1.Tag) (Version, bool, error) {
	var content cryptobyte.String
	var present bool
	if !s.ReadOptionalASN1(&content, &present, tag) {
		return V1, false, errMalformedVersion
	}
	if !present {
		return V1, false, nil
	}
	var v int64
	if !content.ReadASN1Integer(&v) || !content.Empty() {
		return V1, false, errMalformedVersion
	}
	return Version(v), true, nil
}

func readAlgorithmIdentifier(s *cryptobyte.String) (AlgorithmIdentifier, error) {
	var ai AlgorithmIdentifier
	var seq cryptobyte.String
	if !s.ReadASN1(&seq, cryptobyte_asn1.SEQUENCE) || !seq.ReadASN1ObjectIdentifier(&ai.OID) {
		return ai, errors.New("malformed algorithm identifier")
	}
	if !seq.Empty() {
		ai.Parameters = append([]byte{}, seq...)
	}
	return ai, nil
}

func readTime(s *cryptobyte.String) (Time, error) {
	var t Time
	switch {
	case s.PeekASN1Tag(cryptobyte_asn1.UTCTime):
		t.Tag = cryptobyte_asn1.UTCTime
		if !s.ReadASN1UTCTime(&t.Time) {
			return t, errors.New("malformed UTCTime")
		}
	case s.PeekASN1Tag(cryptobyte_asn1.GeneralizedTime):
		t.Tag = cryptobyte_asn1.GeneralizedTime
		if !s.ReadASN1GeneralizedTime(&t.Time) {
			return t, errors.New("malformed GeneralizedTime")
		}
	default:
		return t, errors.New("expected UTCTime or GeneralizedTime")
	}
	return t, nil
}

func readUniqueID(s *cryptobyte.String, tag cryptobyte_asn1.Tag) ([]byte, error) {
	var id cryptobyte.String
	var present bool
	if !s.ReadOptionalASN1(&id, &present, tag) {
		return nil, errors.New("malformed unique identifier")
	}
	if !present {
		return nil, nil
	}
	return append([]byte{}, id...), nil
}
