package subject

import (
	"encoding/hex"
	"errors"
	"fmt"

	zx509 "github.com/zmap/zcrypto/x509"
	"golang.org/x/crypto/cryptobyte"
	cryptobyte_asn1 "golang.org/x/crypto/cryptobyte/asn1"
)

var tagCRLExtensions = cryptobyte_asn1.Tag(0).Constructed().ContextSpecific()

// RevokedCertificate is one entry of revokedCertificates.
type RevokedCertificate struct {
	RawSerial      []byte
	RevocationDate Time
	Extensions     []Extension
}

// SerialHex renders the raw serial bytes as lowercase hex.
func (r RevokedCertificate) SerialHex() string {
	return hex.EncodeToString(r.RawSerial)
}

// RevocationList is a decoded X.509 CRL. It is immutable after parsing.
type RevocationList struct {
	Raw []byte

	Version            Version
	HasVersion         bool // false when the optional version field is absent (v1)
	Signature          AlgorithmIdentifier
	SignatureAlgorithm AlgorithmIdentifier
	Issuer             Name
	ThisUpdate         Time
	NextUpdate         *Time
	Revoked            []RevokedCertificate
	Extensions         []Extension

	// Parsed is the zcrypto decode of Raw, or nil when zcrypto rejected it.
	Parsed *zx509.RevocationList
}

// ParseRevocationList decodes a single DER CRL.
func ParseRevocationList(der []byte) (*RevocationList, error) {
	crl, err := parseRevocationList(der)
	if err != nil {
		return nil, fmt.Errorf("parse crl: %w", err)
	}
	if parsed, zerr := zx509.ParseRevocationList(der); zerr == nil {
		crl.Parsed = parsed
	}
	return crl, nil
}

func parseRevocationList(der []byte) (*RevocationList, error) {
	input := cryptobyte.String(der)
	var crlSeq cryptobyte.String
	if !input.ReadASN1(&crlSeq, cryptobyte_asn1.SEQUENCE) {
		return nil, errors.New("malformed crl")
	}
	if !input.Empty() {
		return nil, ErrTrailingData
	}

	var tbs cryptobyte.String
	if !crlSeq.ReadASN1(&tbs, cryptobyte_asn1.SEQUENCE) {
		return nil, errors.New("malformed tbsCertList")
	}

	crl := &RevocationList{Raw: append([]byte{}, der...)}

	if tbs.PeekASN1Tag(cryptobyte_asn1.INTEGER) {
		var v int64
		if !tbs.ReadASN1Integer(&v) {
			return nil, errMalformedVersion
		}
		crl.Version, crl.HasVersion = Version(v), true
	}

	var err error
	if crl.Signature, err = readAlgorithmIdentifier(&tbs); err != nil {
		return nil, fmt.Errorf("signature: %w", err)
	}
	if crl.Issuer, err = readName(&tbs); err != nil {
		return nil, fmt.Errorf("issuer: %w", err)
	}
	if crl.ThisUpdate, err = readTime(&tbs); err != nil {
		return nil, fmt.Errorf("thisUpdate: %w", err)
	}
	if tbs.PeekASN1Tag(cryptobyte_asn1.UTCTime) || tbs.PeekASN1Tag(cryptobyte_asn1.GeneralizedTime) {
		next, err := readTime(&tbs)
		if err != nil {
			return nil, fmt.Errorf("nextUpdate: %w", err)
		}
		crl.NextUpdate = &next
	}

	if tbs.PeekASN1Tag(cryptobyte_asn1.SEQUENCE) {
		var revoked cryptobyte.String
		if !tbs.ReadASN1(&revoked, cryptobyte_asn1.SEQUENCE) {
			return nil, errors.New("malformed revokedCertificates")
		}
		for !revoked.Empty() {
			entry, err := readRevokedCertificate(&revoked)
			if err != nil {
				return nil, fmt.Errorf("revokedCertificates[%d]: %w", len(crl.Revoked), err)
			}
			crl.Revoked = append(crl.Revoked, entry)
		}
	}

	var exts cryptobyte.String
	var present bool
	if !tbs.ReadOptionalASN1(&exts, &present, tagCRLExtensions) {
		return nil, errors.New("malformed crlExtensions")
	}
	if present {
		if crl.Extensions, err = readExtensions(&exts); err != nil {
			return nil, err
		}
		if !exts.Empty() {
			return nil, errors.New("trailing data in crlExtensions")
		}
	}
	if !tbs.Empty() {
		return nil, errors.New("trailing data in tbsCertList")
	}

	if crl.SignatureAlgorithm, err = readAlgorithmIdentifier(&crlSeq); err != nil {
		return nil, fmt.Errorf("signatureAlgorithm: %w", err)
	}
	if !crlSeq.SkipASN1(cryptobyte_asn1.BIT_STRING) || !crlSeq.Empty() {
		return nil, errors.New("malformed signature value")
	}
	return crl, nil
}

func readRevokedCertificate(s *cryptobyte.String) (RevokedCertificate, error) {
	var entry RevokedCertificate
	var seq, serial cryptobyte.String
	if !s.ReadASN1(&seq, cryptobyte_asn1.SEQUENCE) || !seq.ReadASN1(&serial, cryptobyte_asn1.INTEGER) {
		return entry, errors.New("malformed entry")
	}
	entry.RawSerial = append([]byte{}, serial...)

	var err error
	if entry.RevocationDate, err = readTime(&seq); err != nil {
		return entry, fmt.Errorf("revocationDate: %w", err)
	}
	if !seq.Empty() {
		if entry.Extensions, err = readExtensions(&seq); err != nil {
			return entry, err
		}
		if !seq.Empty() {
			return entry, errors.New("trailing data in entry")
		}
	}
	return entry, nil
}
