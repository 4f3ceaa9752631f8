package subject

import (
	"encoding/asn1"
	"errors"
	"fmt"

	"golang.org/x/crypto/cryptobyte"
	cryptobyte_asn1 "golang.org/x/crypto/cryptobyte/asn1"
)

var (
	OIDSubjectAltName        = asn1.ObjectIdentifier{2, 5, 29, 17}
	OIDIssuerAltName         = asn1.ObjectIdentifier{2, 5, 29, 18}
	OIDBasicConstraints      = asn1.ObjectIdentifier{2, 5, 29, 19}
	OIDKeyUsage              = asn1.ObjectIdentifier{2, 5, 29, 15}
	OIDExtKeyUsage           = asn1.ObjectIdentifier{2, 5, 29, 37}
	OIDSubjectKeyIdentifier  = asn1.ObjectIdentifier{2, 5, 29, 14}
	OIDAuthorityKeyID        = asn1.ObjectIdentifier{2, 5, 29, 35}
	OIDCertificatePolicies   = asn1.ObjectIdentifier{2, 5, 29, 32}
	OIDCRLDistributionPoints = asn1.ObjectIdentifier{2, 5, 29, 31}
	OIDFreshestCRL           = asn1.ObjectIdentifier{2, 5, 29, 46}
	OIDAuthorityInfoAccess   = asn1.ObjectIdentifier{1, 3, 6, 1, 5, 5, 7, 1, 1}
	OIDSubjectInfoAccess     = asn1.ObjectIdentifier{1, 3, 6, 1, 5, 5, 7, 1, 11}
	OIDNameConstraints       = asn1.ObjectIdentifier{2, 5, 29, 30}
	OIDPolicyConstraints     = asn1.ObjectIdentifier{2, 5, 29, 36}
	OIDPolicyMappings        = asn1.ObjectIdentifier{2, 5, 29, 33}
	OIDInhibitAnyPolicy      = asn1.ObjectIdentifier{2, 5, 29, 54}
	OIDSCTList               = asn1.ObjectIdentifier{1, 3, 6, 1, 4, 1, 11129, 2, 4, 2}
	OIDSubjectDirectoryAttrs = asn1.ObjectIdentifier{2, 5, 29, 9}
	OIDCRLNumber             = asn1.ObjectIdentifier{2, 5, 29, 20}
	OIDDeltaCRLIndicator     = asn1.ObjectIdentifier{2, 5, 29, 27}
	OIDIssuingDistPoint      = asn1.ObjectIdentifier{2, 5, 29, 28}
	OIDReasonCode            = asn1.ObjectIdentifier{2, 5, 29, 21}
	OIDInvalidityDate        = asn1.ObjectIdentifier{2, 5, 29, 24}
	OIDCertificateIssuer     = asn1.ObjectIdentifier{2, 5, 29, 29}
	OIDNetscapeCertType      = asn1.ObjectIdentifier{2, 16, 840, 1, 113730, 1, 1}
	OIDNetscapeComment       = asn1.ObjectIdentifier{2, 16, 840, 1, 113730, 1, 13}
)

// knownExtensions maps supported OIDs to the decoder that validates their
// value. The subject alternative name is decoded separately into GeneralNames.
var knownExtensions = []struct {
	oid    asn1.ObjectIdentifier
	name   string
	decode func(cryptobyte.String) error
}{
	{OIDIssuerAltName, "issuerAltName", decodeGeneralNamesValue},
	{OIDBasicConstraints, "basicConstraints", decodeBasicConstraints},
	{OIDKeyUsage, "keyUsage", decodeKeyUsage},
	{OIDExtKeyUsage, "extKeyUsage", decodeExtKeyUsage},
	{OIDSubjectKeyIdentifier, "subjectKeyIdentifier", decodeOctetString},
	{OIDAuthorityKeyID, "authorityKeyIdentifier", decodeAuthorityKeyID},
	{OIDCertificatePolicies, "certificatePolicies", decodeCertificatePolicies},
	{OIDCRLDistributionPoints, "cRLDistributionPoints", decodeDistributionPoints},
	{OIDFreshestCRL, "freshestCRL", decodeDistributionPoints},
	{OIDAuthorityInfoAccess, "authorityInfoAccess", decodeAccessDescriptions},
	{OIDSubjectInfoAccess, "subjectInfoAccess", decodeAccessDescriptions},
	{OIDNameConstraints, "nameConstraints", decodeNameConstraints},
	{OIDPolicyConstraints, "policyConstraints", decodePolicyConstraints},
	{OIDPolicyMappings, "policyMappings", decodePolicyMappings},
	{OIDInhibitAnyPolicy, "inhibitAnyPolicy", decodeNonNegativeInteger},
	{OIDSCTList, "signedCertificateTimestampList", decodeSCTList},
	{OIDSubjectDirectoryAttrs, "subjectDirectoryAttributes", decodeSubjectDirectoryAttrs},
	{OIDCRLNumber, "cRLNumber", decodeNonNegativeInteger},
	{OIDDeltaCRLIndicator, "deltaCRLIndicator", decodeNonNegativeInteger},
	{OIDIssuingDistPoint, "issuingDistributionPoint", decodeIssuingDistPoint},
	{OIDReasonCode, "reasonCode", decodeReasonCode},
	{OIDInvalidityDate, "invalidityDate", decodeInvalidityDate},
	{OIDCertificateIssuer, "certificateIssuer", decodeGeneralNamesValue},
	{OIDNetscapeCertType, "netscapeCertType", decodeBitString},
	{OIDNetscapeComment, "netscapeComment", decodeIA5String},
}

// Extension is one certificate, CRL or CRL entry extension.
type Extension struct {
	OID      asn1.ObjectIdentifier
	Critical bool
	Value    []byte
	Parsed   ParsedExtension
}

// ParsedExtension is the decoded form of an extension value. It is one of
// UnsupportedExtension, ParseErrorExtension, SubjectAltName or KnownExtension.
type ParsedExtension interface {
	isParsedExtension()
}

// UnsupportedExtension marks an OID this package does not recognize.
type UnsupportedExtension struct {
	OID asn1.ObjectIdentifier
}

// ParseErrorExtension marks a recognized OID whose value failed to decode.
type ParseErrorExtension struct {
	Err error
}

type SubjectAltName struct {
	Names []GeneralName
}

// KnownExtension is a recognized extension whose value is well formed.
type KnownExtension struct {
	Name string
}

func (UnsupportedExtension) isParsedExtension() {}
func (ParseErrorExtension) isParsedExtension()  {}
func (SubjectAltName) isParsedExtension()       {}
func (KnownExtension) isParsedExtension()       {}

// GeneralNameKind is the context-specific tag number of a GeneralName.
type GeneralNameKind int

const (
	OtherName GeneralNameKind = iota
	RFC822Name
	DNSName
	X400Address
	DirectoryName
	EDIPartyName
	URI
	IPAddress
	RegisteredID
)

var generalNameKinds = [...]string{
	"otherName", "rfc822Name", "dNSName", "x400Address", "directoryName",
	"ediPartyName", "uniformResourceIdentifier", "iPAddress", "registeredID",
}

func (k GeneralNameKind) String() string {
	if k >= 0 && int(k) < len(generalNameKinds) {
		return generalNameKinds[k]
	}
	return fmt.Sprintf("generalName(%d)", int(k))
}

// GeneralName holds the undecoded content of one GeneralName choice.
type GeneralName struct {
	Kind  GeneralNameKind
	Value []byte
}

// ParseExtension classifies an extension value by OID. A recognized OID whose
// value does not match its ASN.1 structure yields ParseErrorExtension.
func ParseExtension(oid asn1.ObjectIdentifier, value []byte) ParsedExtension {
	if oid.Equal(OIDSubjectAltName) {
		names, err := decodeGeneralNames(cryptobyte.String(value))
		if err != nil {
			return ParseErrorExtension{Err: fmt.Errorf("subjectAltName: %w", err)}
		}
		return SubjectAltName{Names: names}
	}
	for _, known := range knownExtensions {
		if !known.oid.Equal(oid) {
			continue
		}
		if err := known.decode(cryptobyte.String(value)); err != nil {
			return ParseErrorExtension{Err: fmt.Errorf("%s: %w", known.name, err)}
		}
		return KnownExtension{Name: known.name}
	}
	return UnsupportedExtension{OID: oid}
}

// readExtensions consumes a SEQUENCE OF Extension.
func readExtensions(s *cryptobyte.String) ([]Extension, error) {
	var seq cryptobyte.String
	if !s.ReadASN1(&seq, cryptobyte_asn1.SEQUENCE) {
		return nil, errors.New("malformed extensions")
	}
	var exts []Extension
	for !seq.Empty() {
		var raw cryptobyte.String
		var ext Extension
		if !seq.ReadASN1(&raw, cryptobyte_asn1.SEQUENCE) || !raw.ReadASN1ObjectIdentifier(&ext.OID) {
			return nil, errors.New("malformed extension")
		}
		if raw.PeekASN1Tag(cryptobyte_asn1.BOOLEAN) && !raw.ReadASN1Boolean(&ext.Critical) {
			return nil, fmt.Errorf("malformed critical flag in extension %s", ext.OID)
		}
		var value cryptobyte.String
		if !raw.ReadASN1(&value, cryptobyte_asn1.OCTET_STRING) || !raw.Empty() {
			return nil, fmt.Errorf("malformed value in extension %s", ext.OID)
		}
		ext.Value = append([]byte{}, value...)
		ext.Parsed = ParseExtension(ext.OID, ext.Value)
		exts = append(exts, ext)
	}
	return exts, nil
}
