package subject

import (
	"encoding/asn1"
	"errors"
	"fmt"
	"math/big"
	"time"

	"golang.org/x/crypto/cryptobyte"
	cryptobyte_asn1 "golang.org/x/crypto/cryptobyte/asn1"
)

var (
	errExtensionTrailingData = errors.New("trailing data in extension value")
	errEmptyGeneralNames     = errors.New("empty GeneralNames sequence")
	errUnexpectedField       = errors.New("unexpected field in SEQUENCE")
)

func contextTag(n uint8) cryptobyte_asn1.Tag {
	return cryptobyte_asn1.Tag(n).ContextSpecific()
}

// wholeSequence reads a SEQUENCE that spans the entire value.
func wholeSequence(v cryptobyte.String) (cryptobyte.String, error) {
	var seq cryptobyte.String
	if !v.ReadASN1(&seq, cryptobyte_asn1.SEQUENCE) {
		return nil, errors.New("expected SEQUENCE")
	}
	if !v.Empty() {
		return nil, errExtensionTrailingData
	}
	return seq, nil
}

// decodeSequenceOf walks a SEQUENCE SIZE (1..MAX) OF element spanning the
// entire value.
func decodeSequenceOf(v cryptobyte.String, element string, fn func(*cryptobyte.String) error) error {
	seq, err := wholeSequence(v)
	if err != nil {
		return err
	}
	if seq.Empty() {
		return fmt.Errorf("empty SEQUENCE OF %s", element)
	}
	for !seq.Empty() {
		if err := fn(&seq); err != nil {
			return err
		}
	}
	return nil
}

// constructed reports whether the GeneralName choice is encoded as a
// constructed type.
func (k GeneralNameKind) constructed() bool {
	switch k {
	case OtherName, X400Address, DirectoryName, EDIPartyName:
		return true
	}
	return false
}

func readGeneralName(s *cryptobyte.String) (GeneralName, error) {
	var content cryptobyte.String
	var tag cryptobyte_asn1.Tag
	if !s.ReadAnyASN1(&content, &tag) {
		return GeneralName{}, errors.New("malformed GeneralName")
	}
	if tag&0xc0 != 0x80 {
		return GeneralName{}, fmt.Errorf("GeneralName has non context-specific tag 0x%02x", uint8(tag))
	}
	kind := GeneralNameKind(tag & 0x1f)
	if kind > RegisteredID {
		return GeneralName{}, fmt.Errorf("unknown GeneralName choice [%d]", int(kind))
	}
	if (tag&0x20 != 0) != kind.constructed() {
		return GeneralName{}, fmt.Errorf("wrong encoding for %s", kind)
	}
	return GeneralName{Kind: kind, Value: append([]byte{}, content...)}, nil
}

// readGeneralNameList decodes the contents of a GeneralNames sequence.
func readGeneralNameList(list cryptobyte.String) ([]GeneralName, error) {
	if list.Empty() {
		return nil, errEmptyGeneralNames
	}
	var names []GeneralName
	for !list.Empty() {
		name, err := readGeneralName(&list)
		if err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, nil
}

func decodeGeneralNames(v cryptobyte.String) ([]GeneralName, error) {
	seq, err := wholeSequence(v)
	if err != nil {
		return nil, err
	}
	return readGeneralNameList(seq)
}

func decodeGeneralNamesValue(v cryptobyte.String) error {
	_, err := decodeGeneralNames(v)
	return err
}

func decodeBasicConstraints(v cryptobyte.String) error {
	seq, err := wholeSequence(v)
	if err != nil {
		return err
	}
	if seq.PeekASN1Tag(cryptobyte_asn1.BOOLEAN) {
		var ca bool
		if !seq.ReadASN1Boolean(&ca) {
			return errors.New("malformed cA flag")
		}
	}
	if seq.PeekASN1Tag(cryptobyte_asn1.INTEGER) {
		var pathLen int64
		if !seq.ReadASN1Integer(&pathLen) || pathLen < 0 {
			return errors.New("invalid pathLenConstraint")
		}
	}
	if !seq.Empty() {
		return errUnexpectedField
	}
	return nil
}

func readBitString(v cryptobyte.String) (asn1.BitString, error) {
	var bits asn1.BitString
	if !v.ReadASN1BitString(&bits) {
		return bits, errors.New("expected BIT STRING")
	}
	if !v.Empty() {
		return bits, errExtensionTrailingData
	}
	return bits, nil
}

func decodeBitString(v cryptobyte.String) error {
	_, err := readBitString(v)
	return err
}

func decodeKeyUsage(v cryptobyte.String) error {
	bits, err := readBitString(v)
	if err != nil {
		return err
	}
	if bits.BitLength == 0 {
		return errors.New("no key usage bit asserted")
	}
	return nil
}

// checkReasonFlags validates the contents of an implicitly tagged BIT STRING.
func checkReasonFlags(b cryptobyte.String) error {
	if len(b) == 0 || b[0] > 7 || (len(b) == 1 && b[0] != 0) {
		return errors.New("malformed ReasonFlags")
	}
	return nil
}

func decodeExtKeyUsage(v cryptobyte.String) error {
	return decodeSequenceOf(v, "KeyPurposeId", func(s *cryptobyte.String) error {
		var oid asn1.ObjectIdentifier
		if !s.ReadASN1ObjectIdentifier(&oid) {
			return errors.New("expected OBJECT IDENTIFIER")
		}
		return nil
	})
}

func decodeOctetString(v cryptobyte.String) error {
	var octets cryptobyte.String
	if !v.ReadASN1(&octets, cryptobyte_asn1.OCTET_STRING) {
		return errors.New("expected OCTET STRING")
	}
	if !v.Empty() {
		return errExtensionTrailingData
	}
	return nil
}

func decodeIA5String(v cryptobyte.String) error {
	var text cryptobyte.String
	if !v.ReadASN1(&text, cryptobyte_asn1.IA5String) {
		return errors.New("expected IA5String")
	}
	if !v.Empty() {
		return errExtensionTrailingData
	}
	for _, c := range text {
		if c >= 0x80 {
			return errors.New("non-ASCII byte in IA5String")
		}
	}
	return nil
}

func decodeAuthorityKeyID(v cryptobyte.String) error {
	seq, err := wholeSequence(v)
	if err != nil {
		return err
	}
	var keyID, issuer, serial cryptobyte.String
	var hasIssuer, hasSerial bool
	if !seq.ReadOptionalASN1(&keyID, nil, contextTag(0)) ||
		!seq.ReadOptionalASN1(&issuer, &hasIssuer, contextTag(1).Constructed()) ||
		!seq.ReadOptionalASN1(&serial, &hasSerial, contextTag(2)) {
		return errors.New("malformed AuthorityKeyIdentifier")
	}
	if !seq.Empty() {
		return errUnexpectedField
	}
	if hasIssuer {
		if _, err := readGeneralNameList(issuer); err != nil {
			return fmt.Errorf("authorityCertIssuer: %w", err)
		}
	}
	if hasSerial && serial.Empty() {
		return errors.New("empty authorityCertSerialNumber")
	}
	return nil
}

func decodeCertificatePolicies(v cryptobyte.String) error {
	return decodeSequenceOf(v, "PolicyInformation", func(s *cryptobyte.String) error {
		var info cryptobyte.String
		var policy asn1.ObjectIdentifier
		if !s.ReadASN1(&info, cryptobyte_asn1.SEQUENCE) || !info.ReadASN1ObjectIdentifier(&policy) {
			return errors.New("malformed PolicyInformation")
		}
		if info.Empty() {
			return nil
		}
		var qualifiers cryptobyte.String
		if !info.ReadASN1(&qualifiers, cryptobyte_asn1.SEQUENCE) || !info.Empty() || qualifiers.Empty() {
			return fmt.Errorf("malformed qualifiers for policy %s", policy)
		}
		for !qualifiers.Empty() {
			var q, qualifier cryptobyte.String
			var id asn1.ObjectIdentifier
			var tag cryptobyte_asn1.Tag
			if !qualifiers.ReadASN1(&q, cryptobyte_asn1.SEQUENCE) || !q.ReadASN1ObjectIdentifier(&id) {
				return fmt.Errorf("malformed qualifier for policy %s", policy)
			}
			if !q.Empty() && (!q.ReadAnyASN1Element(&qualifier, &tag) || !q.Empty()) {
				return fmt.Errorf("malformed qualifier %s for policy %s", id, policy)
			}
		}
		return nil
	})
}

// decodeDistributionPointName decodes the contents of the explicit [0]
// wrapper around a DistributionPointName choice.
func decodeDistributionPointName(name cryptobyte.String) error {
	var content cryptobyte.String
	var tag cryptobyte_asn1.Tag
	if !name.ReadAnyASN1(&content, &tag) || !name.Empty() {
		return errors.New("malformed DistributionPointName")
	}
	switch tag {
	case contextTag(0).Constructed():
		if _, err := readGeneralNameList(content); err != nil {
			return fmt.Errorf("fullName: %w", err)
		}
		return nil
	case contextTag(1).Constructed():
		if content.Empty() {
			return errors.New("empty nameRelativeToCRLIssuer")
		}
		return nil
	}
	return fmt.Errorf("unknown DistributionPointName tag 0x%02x", uint8(tag))
}

func decodeDistributionPoints(v cryptobyte.String) error {
	return decodeSequenceOf(v, "DistributionPoint", func(s *cryptobyte.String) error {
		var dp, name, reasons, issuer cryptobyte.String
		var hasName, hasReasons, hasIssuer bool
		if !s.ReadASN1(&dp, cryptobyte_asn1.SEQUENCE) ||
			!dp.ReadOptionalASN1(&name, &hasName, contextTag(0).Constructed()) ||
			!dp.ReadOptionalASN1(&reasons, &hasReasons, contextTag(1)) ||
			!dp.ReadOptionalASN1(&issuer, &hasIssuer, contextTag(2).Constructed()) ||
			!dp.Empty() {
			return errors.New("malformed DistributionPoint")
		}
		if !hasName && !hasIssuer {
			return errors.New("DistributionPoint has neither distributionPoint nor cRLIssuer")
		}
		if hasName {
			if err := decodeDistributionPointName(name); err != nil {
				return err
			}
		}
		if hasReasons {
			if err := checkReasonFlags(reasons); err != nil {
				return err
			}
		}
		if hasIssuer {
			if _, err := readGeneralNameList(issuer); err != nil {
				return fmt.Errorf("cRLIssuer: %w", err)
			}
		}
		return nil
	})
}

func decodeAccessDescriptions(v cryptobyte.String) error {
	return decodeSequenceOf(v, "AccessDescription", func(s *cryptobyte.String) error {
		var ad cryptobyte.String
		var method asn1.ObjectIdentifier
		if !s.ReadASN1(&ad, cryptobyte_asn1.SEQUENCE) || !ad.ReadASN1ObjectIdentifier(&method) {
			return errors.New("malformed AccessDescription")
		}
		if _, err := readGeneralName(&ad); err != nil {
			return fmt.Errorf("accessLocation for %s: %w", method, err)
		}
		if !ad.Empty() {
			return errUnexpectedField
		}
		return nil
	})
}

func decodeGeneralSubtrees(subtrees cryptobyte.String) error {
	if subtrees.Empty() {
		return errors.New("empty GeneralSubtrees")
	}
	for !subtrees.Empty() {
		var subtree cryptobyte.String
		if !subtrees.ReadASN1(&subtree, cryptobyte_asn1.SEQUENCE) {
			return errors.New("malformed GeneralSubtree")
		}
		if _, err := readGeneralName(&subtree); err != nil {
			return fmt.Errorf("base: %w", err)
		}
		if !subtree.SkipOptionalASN1(contextTag(0)) ||
			!subtree.SkipOptionalASN1(contextTag(1)) ||
			!subtree.Empty() {
			return errors.New("malformed GeneralSubtree bounds")
		}
	}
	return nil
}

func decodeNameConstraints(v cryptobyte.String) error {
	seq, err := wholeSequence(v)
	if err != nil {
		return err
	}
	var permitted, excluded cryptobyte.String
	var hasPermitted, hasExcluded bool
	if !seq.ReadOptionalASN1(&permitted, &hasPermitted, contextTag(0).Constructed()) ||
		!seq.ReadOptionalASN1(&excluded, &hasExcluded, contextTag(1).Constructed()) {
		return errors.New("malformed NameConstraints")
	}
	if !seq.Empty() {
		return errUnexpectedField
	}
	if !hasPermitted && !hasExcluded {
		return errors.New("neither permittedSubtrees nor excludedSubtrees present")
	}
	if hasPermitted {
		if err := decodeGeneralSubtrees(permitted); err != nil {
			return fmt.Errorf("permittedSubtrees: %w", err)
		}
	}
	if hasExcluded {
		if err := decodeGeneralSubtrees(excluded); err != nil {
			return fmt.Errorf("excludedSubtrees: %w", err)
		}
	}
	return nil
}

func decodePolicyConstraints(v cryptobyte.String) error {
	seq, err := wholeSequence(v)
	if err != nil {
		return err
	}
	var require, inhibit cryptobyte.String
	var hasRequire, hasInhibit bool
	if !seq.ReadOptionalASN1(&require, &hasRequire, contextTag(0)) ||
		!seq.ReadOptionalASN1(&inhibit, &hasInhibit, contextTag(1)) {
		return errors.New("malformed PolicyConstraints")
	}
	if !seq.Empty() {
		return errUnexpectedField
	}
	if !hasRequire && !hasInhibit {
		return errors.New("empty PolicyConstraints")
	}
	if (hasRequire && require.Empty()) || (hasInhibit && inhibit.Empty()) {
		return errors.New("empty SkipCerts")
	}
	return nil
}

func decodePolicyMappings(v cryptobyte.String) error {
	return decodeSequenceOf(v, "PolicyMapping", func(s *cryptobyte.String) error {
		var mapping cryptobyte.String
		var issuerPolicy, subjectPolicy asn1.ObjectIdentifier
		if !s.ReadASN1(&mapping, cryptobyte_asn1.SEQUENCE) ||
			!mapping.ReadASN1ObjectIdentifier(&issuerPolicy) ||
			!mapping.ReadASN1ObjectIdentifier(&subjectPolicy) ||
			!mapping.Empty() {
			return errors.New("malformed PolicyMapping")
		}
		return nil
	})
}

func decodeNonNegativeInteger(v cryptobyte.String) error {
	n := new(big.Int)
	if !v.ReadASN1Integer(n) {
		return errors.New("expected INTEGER")
	}
	if !v.Empty() {
		return errExtensionTrailingData
	}
	if n.Sign() < 0 {
		return errors.New("negative INTEGER")
	}
	return nil
}

// decodeSCTList checks the TLS framing of a SignedCertificateTimestampList
// carried in an OCTET STRING.
func decodeSCTList(v cryptobyte.String) error {
	var octets, list cryptobyte.String
	if !v.ReadASN1(&octets, cryptobyte_asn1.OCTET_STRING) {
		return errors.New("expected OCTET STRING")
	}
	if !v.Empty() {
		return errExtensionTrailingData
	}
	if !octets.ReadUint16LengthPrefixed(&list) || !octets.Empty() {
		return errors.New("malformed SCT list length")
	}
	if list.Empty() {
		return errors.New("empty SCT list")
	}
	for !list.Empty() {
		var sct cryptobyte.String
		if !list.ReadUint16LengthPrefixed(&sct) || sct.Empty() {
			return errors.New("malformed SCT entry")
		}
	}
	return nil
}

func decodeSubjectDirectoryAttrs(v cryptobyte.String) error {
	return decodeSequenceOf(v, "Attribute", func(s *cryptobyte.String) error {
		var attr, values cryptobyte.String
		var typ asn1.ObjectIdentifier
		if !s.ReadASN1(&attr, cryptobyte_asn1.SEQUENCE) ||
			!attr.ReadASN1ObjectIdentifier(&typ) ||
			!attr.ReadASN1(&values, cryptobyte_asn1.SET) ||
			!attr.Empty() {
			return errors.New("malformed Attribute")
		}
		if values.Empty() {
			return fmt.Errorf("attribute %s has no values", typ)
		}
		return nil
	})
}

// readImplicitBoolean consumes an optional [n] IMPLICIT BOOLEAN.
func readImplicitBoolean(s *cryptobyte.String, n uint8) error {
	var b cryptobyte.String
	var present bool
	if !s.ReadOptionalASN1(&b, &present, contextTag(n)) {
		return errors.New("malformed IssuingDistributionPoint")
	}
	if present && (len(b) != 1 || (b[0] != 0x00 && b[0] != 0xff)) {
		return fmt.Errorf("malformed BOOLEAN [%d]", n)
	}
	return nil
}

func decodeIssuingDistPoint(v cryptobyte.String) error {
	seq, err := wholeSequence(v)
	if err != nil {
		return err
	}
	var name, reasons cryptobyte.String
	var hasName, hasReasons bool
	if !seq.ReadOptionalASN1(&name, &hasName, contextTag(0).Constructed()) {
		return errors.New("malformed distributionPoint")
	}
	if hasName {
		if err := decodeDistributionPointName(name); err != nil {
			return err
		}
	}
	for _, n := range []uint8{1, 2} {
		if err := readImplicitBoolean(&seq, n); err != nil {
			return err
		}
	}
	if !seq.ReadOptionalASN1(&reasons, &hasReasons, contextTag(3)) {
		return errors.New("malformed onlySomeReasons")
	}
	if hasReasons {
		if err := checkReasonFlags(reasons); err != nil {
			return err
		}
	}
	for _, n := range []uint8{4, 5} {
		if err := readImplicitBoolean(&seq, n); err != nil {
			return err
		}
	}
	if !seq.Empty() {
		return errUnexpectedField
	}
	return nil
}

func decodeReasonCode(v cryptobyte.String) error {
	var code int
	if !v.ReadASN1Enum(&code) {
		return errors.New("expected ENUMERATED")
	}
	if !v.Empty() {
		return errExtensionTrailingData
	}
	if code < 0 || code > 10 {
		return fmt.Errorf("unknown reason code %d", code)
	}
	return nil
}

func decodeInvalidityDate(v cryptobyte.String) error {
	var t time.Time
	if !v.ReadASN1GeneralizedTime(&t) {
		return errors.New("expected GeneralizedTime")
	}
	if !v.Empty() {
		return errExtensionTrailingData
	}
	return nil
}
