package rfc

import (
	"x509lint/internal/lint"
	"x509lint/internal/subject"
)

type certLint = lint.Lint[*subject.Certificate]

var (
	checkVersion             = lint.NewDefinition("rfc:check_version", "Invalid X.509 version").WithCitation("RFC5280: 4.1.2.1")
	serialEmpty              = lint.NewDefinition("rfc:serial_empty", "Serial Number is empty").WithCitation("RFC5280: 4.1.2.2")
	serialMSB                = lint.NewDefinition("rfc:serial_msb", "Serial Number is negative").WithCitation("RFC5280: 4.1.2.2")
	serialLeadingZeroes      = lint.NewDefinition("rfc:serial_leading_zeroes", "Serial Number has leading zeroes")
	yearPre2049UTC           = lint.NewDefinition("rfc:year_pre2049_utc", "certificate validity dates through 2049 MUST be encoded as UTCTime").WithCitation("RFC5280: 4.1.2.5")
	yearPost2049UTC          = lint.NewDefinition("rfc:year_post2049_utc", "certificate validity dates in 2050 or later MUST be encoded as GeneralizedTime").WithCitation("RFC5280: 4.1.2.5")
	issuerUniqueIDv1         = lint.NewDefinition("rfc:issuer_uniqueid_v1", "issuerUniqueID present but version 1").WithCitation("RFC5280: 4.1.2.8")
	subjectUniqueIDv1        = lint.NewDefinition("rfc:subject_uniqueid_v1", "subjectUniqueID present but version 1").WithCitation("RFC5280: 4.1.2.8")
	signatureAlgorithmsMatch = lint.NewDefinition("rfc:signature_algorithms_must_match", "The signatureAlgorithm field MUST contain the same algorithm identifier as the signature field in the sequence tbsCertificate").WithCitation("RFC5280: 4.1.1.2")
)

// The pre/post 2049 definitions are shared by the notBefore and notAfter
// checks; each field reports on its own.
var rfc5280Lints = []certLint{
	{Definition: checkVersion, Func: lint.Predicate(lint.Error, invalidVersion)},
	{Definition: serialEmpty, Func: lint.Predicate(lint.Error, emptySerial)},
	{Definition: serialMSB, Func: lint.Predicate(lint.Warn, negativeSerial)},
	{Definition: serialLeadingZeroes, Func: lint.Predicate(lint.Warn, serialHasLeadingZeroes)},
	{Definition: yearPre2049UTC, Func: notBeforePre2049},
	{Definition: yearPre2049UTC, Func: notAfterPre2049},
	{Definition: yearPost2049UTC, Func: notBeforePost2049},
	{Definition: yearPost2049UTC, Func: notAfterPost2049},
	{Definition: issuerUniqueIDv1, Func: lint.Predicate(lint.Warn, issuerUniqueIDOnV1)},
	{Definition: subjectUniqueIDv1, Func: lint.Predicate(lint.Warn, subjectUniqueIDOnV1)},
	{Definition: signatureAlgorithmsMatch, Func: signatureAlgorithmsDiffer},
}

// Ordinals 0..2 are v1..v3. Anything above does not exist.
func invalidVersion(c *subject.Certificate) bool {
	return c.Version >= 3
}

func emptySerial(c *subject.Certificate) bool {
	return len(c.RawSerial) == 0
}

func negativeSerial(c *subject.Certificate) bool {
	return serialIsNegative(c.RawSerial)
}

func serialHasLeadingZeroes(c *subject.Certificate) bool {
	return serialHasRedundantZero(c.RawSerial)
}

func serialIsNegative(serial []byte) bool {
	return len(serial) > 0 && serial[0]&0x80 != 0
}

// A leading zero byte is only required when the next byte has its high bit set.
func serialHasRedundantZero(serial []byte) bool {
	return len(serial) > 1 && serial[0] == 0x00 && serial[1]&0x80 == 0
}

// utcThrough2049 reports field when t falls in or before 2049 but was not
// encoded as UTCTime.
func utcThrough2049(t subject.Time, field string) lint.Result {
	if t.Year() <= 2049 && !t.IsUTCTime() {
		return lint.NewResultWithDetails(lint.Warn, field)
	}
	return lint.Passed()
}

// generalizedFrom2050 reports field when t falls in or after 2050 but was
// encoded as UTCTime.
func generalizedFrom2050(t subject.Time, field string) lint.Result {
	if t.Year() > 2049 && t.IsUTCTime() {
		return lint.NewResultWithDetails(lint.Warn, field)
	}
	return lint.Passed()
}

func notBeforePre2049(c *subject.Certificate) lint.Result {
	return utcThrough2049(c.Validity.NotBefore, "notBefore")
}

func notAfterPre2049(c *subject.Certificate) lint.Result {
	return utcThrough2049(c.Validity.NotAfter, "notAfter")
}

func notBeforePost2049(c *subject.Certificate) lint.Result {
	return generalizedFrom2050(c.Validity.NotBefore, "notBefore")
}

func notAfterPost2049(c *subject.Certificate) lint.Result {
	return generalizedFrom2050(c.Validity.NotAfter, "notAfter")
}

func issuerUniqueIDOnV1(c *subject.Certificate) bool {
	return c.Version == subject.V1 && c.IssuerUniqueID != nil
}

func subjectUniqueIDOnV1(c *subject.Certificate) bool {
	return c.Version == subject.V1 && c.SubjectUniqueID != nil
}

func signatureAlgorithmsDiffer(c *subject.Certificate) lint.Result {
	return algorithmsDiffer(c.SignatureAlgorithm, c.Signature)
}

// Only the OIDs are compared. Parameter encodings (NULL vs absent) vary
// between issuers for the same algorithm.
func algorithmsDiffer(outer, inner subject.AlgorithmIdentifier) lint.Result {
	if !outer.OID.Equal(inner.OID) {
		return lint.NewResultWithDetails(lint.Error, "OID")
	}
	return lint.Passed()
}
