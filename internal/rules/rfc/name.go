package rfc

import (
	"x509lint/internal/lint"
	"x509lint/internal/subject"

	cryptobyte_asn1 "golang.org/x/crypto/cryptobyte/asn1"
)

var (
	subjectCountryNotPrintable = lint.NewDefinition("rfc:subject_countryname_not_printablestring", "Subject DN: CountryName MUST be encoded as PrintableString").WithCitation("RFC5280: Appendix A")
	issuerEmpty                = lint.NewDefinition("rfc:issuer_empty", "The issuer field MUST contain a non-empty distinguished name (DN)").WithCitation("RFC5280: 4.1.2.4")
)

var nameLints = []certLint{
	{Definition: subjectCountryNotPrintable, Func: lint.Predicate(lint.Error, countryNotPrintable)},
	{Definition: issuerEmpty, Func: lint.Predicate(lint.Error, emptyIssuer)},
}

func countryNotPrintable(c *subject.Certificate) bool {
	for _, attr := range c.Subject.Countries() {
		if attr.Tag != cryptobyte_asn1.PrintableString {
			return true
		}
	}
	return false
}

func emptyIssuer(c *subject.Certificate) bool {
	return c.Issuer.Len() == 0
}
