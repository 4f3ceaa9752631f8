package rfc

import (
	"x509lint/internal/lint"
	"x509lint/internal/subject"
)

type crlLint = lint.Lint[*subject.RevocationList]

var (
	crlCheckVersion               = lint.NewDefinition("rfc:crl_check_version", "Invalid CRL version").WithCitation("RFC5280: 5.1.2.1")
	crlIssuerEmpty                = lint.NewDefinition("rfc:crl_issuer_empty", "The issuer field MUST contain a non-empty distinguished name (DN)").WithCitation("RFC5280: 5.1.2.3")
	crlSignatureAlgorithmsMatch   = lint.NewDefinition("rfc:crl_signature_algorithms_must_match", "The signatureAlgorithm field MUST contain the same algorithm identifier as the signature field in the sequence tbsCertList").WithCitation("RFC5280: 5.1.1.2")
	crlYearPre2049UTC             = lint.NewDefinition("rfc:crl_year_pre2049_utc", "CRL update times through 2049 MUST be encoded as UTCTime").WithCitation("RFC5280: 5.1.2.4")
	crlYearPost2049UTC            = lint.NewDefinition("rfc:crl_year_post2049_utc", "CRL update times in 2050 or later MUST be encoded as GeneralizedTime").WithCitation("RFC5280: 5.1.2.4")
	crlNextUpdateBeforeThisUpdate = lint.NewDefinition("rfc:crl_next_update_before_this_update", "nextUpdate MUST be later than thisUpdate").WithCitation("RFC5280: 5.1.2.5")
	crlExtensionsNotV2            = lint.NewDefinition("rfc:crl_extensions_notv2", "Version is not V2 but extensions are present").WithCitation("RFC5280: 5.1.2.1")
	crlEntryExtensionsNotV2       = lint.NewDefinition("rfc:crl_entry_extensions_notv2", "Version is not V2 but CRL entry extensions are present").WithCitation("RFC5280: 5.1.2.6")
	crlExtensionsUnsupported      = lint.NewDefinition("rfc:crl_extensions_unsupported", "Unsupported CRL extensions")
	crlExtensionsParseError       = lint.NewDefinition("rfc:crl_extensions_parse_error", "Parse error in CRL extension")
)

var crlLints = []crlLint{
	{Definition: crlCheckVersion, Func: lint.Predicate(lint.Error, crlInvalidVersion)},
	{Definition: crlIssuerEmpty, Func: lint.Predicate(lint.Error, crlEmptyIssuer)},
	{Definition: crlSignatureAlgorithmsMatch, Func: func(crl *subject.RevocationList) lint.Result {
		return algorithmsDiffer(crl.SignatureAlgorithm, crl.Signature)
	}},
	{Definition: crlYearPre2049UTC, Func: func(crl *subject.RevocationList) lint.Result {
		return utcThrough2049(crl.ThisUpdate, "thisUpdate")
	}},
	{Definition: crlYearPre2049UTC, Func: func(crl *subject.RevocationList) lint.Result {
		if crl.NextUpdate == nil {
			return lint.Passed()
		}
		return utcThrough2049(*crl.NextUpdate, "nextUpdate")
	}},
	{Definition: crlYearPost2049UTC, Func: func(crl *subject.RevocationList) lint.Result {
		return generalizedFrom2050(crl.ThisUpdate, "thisUpdate")
	}},
	{Definition: crlYearPost2049UTC, Func: func(crl *subject.RevocationList) lint.Result {
		if crl.NextUpdate == nil {
			return lint.Passed()
		}
		return generalizedFrom2050(*crl.NextUpdate, "nextUpdate")
	}},
	{Definition: crlNextUpdateBeforeThisUpdate, Func: lint.Predicate(lint.Error, nextUpdateNotAfterThisUpdate)},
	{Definition: crlExtensionsNotV2, Func: lint.Predicate(lint.Warn, crlExtensionsWithoutV2)},
	{Definition: crlEntryExtensionsNotV2, Func: crlEntryExtensionsWithoutV2},
	{Definition: crlExtensionsUnsupported, Func: func(crl *subject.RevocationList) lint.Result {
		return firstUnsupported(crl.Extensions)
	}},
	{Definition: crlExtensionsParseError, Func: func(crl *subject.RevocationList) lint.Result {
		return firstParseError(crl.Extensions)
	}},
}

// v1 and v2 are the only CRL versions.
func crlInvalidVersion(crl *subject.RevocationList) bool {
	return crl.HasVersion && crl.Version >= 2
}

func crlEmptyIssuer(crl *subject.RevocationList) bool {
	return crl.Issuer.Len() == 0
}

func nextUpdateNotAfterThisUpdate(crl *subject.RevocationList) bool {
	return crl.NextUpdate != nil && !crl.NextUpdate.Time.After(crl.ThisUpdate.Time)
}

func isV2(crl *subject.RevocationList) bool {
	return crl.HasVersion && crl.Version == subject.V2
}

func crlExtensionsWithoutV2(crl *subject.RevocationList) bool {
	return len(crl.Extensions) > 0 && !isV2(crl)
}

// crlEntryExtensionsWithoutV2 reports the serial of the first revoked entry
// carrying extensions on a CRL that is not v2.
func crlEntryExtensionsWithoutV2(crl *subject.RevocationList) lint.Result {
	if isV2(crl) {
		return lint.Passed()
	}
	for _, entry := range crl.Revoked {
		if len(entry.Extensions) > 0 {
			return lint.NewResultWithDetails(lint.Warn, entry.SerialHex())
		}
	}
	return lint.Passed()
}
