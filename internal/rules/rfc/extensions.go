package rfc

import (
	"fmt"

	"x509lint/internal/lint"
	"x509lint/internal/subject"
)

var (
	certExtensionsNotV3       = lint.NewDefinition("rfc:cert_extensions_notv3", "Version is not V3 but extensions are present").WithCitation("RFC5280: 4.1.2.9")
	certExtensionsUnsupported = lint.NewDefinition("rfc:cert_extensions_unsupported", "Unsupported extensions")
	certExtensionsParseError  = lint.NewDefinition("rfc:cert_extensions_parse_error", "Parse error in extension")
	certSANInvalidCharset     = lint.NewDefinition("rfc:cert_ext_san_invalid_charset", "Invalid charset in 'SubjectAltName' entry").WithCitation("RFC5280: 4.2.1.6")
)

var extensionLints = []certLint{
	{Definition: certExtensionsNotV3, Func: lint.Predicate(lint.Warn, extensionsBeforeV3)},
	{Definition: certExtensionsUnsupported, Func: func(c *subject.Certificate) lint.Result {
		return firstUnsupported(c.Extensions)
	}},
	{Definition: certExtensionsParseError, Func: func(c *subject.Certificate) lint.Result {
		return firstParseError(c.Extensions)
	}},
	{Definition: certSANInvalidCharset, Func: sanInvalidCharset},
}

func extensionsBeforeV3(c *subject.Certificate) bool {
	return len(c.Extensions) > 0 && c.Version != subject.V3
}

// firstUnsupported reports the OID of the first unrecognized extension.
func firstUnsupported(exts []subject.Extension) lint.Result {
	for _, ext := range exts {
		if u, ok := ext.Parsed.(subject.UnsupportedExtension); ok {
			return lint.NewResultWithDetails(lint.Warn, u.OID.String())
		}
	}
	return lint.Passed()
}

func firstParseError(exts []subject.Extension) lint.Result {
	for _, ext := range exts {
		if p, ok := ext.Parsed.(subject.ParseErrorExtension); ok {
			return lint.Detailf(lint.Error, "Parse error in extension %s: %v", ext.OID, p.Err)
		}
	}
	return lint.Passed()
}

// dNSName and rfc822Name are IA5String: ASCII only.
func sanInvalidCharset(c *subject.Certificate) lint.Result {
	for _, ext := range c.Extensions {
		san, ok := ext.Parsed.(subject.SubjectAltName)
		if !ok {
			continue
		}
		for _, name := range san.Names {
			if name.Kind != subject.DNSName && name.Kind != subject.RFC822Name {
				continue
			}
			if !isASCII(name.Value) {
				return lint.NewResultWithDetails(lint.Warn, fmt.Sprintf("Invalid charset in SAN entry '%s'", name.Value))
			}
		}
	}
	return lint.Passed()
}

func isASCII(b []byte) bool {
	for _, c := range b {
		if c > 0x7f {
			return false
		}
	}
	return true
}
