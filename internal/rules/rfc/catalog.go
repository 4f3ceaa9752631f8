// Package rfc holds the built-in RFC 5280 lint catalogs.
package rfc

import (
	"x509lint/internal/lint"
	"x509lint/internal/subject"
)

// CertificateLints returns a fresh registry holding every certificate lint
// of this package: the rfc5280 table, then names, then extensions.
func CertificateLints() *lint.Registry[*subject.Certificate] {
	reg := lint.New(rfc5280Lints...)
	reg.Merge(lint.New(nameLints...))
	reg.Merge(lint.New(extensionLints...))
	return reg
}

// RevocationListLints returns a fresh registry holding every CRL lint.
func RevocationListLints() *lint.Registry[*subject.RevocationList] {
	return lint.New(crlLints...)
}
