// Package subject decodes DER certificates and CRLs into an object model that
// keeps the encoding details lints care about: the declared version, raw
// serial bytes, the ASN.1 tag of every time and name attribute, and the
// inner and outer signature algorithm identifiers.
package subject

import (
	"encoding/asn1"
	"errors"
	"fmt"
	"time"

	cryptobyte_asn1 "golang.org/x/crypto/cryptobyte/asn1"
)

// ErrTrailingData is returned when bytes follow the outer SEQUENCE.
var ErrTrailingData = errors.New("trailing data after DER structure")

// Version is the zero-indexed version ordinal as declared in the encoding.
type Version int

const (
	V1 Version = 0
	V2 Version = 1
	V3 Version = 2
)

func (v Version) String() string {
	return fmt.Sprintf("v%d", int(v)+1)
}

// AlgorithmIdentifier is an OID with its raw, possibly empty, parameters.
type AlgorithmIdentifier struct {
	OID        asn1.ObjectIdentifier
	Parameters []byte
}

// Time is a validity or update time together with the tag it was encoded with.
type Time struct {
	Tag  cryptobyte_asn1.Tag
	Time time.Time
}

func (t Time) Year() int {
	return t.Time.Year()
}

// IsUTCTime reports whether the value used the two-digit-year encoding.
func (t Time) IsUTCTime() bool {
	return t.Tag == cryptobyte_asn1.UTCTime
}

func (t Time) String() string {
	kind := "GeneralizedTime"
	if t.IsUTCTime() {
		kind = "UTCTime"
	}
	return fmt.Sprintf("%s (%s)", t.Time.UTC().Format(time.RFC3339), kind)
}

type Validity struct {
	NotBefore Time
	NotAfter  Time
}

// Kind names the two subject shapes.
type Kind string

const (
	KindCertificate    Kind = "certificate"
	KindRevocationList Kind = "crl"
)
