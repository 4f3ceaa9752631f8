package subject

import (
	"encoding/asn1"
	"encoding/hex"
	"errors"
	"strings"
	"unicode/utf16"

	"golang.org/x/crypto/cryptobyte"
	cryptobyte_asn1 "golang.org/x/crypto/cryptobyte/asn1"
)

// Universal string tags that cryptobyte/asn1 does not name.
const (
	tagNumericString   = cryptobyte_asn1.Tag(18)
	tagUniversalString = cryptobyte_asn1.Tag(28)
	tagBMPString       = cryptobyte_asn1.Tag(30)
)

var (
	OIDCommonName             = asn1.ObjectIdentifier{2, 5, 4, 3}
	OIDSerialNumber           = asn1.ObjectIdentifier{2, 5, 4, 5}
	OIDCountryName            = asn1.ObjectIdentifier{2, 5, 4, 6}
	OIDLocalityName           = asn1.ObjectIdentifier{2, 5, 4, 7}
	OIDStateOrProvinceName    = asn1.ObjectIdentifier{2, 5, 4, 8}
	OIDStreetAddress          = asn1.ObjectIdentifier{2, 5, 4, 9}
	OIDOrganizationName       = asn1.ObjectIdentifier{2, 5, 4, 10}
	OIDOrganizationalUnitName = asn1.ObjectIdentifier{2, 5, 4, 11}
	OIDEmailAddress           = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 9, 1}
	OIDDomainComponent        = asn1.ObjectIdentifier{0, 9, 2342, 19200300, 100, 1, 25}
)

var attributeShortNames = []struct {
	oid  asn1.ObjectIdentifier
	name string
}{
	{OIDCommonName, "CN"},
	{OIDSerialNumber, "serialNumber"},
	{OIDCountryName, "C"},
	{OIDLocalityName, "L"},
	{OIDStateOrProvinceName, "ST"},
	{OIDStreetAddress, "street"},
	{OIDOrganizationName, "O"},
	{OIDOrganizationalUnitName, "OU"},
	{OIDEmailAddress, "emailAddress"},
	{OIDDomainComponent, "DC"},
}

// Attribute is one AttributeTypeAndValue with the tag its value was encoded
// with.
type Attribute struct {
	Type  asn1.ObjectIdentifier
	Tag   cryptobyte_asn1.Tag
	Value []byte
}

// String renders the attribute as TYPE=value.
func (a Attribute) String() string {
	key := a.Type.String()
	for _, n := range attributeShortNames {
		if n.oid.Equal(a.Type) {
			key = n.name
			break
		}
	}
	return key + "=" + a.text()
}

func (a Attribute) text() string {
	switch a.Tag {
	case cryptobyte_asn1.UTF8String, cryptobyte_asn1.PrintableString, cryptobyte_asn1.IA5String,
		cryptobyte_asn1.T61String, tagNumericString:
		return string(a.Value)
	case tagBMPString:
		if len(a.Value)%2 == 0 {
			units := make([]uint16, 0, len(a.Value)/2)
			for i := 0; i < len(a.Value); i += 2 {
				units = append(units, uint16(a.Value[i])<<8|uint16(a.Value[i+1]))
			}
			return string(utf16.Decode(units))
		}
	}
	return "#" + hex.EncodeToString(a.Value)
}

// RDN is one relative distinguished name (a SET of attributes).
type RDN []Attribute

// Name is a distinguished name in encoded order.
type Name struct {
	RDNs []RDN
	Raw  []byte
}

// Len is the number of RDN components. An empty name has none.
func (n Name) Len() int {
	return len(n.RDNs)
}

// Attributes returns every attribute of type oid in encoded order.
func (n Name) Attributes(oid asn1.ObjectIdentifier) []Attribute {
	var out []Attribute
	for _, rdn := range n.RDNs {
		for _, attr := range rdn {
			if attr.Type.Equal(oid) {
				out = append(out, attr)
			}
		}
	}
	return out
}

func (n Name) Countries() []Attribute {
	return n.Attributes(OIDCountryName)
}

func (n Name) String() string {
	parts := make([]string, 0, len(n.RDNs))
	for _, rdn := range n.RDNs {
		attrs := make([]string, 0, len(rdn))
		for _, attr := range rdn {
			attrs = append(attrs, attr.String())
		}
		parts = append(parts, strings.Join(attrs, "+"))
	}
	return strings.Join(parts, ", ")
}

var errMalformedName = errors.New("malformed distinguished name")

// readName consumes a Name from s.
func readName(s *cryptobyte.String) (Name, error) {
	var raw cryptobyte.String
	if !s.ReadASN1Element(&raw, cryptobyte_asn1.SEQUENCE) {
		return Name{}, errMalformedName
	}
	name := Name{Raw: append([]byte(nil), raw...)}

	var rdns cryptobyte.String
	if !raw.ReadASN1(&rdns, cryptobyte_asn1.SEQUENCE) {
		return Name{}, errMalformedName
	}
	for !rdns.Empty() {
		var set cryptobyte.String
		if !rdns.ReadASN1(&set, cryptobyte_asn1.SET) {
			return Name{}, errMalformedName
		}
		var rdn RDN
		for !set.Empty() {
			var atv cryptobyte.String
			var attr Attribute
			var value cryptobyte.String
			if !set.ReadASN1(&atv, cryptobyte_asn1.SEQUENCE) ||
				!atv.ReadASN1ObjectIdentifier(&attr.Type) ||
				!atv.ReadAnyASN1(&value, &attr.Tag) ||
				!atv.Empty() {
				return Name{}, errMalformedName
			}
			attr.Value = append([]byte{}, value...)
			rdn = append(rdn, attr)
		}
		name.RDNs = append(name.RDNs, rdn)
	}
	return name, nil
}
