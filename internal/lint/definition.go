package lint

import "encoding/json"

// Definition is the identity of a lint: a name that should be unique within a
// registry, a human description and an optional citation such as
// "RFC5280: 4.1.2.2".
//
// Definitions are immutable once built. WithCitation returns a new value.
type Definition struct {
	name        string
	description string
	citation    string
}

func NewDefinition(name, description string) *Definition {
	return &Definition{name: name, description: description}
}

// WithCitation returns a copy of d carrying the given citation.
func (d *Definition) WithCitation(citation string) *Definition {
	c := *d
	c.citation = citation
	return &c
}

func (d *Definition) Name() string {
	return d.name
}

func (d *Definition) Description() string {
	return d.description
}

// Citation returns the normative reference and whether one was set.
func (d *Definition) Citation() (string, bool) {
	return d.citation, d.citation != ""
}

type definitionJSON struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Citation    string `json:"citation,omitempty"`
}

func (d *Definition) MarshalJSON() ([]byte, error) {
	return json.Marshal(definitionJSON{
		Name:        d.name,
		Description: d.description,
		Citation:    d.citation,
	})
}
