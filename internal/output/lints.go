package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"

	"x509lint/internal/rules"
	"x509lint/internal/subject"
)

type lintEntryJSON struct {
	Kind        subject.Kind `json:"kind"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Citation    string       `json:"citation,omitempty"`
}

func kindHeading(k subject.Kind) string {
	if k == subject.KindRevocationList {
		return "CRL Lints:"
	}
	return "Certificate Lints:"
}

// WriteLints renders a lint catalog listing. format is text, table or json;
// quiet prints only names and ignores format.
func WriteLints(w io.Writer, entries []rules.Entry, format string, quiet bool) error {
	if quiet {
		for _, e := range entries {
			if _, err := fmt.Fprintln(w, e.Definition.Name()); err != nil {
				return err
			}
		}
		return nil
	}

	switch format {
	case "", "text":
		return writeLintsText(w, entries)
	case "table":
		writeLintsTable(w, entries)
		return nil
	case "json":
		out := make([]lintEntryJSON, 0, len(entries))
		for _, e := range entries {
			citation, _ := e.Definition.Citation()
			out = append(out, lintEntryJSON{
				Kind:        e.Kind,
				Name:        e.Definition.Name(),
				Description: e.Definition.Description(),
				Citation:    citation,
			})
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	default:
		return fmt.Errorf("unsupported lints format: %s (must be one of: text, table, json)", format)
	}
}

func writeLintsText(w io.Writer, entries []rules.Entry) error {
	bold := color.New(color.Bold)
	var current subject.Kind
	for i, e := range entries {
		if i == 0 || e.Kind != current {
			if i > 0 {
				fmt.Fprintln(w)
			}
			if _, err := bold.Fprintln(w, kindHeading(e.Kind)); err != nil {
				return err
			}
			current = e.Kind
		}
		fmt.Fprintf(w, "  %s\n", e.Definition.Name())
		fmt.Fprintf(w, "      %s\n", e.Definition.Description())
		if citation, ok := e.Definition.Citation(); ok {
			fmt.Fprintf(w, "      Citation: %s\n", citation)
		}
	}
	return nil
}

// WriteLint prints the details of a single lint.
func WriteLint(w io.Writer, e rules.Entry) {
	bold := color.New(color.Bold)
	fmt.Fprintln(w, "----------------------------------------")
	bold.Fprintf(w, "LINT: %s\n", e.Definition.Name())
	fmt.Fprintln(w, "----------------------------------------")
	fmt.Fprintf(w, "Applies to: %s\n", e.Kind)
	fmt.Fprintln(w, e.Definition.Description())
	if citation, ok := e.Definition.Citation(); ok {
		fmt.Fprintf(w, "Citation:   %s\n", citation)
	}
}

func writeLintsTable(w io.Writer, entries []rules.Entry) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Kind", "Name", "Description", "Citation"})
	for _, e := range entries {
		citation, _ := e.Definition.Citation()
		t.AppendRow(table.Row{e.Kind, e.Definition.Name(), e.Definition.Description(), citation})
	}
	t.Render()
	fmt.Fprintf(w, "(%d lints)\n", len(entries))
}
