package lint

import (
	"encoding/json"
	"testing"
)

func TestStatusOrdering(t *testing.T) {
	if !(Pass < Warn && Warn < Error) {
		t.Fatal("expected Pass < Warn < Error")
	}
}

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in      string
		want    Status
		wantErr bool
	}{
		{in: "pass", want: Pass},
		{in: " WARN ", want: Warn},
		{in: "warning", want: Warn},
		{in: "Error", want: Error},
		{in: "fatal", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseStatus(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseStatus(%q) error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseStatus(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestResultJSON(t *testing.T) {
	data, err := json.Marshal(NewResultWithDetails(Warn, "notAfter"))
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	expected := `{"status":"warn","details":"notAfter"}`
	if string(data) != expected {
		t.Errorf("Expected %s, got %s", expected, string(data))
	}

	data, err = json.Marshal(Passed())
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(data) != `{"status":"pass"}` {
		t.Errorf("unexpected pass encoding %s", string(data))
	}
}

func TestDefinition(t *testing.T) {
	base := NewDefinition("rfc:serial_msb", "Serial Number is negative")
	cited := base.WithCitation("RFC5280: 4.1.2.2")

	if _, ok := base.Citation(); ok {
		t.Error("WithCitation modified the original definition")
	}
	c, ok := cited.Citation()
	if !ok || c != "RFC5280: 4.1.2.2" {
		t.Errorf("unexpected citation %q (%v)", c, ok)
	}
	if cited.Name() != base.Name() || cited.Description() != base.Description() {
		t.Error("WithCitation lost name or description")
	}

	data, err := json.Marshal(cited)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	expected := `{"name":"rfc:serial_msb","description":"Serial Number is negative","citation":"RFC5280: 4.1.2.2"}`
	if string(data) != expected {
		t.Errorf("Expected %s, got %s", expected, string(data))
	}
}
