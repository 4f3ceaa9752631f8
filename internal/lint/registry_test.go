package lint

import (
	"reflect"
	"strings"
	"sync/atomic"
	"testing"
)

// fakeSubject stands in for a parsed certificate.
type fakeSubject struct {
	serial []byte
	flags  map[string]bool
}

func flagged(name string) func(fakeSubject) bool {
	return func(s fakeSubject) bool { return s.flags[name] }
}

func names(findings []Finding) []string {
	var out []string
	for _, f := range findings {
		out = append(out, f.Definition.Name())
	}
	return out
}

func TestRegistry_RunLints_PassIsSilent(t *testing.T) {
	reg := New(
		Lint[fakeSubject]{NewDefinition("rfc:a", "a"), Predicate(Error, flagged("a"))},
		Lint[fakeSubject]{NewDefinition("rfc:b", "b"), Predicate(Warn, flagged("b"))},
	)

	findings := reg.RunLints(fakeSubject{flags: map[string]bool{"b": true}})
	if got := names(findings); !reflect.DeepEqual(got, []string{"rfc:b"}) {
		t.Fatalf("expected only rfc:b, got %v", got)
	}
	if findings[0].Result.Status != Warn {
		t.Errorf("expected warn, got %v", findings[0].Result.Status)
	}

	if findings := reg.RunLints(fakeSubject{}); len(findings) != 0 {
		t.Errorf("expected no findings, got %v", names(findings))
	}
}

func TestRegistry_RunLints_PreservesOrder(t *testing.T) {
	reg := New[fakeSubject]()
	reg.Insert(NewDefinition("l1", "first"), Predicate(Warn, flagged("l1")))
	reg.Insert(NewDefinition("l2", "second"), Predicate(Error, flagged("l2")))
	reg.Insert(NewDefinition("l3", "third"), Predicate(Error, flagged("l3")))

	findings := reg.RunLints(fakeSubject{flags: map[string]bool{"l3": true, "l1": true}})
	if got := names(findings); !reflect.DeepEqual(got, []string{"l1", "l3"}) {
		t.Fatalf("expected [l1 l3], got %v", got)
	}
}

func TestRegistry_Merge(t *testing.T) {
	always := func(fakeSubject) bool { return true }
	a := New[fakeSubject]()
	a.Insert(NewDefinition("a1", ""), Predicate(Warn, always))
	a.Insert(NewDefinition("a2", ""), Predicate(Warn, always))
	b := New[fakeSubject]()
	b.Insert(NewDefinition("b1", ""), Predicate(Warn, always))
	b.Insert(NewDefinition("b2", ""), Predicate(Warn, always))

	a.Merge(b)

	if b.Len() != 0 {
		t.Errorf("expected merged registry to be emptied, has %d lints", b.Len())
	}
	want := []string{"a1", "a2", "b1", "b2"}
	if got := names(a.RunLints(fakeSubject{})); !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}

	var defs []string
	for def := range a.Lints() {
		defs = append(defs, def.Name())
	}
	if !reflect.DeepEqual(defs, want) {
		t.Errorf("Lints() order: expected %v, got %v", want, defs)
	}

	a.Merge(nil)
	if a.Len() != 4 {
		t.Errorf("merging nil changed registry length to %d", a.Len())
	}
}

func TestRegistry_Filter(t *testing.T) {
	var calls atomic.Int32
	counting := func(fakeSubject) Result {
		calls.Add(1)
		return NewResult(Error)
	}

	reg := New[fakeSubject]()
	reg.Insert(NewDefinition("rfc:serial_empty", ""), Predicate(Error, func(fakeSubject) bool { return true }))
	reg.Insert(NewDefinition("rfc:check_version", ""), counting)
	reg.Insert(NewDefinition("rfc:serial_msb", ""), Predicate(Warn, func(fakeSubject) bool { return true }))
	reg.Insert(NewDefinition("zlint:serial", ""), counting)

	reg.Filter("rfc:serial")

	if reg.Len() != 2 {
		t.Fatalf("expected 2 lints after filter, got %d", reg.Len())
	}
	findings := reg.RunLints(fakeSubject{})
	for _, f := range findings {
		if !strings.HasPrefix(f.Definition.Name(), "rfc:serial") {
			t.Errorf("unexpected finding %s", f.Definition.Name())
		}
	}
	if len(findings) != 2 {
		t.Errorf("expected 2 findings, got %d", len(findings))
	}
	if calls.Load() != 0 {
		t.Errorf("filtered-out lints were invoked %d times", calls.Load())
	}
}

func TestRegistry_DuplicateNamesBothReport(t *testing.T) {
	def := NewDefinition("rfc:year_pre2049_utc", "dates")
	reg := New[fakeSubject]()
	reg.Insert(def, func(fakeSubject) Result { return NewResultWithDetails(Warn, "notBefore") })
	reg.Insert(def, func(fakeSubject) Result { return NewResultWithDetails(Warn, "notAfter") })

	findings := reg.RunLints(fakeSubject{})
	if len(findings) != 2 {
		t.Fatalf("expected 2 findings, got %d", len(findings))
	}
	if findings[0].Result.Details != "notBefore" || findings[1].Result.Details != "notAfter" {
		t.Errorf("unexpected details: %q, %q", findings[0].Result.Details, findings[1].Result.Details)
	}
	if findings[0].Definition != def {
		t.Error("finding does not reference the registered definition")
	}
}

func TestRegistry_Deterministic(t *testing.T) {
	reg := New[fakeSubject]()
	reg.Insert(NewDefinition("msb", ""), func(s fakeSubject) Result {
		if len(s.serial) > 0 && s.serial[0]&0x80 != 0 {
			return NewResultWithDetails(Warn, "negative")
		}
		return Passed()
	})
	reg.Insert(NewDefinition("empty", ""), Predicate(Error, func(s fakeSubject) bool { return len(s.serial) == 0 }))

	s := fakeSubject{serial: []byte{0x80, 0x01}}
	first := reg.RunLints(s)
	second := reg.RunLints(s)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("results differ between runs: %v vs %v", first, second)
	}
}

func TestRegistry_PanickingLintIsIsolated(t *testing.T) {
	reg := New[fakeSubject]()
	reg.Insert(NewDefinition("boom", ""), func(fakeSubject) Result { panic("index out of range") })
	reg.Insert(NewDefinition("after", ""), Predicate(Warn, func(fakeSubject) bool { return true }))

	findings := reg.RunLints(fakeSubject{})
	if got := names(findings); !reflect.DeepEqual(got, []string{"boom", "after"}) {
		t.Fatalf("expected [boom after], got %v", got)
	}
	if findings[0].Result.Status != Error {
		t.Errorf("expected error status for panicking lint, got %v", findings[0].Result.Status)
	}
	if !strings.Contains(findings[0].Result.Details, "index out of range") {
		t.Errorf("expected panic value in details, got %q", findings[0].Result.Details)
	}
}

func TestRegistry_RunLintsParallelMatchesSequential(t *testing.T) {
	reg := New[fakeSubject]()
	flags := map[string]bool{}
	for i := 0; i < 64; i++ {
		name := string(rune('a'+i%26)) + strings.Repeat("x", i/26)
		if i%3 == 0 {
			flags[name] = true
		}
		status := Warn
		if i%2 == 0 {
			status = Error
		}
		reg.Insert(NewDefinition(name, ""), Predicate(status, flagged(name)))
	}
	s := fakeSubject{flags: flags}

	want := reg.RunLints(s)
	for _, workers := range []int{0, 1, 4, 64} {
		got := reg.RunLintsParallel(s, workers)
		if !reflect.DeepEqual(got, want) {
			t.Errorf("workers=%d: parallel results differ from sequential", workers)
		}
	}
}

func TestMaxStatus(t *testing.T) {
	if got := MaxStatus(nil); got != Pass {
		t.Errorf("expected pass for no findings, got %v", got)
	}
	findings := []Finding{
		{Definition: NewDefinition("a", ""), Result: NewResult(Warn)},
		{Definition: NewDefinition("b", ""), Result: NewResult(Error)},
	}
	if got := MaxStatus(findings); got != Error {
		t.Errorf("expected error, got %v", got)
	}
}
