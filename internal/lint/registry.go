package lint

import (
	"fmt"
	"iter"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"
)

// Func evaluates one lint against a subject. It must be pure: no I/O, no
// shared mutable state, and the same subject always yields the same Result.
type Func[S any] func(subject S) Result

// Predicate wraps a boolean check into a Func that reports status when pred
// returns true and passes otherwise. It never attaches details.
func Predicate[S any](status Status, pred func(S) bool) Func[S] {
	return func(s S) Result {
		if pred(s) {
			return NewResult(status)
		}
		return Passed()
	}
}

// Lint pairs a Definition with the function implementing it.
type Lint[S any] struct {
	Definition *Definition
	Func       Func[S]
}

// Finding is a non-Pass Result together with the Definition that produced it.
// Definition points into the registry that ran the lint.
type Finding struct {
	Definition *Definition
	Result     Result
}

// Registry is an ordered collection of lints for one subject kind S.
//
// Registration order is evaluation order and result order. Names are not
// checked for uniqueness: two lints sharing a name both run and both report.
// A Registry must not be mutated while RunLints is in progress.
type Registry[S any] struct {
	lints []Lint[S]
}

// New builds a registry from lints, preserving their order.
func New[S any](lints ...Lint[S]) *Registry[S] {
	return &Registry[S]{lints: slices.Clone(lints)}
}

// Insert appends one lint.
func (r *Registry[S]) Insert(def *Definition, fn Func[S]) {
	r.lints = append(r.lints, Lint[S]{Definition: def, Func: fn})
}

// Merge appends every lint of other after r's own lints. other is emptied.
func (r *Registry[S]) Merge(other *Registry[S]) {
	if other == nil {
		return
	}
	r.lints = append(r.lints, other.lints...)
	other.lints = nil
}

// Filter keeps only the lints whose name starts with prefix.
func (r *Registry[S]) Filter(prefix string) {
	r.lints = slices.DeleteFunc(r.lints, func(l Lint[S]) bool {
		return !strings.HasPrefix(l.Definition.Name(), prefix)
	})
}

func (r *Registry[S]) Len() int {
	return len(r.lints)
}

// Lints iterates over the registered lints in registration order.
func (r *Registry[S]) Lints() iter.Seq2[*Definition, Func[S]] {
	return func(yield func(*Definition, Func[S]) bool) {
		for _, l := range r.lints {
			if !yield(l.Definition, l.Func) {
				return
			}
		}
	}
}

// Definitions returns the definitions in registration order. Shared
// definitions appear once per registration.
func (r *Registry[S]) Definitions() []*Definition {
	defs := make([]*Definition, 0, len(r.lints))
	for def := range r.Lints() {
		defs = append(defs, def)
	}
	return defs
}

// RunLints evaluates every lint against s in registration order and returns
// the findings of those that did not pass. A lint missing from the result
// passed; it was not skipped.
//
// A lint that panics is reported as an Error finding under its own
// definition and the remaining lints still run.
func (r *Registry[S]) RunLints(s S) []Finding {
	var findings []Finding
	for _, l := range r.lints {
		res := evaluate(l, s)
		if res.Status == Pass {
			continue
		}
		findings = append(findings, Finding{Definition: l.Definition, Result: res})
	}
	return findings
}

// RunLintsParallel is RunLints spread over at most workers goroutines. The
// returned findings are in registration order, identical to RunLints.
func (r *Registry[S]) RunLintsParallel(s S, workers int) []Finding {
	if workers <= 1 || len(r.lints) <= 1 {
		return r.RunLints(s)
	}

	results := make([]Result, len(r.lints))
	var g errgroup.Group
	g.SetLimit(workers)
	for i, l := range r.lints {
		g.Go(func() error {
			results[i] = evaluate(l, s)
			return nil
		})
	}
	_ = g.Wait()

	var findings []Finding
	for i, res := range results {
		if res.Status == Pass {
			continue
		}
		findings = append(findings, Finding{Definition: r.lints[i].Definition, Result: res})
	}
	return findings
}

func evaluate[S any](l Lint[S], s S) (res Result) {
	defer func() {
		if p := recover(); p != nil {
			res = NewResultWithDetails(Error, fmt.Sprintf("lint panicked: %v", p))
		}
	}()
	return l.Func(s)
}

// MaxStatus returns the highest status among findings, or Pass if there are none.
func MaxStatus(findings []Finding) Status {
	highest := Pass
	for _, f := range findings {
		if f.Result.Status > highest {
			highest = f.Result.Status
		}
	}
	return highest
}
