package lint

import "fmt"

// Result is the outcome of evaluating one lint against one subject.
//
// Details is free text (a field name, an OID, an offending string). An empty
// Details means the lint has nothing to add beyond its Status. Pass results
// never carry details.
type Result struct {
	Status  Status `json:"status"`
	Details string `json:"details,omitempty"`
}

func NewResult(status Status) Result {
	return Result{Status: status}
}

func NewResultWithDetails(status Status, details string) Result {
	return Result{Status: status, Details: details}
}

// Passed returns the Pass result.
func Passed() Result {
	return Result{Status: Pass}
}

// Detailf is NewResultWithDetails with fmt.Sprintf formatting.
func Detailf(status Status, format string, args ...any) Result {
	return NewResultWithDetails(status, fmt.Sprintf(format, args...))
}
