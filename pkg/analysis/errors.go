package analysis

import "fmt"

// NavigationError is fatal to an analysis run: the page never became
// ready.
type NavigationError struct {
	URL string
	Err error
}

func (e *NavigationError) Error() string {
	return fmt.Sprintf("navigation to %s failed: %v", e.URL, e.Err)
}

func (e *NavigationError) Unwrap() error {
	return e.Err
}

// AccessibilityAuditError means the audit engine itself reported an error
// or could not be loaded into the page.
type AccessibilityAuditError struct {
	Message string
}

func (e *AccessibilityAuditError) Error() string {
	return fmt.Sprintf("accessibility audit failed: %s", e.Message)
}
