package nutrition

import "fmt"

// The three terminal failure modes of a plan request. They are mutually
// exclusive per invocation and deliberately distinct so operators can tell
// "bad input" from "service down" from "service returned garbage".

// InvalidGoalError means the supplied goal word could not be normalized to
// lose/maintain/gain.
type InvalidGoalError struct {
	Goal string
}

func (e *InvalidGoalError) Error() string {
	return fmt.Sprintf("invalid goal %q: expected lose, maintain or gain (or a known alias)", e.Goal)
}

// ModelCallError means the generation call itself failed: missing credential,
// transport error, non-200 status or an empty reply.
type ModelCallError struct {
	Err error
}

func (e *ModelCallError) Error() string { return fmt.Sprintf("model call failed: %v", e.Err) }
func (e *ModelCallError) Unwrap() error { return e.Err }

// ParseError means the model replied but no valid plan JSON could be
// extracted from its text. No partial plan is ever returned.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string { return fmt.Sprintf("plan response parse failed: %v", e.Err) }
func (e *ParseError) Unwrap() error { return e.Err }
