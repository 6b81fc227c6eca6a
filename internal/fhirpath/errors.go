package fhirpath

import "fmt"

// SyntaxError is raised by the lexer/parser when an expression cannot
// be tokenised or parsed.
type SyntaxError struct {
	Expression string
	Pos        int
	Message    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("fhirpath syntax error in %q at position %d: %s", e.Expression, e.Pos, e.Message)
}

// UnsupportedError is raised during lowering for known-but-unimplemented
// constructs such as .as(), .ofType(), .iif(), or polymorphic choice access.
type UnsupportedError struct {
	Expression string
	Construct  string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("unsupported FHIRPath construct %q in %q", e.Construct, e.Expression)
}
