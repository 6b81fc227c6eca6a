// Package cerrors defines the structured error taxonomy shared by every
// compilation stage. It lives under internal so each stage package can
// construct errors without creating an import cycle back to the root
// sofmssql package, which re-exports these types verbatim for callers.
package cerrors

import "fmt"

// Stage identifies which pipeline component raised a CompileError.
type Stage string

const (
	StageViewDefinition Stage = "viewdef"  // ViewDefinition parsing/validation
	StageFHIRPathSyntax Stage = "fhirpath" // FHIRPath lexing/parsing
	StageFHIRPathLower  Stage = "lower"    // FHIRPath-to-SQL lowering
	StagePathAnalysis   Stage = "pathops"  // forEach/column path analysis
	StageUnionExpand    Stage = "expand"   // unionAll expansion
	StageEmit           Stage = "emit"     // column/where emission and query assembly
)

// Kind is the machine-checkable error taxonomy CompileError carries.
type Kind string

const (
	KindViewDefinitionInvalid    Kind = "ViewDefinitionInvalid"
	KindFhirPathSyntaxError      Kind = "FhirPathSyntaxError"
	KindFhirPathUnsupported      Kind = "FhirPathUnsupported"
	KindPathMalformed            Kind = "PathMalformed"
	KindViewDefinitionTooComplex Kind = "ViewDefinitionTooComplex"
	KindEmitError                Kind = "EmitError"
)

// CompileError is the single structured error type returned anywhere in the
// pipeline. Every stage reports its kind, a location (a FHIRPath expression
// or a JSON pointer into the ViewDefinition), and a human-readable message.
// Propagation is strictly bottom-up: nothing in the pipeline recovers from
// one or logs it, it is simply returned to the caller.
type CompileError struct {
	Stage    Stage
	Kind     Kind
	Location string // FHIRPath expression or JSON pointer, depending on Stage
	Message  string
	Cause    error
}

func (e *CompileError) Error() string {
	if e.Location != "" {
		return fmt.Sprintf("%s: %s at %q: %s", e.Stage, e.Kind, e.Location, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Stage, e.Kind, e.Message)
}

func (e *CompileError) Unwrap() error {
	return e.Cause
}

// Errorf builds a CompileError, optionally wrapping an underlying cause.
func Errorf(stage Stage, kind Kind, location string, cause error, format string, args ...any) *CompileError {
	return &CompileError{
		Stage:    stage,
		Kind:     kind,
		Location: location,
		Message:  fmt.Sprintf(format, args...),
		Cause:    cause,
	}
}
