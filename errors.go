package sofmssql

import "github.com/aehrc/sof-mssql/internal/cerrors"

// Stage identifies which pipeline component raised a CompileError.
type Stage = cerrors.Stage

// Kind is the machine-checkable error taxonomy surfaced by CompileError.
type Kind = cerrors.Kind

// CompileError is the single structured error type returned anywhere in the
// pipeline. See internal/cerrors for field documentation.
type CompileError = cerrors.CompileError

const (
	StageViewDefinition = cerrors.StageViewDefinition
	StageFHIRPathSyntax = cerrors.StageFHIRPathSyntax
	StageFHIRPathLower  = cerrors.StageFHIRPathLower
	StagePathAnalysis   = cerrors.StagePathAnalysis
	StageUnionExpand    = cerrors.StageUnionExpand
	StageEmit           = cerrors.StageEmit
)

const (
	KindViewDefinitionInvalid    = cerrors.KindViewDefinitionInvalid
	KindFhirPathSyntaxError      = cerrors.KindFhirPathSyntaxError
	KindFhirPathUnsupported      = cerrors.KindFhirPathUnsupported
	KindPathMalformed            = cerrors.KindPathMalformed
	KindViewDefinitionTooComplex = cerrors.KindViewDefinitionTooComplex
	KindEmitError                = cerrors.KindEmitError
)

// Errorf builds a CompileError, optionally wrapping an underlying cause.
func Errorf(stage Stage, kind Kind, location string, cause error, format string, args ...any) *CompileError {
	return cerrors.Errorf(stage, kind, location, cause, format, args...)
}
