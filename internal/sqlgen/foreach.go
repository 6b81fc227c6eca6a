package sqlgen

import (
	"fmt"
	"strings"

	"github.com/aehrc/sof-mssql/internal/cerrors"
	"github.com/aehrc/sof-mssql/internal/fhirpath"
	"github.com/aehrc/sof-mssql/internal/pathops"
	"github.com/aehrc/sof-mssql/internal/viewdef"
)

// emittedColumn is one column already lowered to a SQL expression, still
// carrying its declared type and description for the final columns[] the
// public API returns alongside the SQL text.
type emittedColumn struct {
	Name        string
	SQL         string
	Type        string
	Description string
	Tag         []viewdef.Tag
}

// branchState accumulates the FROM scaffold and the column list while
// buildBranchNodes walks one SelectCombination's tree.
type branchState struct {
	from     *strings.Builder
	aliasGen *aliasGen
	columns  []emittedColumn
}

// buildBranchNodes walks a sibling list of SelectNodes (a SelectCombination
// itself, or a node's already-expanded Select children), threading a
// BindingContext that rebinds under each forEach/forEachOrNull, appending
// APPLY scaffolding to state.from and columns to state.columns in
// encounter order, since the final column order is the concatenation of
// column lists in that same encounter order.
func buildBranchNodes(nodes []viewdef.SelectNode, ctx *fhirpath.BindingContext, state *branchState) error {
	for _, n := range nodes {
		localCtx := ctx

		if path, orNull, ok := n.HasForEach(); ok {
			next, err := attachForEach(state, ctx, path, orNull)
			if err != nil {
				return err
			}
			localCtx = next
		}

		for _, col := range n.Column {
			sqlExpr, err := LowerColumn(col, localCtx)
			if err != nil {
				return err
			}
			state.columns = append(state.columns, emittedColumn{
				Name: col.Name, SQL: sqlExpr, Type: col.Type, Description: col.Description, Tag: col.Tag,
			})
		}

		if err := buildBranchNodes(n.Select, localCtx, state); err != nil {
			return err
		}
	}
	return nil
}

// attachForEach appends one APPLY hop to the FROM scaffold for a
// forEach/forEachOrNull path and returns the BindingContext nested columns
// under it should be lowered in.
func attachForEach(state *branchState, ctx *fhirpath.BindingContext, path string, orNull bool) (*fhirpath.BindingContext, error) {
	analysis, err := pathops.Analyse(path)
	if err != nil {
		return nil, err
	}

	alias := state.aliasGen.next()
	applyKind := "CROSS APPLY"
	if orNull {
		applyKind = "OUTER APPLY"
	}

	var source string
	switch {
	case analysis.ExplicitIndex != nil:
		source = fmt.Sprintf("(SELECT JSON_QUERY(%s, '$.%s[%d]') AS value)", ctx.JSONRef, analysis.BasePath, *analysis.ExplicitIndex)

	case analysis.UseFirst:
		where := ""
		if analysis.WherePredicate != nil {
			predSQL, err := lowerArrayPredicate(analysis.WherePredicate, ctx)
			if err != nil {
				return nil, err
			}
			where = " WHERE " + predSQL
		}
		source = fmt.Sprintf("(SELECT TOP 1 value FROM OPENJSON(%s, '$.%s')%s)", ctx.JSONRef, analysis.BasePath, where)

	case analysis.WherePredicate != nil:
		predSQL, err := lowerArrayPredicate(analysis.WherePredicate, ctx)
		if err != nil {
			return nil, err
		}
		source = fmt.Sprintf("(SELECT value FROM OPENJSON(%s, '$.%s') WHERE %s)", ctx.JSONRef, analysis.BasePath, predSQL)

	default:
		source = fmt.Sprintf("OPENJSON(%s, '$.%s')", ctx.JSONRef, analysis.BasePath)
	}

	fmt.Fprintf(state.from, " %s %s AS %s", applyKind, source, alias)

	return ctx.WithJSONRef(alias+".value", analysis.BasePath), nil
}

// lowerArrayPredicate lowers a .where(P) predicate bound against the OPENJSON
// row variable "value" (bare, not alias-qualified — this runs inside the
// correlated subquery that defines the APPLY itself), matching the literal
// JSON_VALUE(value, '$.use') shape a where()-filtered forEach takes. A
// literal .where(false)/.where(true) shortcuts to the constant predicate.
func lowerArrayPredicate(pred fhirpath.Node, outerCtx *fhirpath.BindingContext) (string, error) {
	if lit, ok := pred.(fhirpath.BooleanLiteral); ok {
		if lit.Value {
			return "1=1", nil
		}
		return "1=0", nil
	}
	predCtx := &fhirpath.BindingContext{
		ResourceAlias: outerCtx.ResourceAlias,
		JSONRef:       "value",
		RootJSONRef:   outerCtx.RootJSONRef,
		IDRef:         outerCtx.IDRef,
		Constants:     outerCtx.Constants,
	}
	expr, err := fhirpath.Lower(pred, predCtx)
	if err != nil {
		return "", wrapFHIRPathError(err)
	}
	return expr, nil
}

// wrapFHIRPathError promotes a fhirpath package error into the shared
// CompileError taxonomy, tagging it with the stage the concrete error type
// implies.
func wrapFHIRPathError(err error) error {
	switch e := err.(type) {
	case *fhirpath.SyntaxError:
		return cerrors.Errorf(cerrors.StageFHIRPathSyntax, cerrors.KindFhirPathSyntaxError, e.Expression, err, "%s", e.Message)
	case *fhirpath.UnsupportedError:
		return cerrors.Errorf(cerrors.StageFHIRPathLower, cerrors.KindFhirPathUnsupported, e.Expression, err, "unsupported construct: %s", e.Construct)
	default:
		return cerrors.Errorf(cerrors.StageFHIRPathLower, cerrors.KindFhirPathUnsupported, "", err, "%s", err.Error())
	}
}
