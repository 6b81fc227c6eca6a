package sqlgen

import (
	"fmt"

	"github.com/aehrc/sof-mssql/internal/fhirpath"
	"github.com/aehrc/sof-mssql/internal/pathops"
	"github.com/aehrc/sof-mssql/internal/viewdef"
)

// LowerColumn emits the SQL expression for one Column in the current
// binding context: a JSON array expression when Collection is set,
// otherwise the scalar path lowering with the type cast or boolean
// CASE WHEN form applied on top.
func LowerColumn(col viewdef.Column, ctx *fhirpath.BindingContext) (string, error) {
	if col.Collection {
		expr, err := lowerCollectionColumn(col, ctx)
		if err != nil {
			return "", err
		}
		return expr, nil
	}

	node, err := fhirpath.Parse(col.Path)
	if err != nil {
		return "", wrapFHIRPathError(err)
	}
	expr, err := fhirpath.Lower(node, ctx)
	if err != nil {
		return "", wrapFHIRPathError(err)
	}
	return applyCast(expr, col.Type), nil
}

// lowerCollectionColumn implements collection-mode column emission.
// name.family and name.given get the canonical STRING_AGG-built JSON array
// special case; every other path falls back to a plain JSON_QUERY. Whether
// that two-path special case is complete coverage or a narrower original
// intent is unclear; it is reproduced literally here, not generalised.
func lowerCollectionColumn(col viewdef.Column, ctx *fhirpath.BindingContext) (string, error) {
	switch col.Path {
	case "name.family", "name.given":
		return buildFamilyGivenCollection(ctx, col.Path), nil
	}

	analysis, err := pathops.Analyse(col.Path)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("JSON_QUERY(%s, '$.%s')", ctx.JSONRef, analysis.BasePath), nil
}

// buildFamilyGivenCollection materialises the "all <field> values across
// the name array" JSON array via a correlated STRING_AGG, the canonical
// shape a collection-mode family/given column takes.
func buildFamilyGivenCollection(ctx *fhirpath.BindingContext, path string) string {
	field := path[len("name."):]
	return fmt.Sprintf(
		"(SELECT '[' + STRING_AGG('\"' + STRING_ESCAPE(JSON_VALUE(n.value, '$.%s'), 'json') + '\"', ',') + ']' "+
			"FROM OPENJSON(%s, '$.name') AS n)",
		field, ctx.JSONRef)
}

// applyCast wraps a scalar expression per a Column.type declaration.
// An empty type is left uncast; boolean gets the
// three-valued CASE WHEN form; every other recognised type gets a single
// CAST; NVARCHAR(MAX) (the default/unknown mapping) needs no cast since
// JSON_VALUE already returns that shape.
func applyCast(expr, fhirType string) string {
	if fhirType == "" {
		return expr
	}
	if fhirpath.IsBooleanType(fhirType) {
		return fmt.Sprintf("(CASE WHEN %s THEN 1 WHEN NOT %s THEN 0 ELSE NULL END)", expr, expr)
	}
	if fhirpath.NeedsCast(fhirType) {
		return fmt.Sprintf("CAST(%s AS %s)", expr, fhirpath.MapSQLType(fhirType))
	}
	return expr
}
