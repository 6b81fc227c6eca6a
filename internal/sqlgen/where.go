package sqlgen

import (
	"fmt"
	"strings"

	"github.com/aehrc/sof-mssql/internal/fhirpath"
	"github.com/aehrc/sof-mssql/internal/viewdef"
)

// quoteSQLLiteral renders a T-SQL single-quoted string literal, doubling
// embedded quotes. Used for the resource_type filter, the one place a
// branch's WHERE clause embeds a literal rather than a lowered expression.
func quoteSQLLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// BuildWhereConjunction lowers every top-level where[].path predicate
// against rootCtx and conjoins them with the mandatory resource_type filter,
// which every emitted SELECT applies first regardless of where[].
func BuildWhereConjunction(resourceType string, wheres []viewdef.Where, rootCtx *fhirpath.BindingContext) (string, error) {
	parts := []string{fmt.Sprintf("r.resource_type = %s", quoteSQLLiteral(resourceType))}

	for _, w := range wheres {
		node, err := fhirpath.Parse(w.Path)
		if err != nil {
			return "", wrapFHIRPathError(err)
		}
		expr, err := fhirpath.Lower(node, rootCtx)
		if err != nil {
			return "", wrapFHIRPathError(err)
		}
		parts = append(parts, expr)
	}

	return strings.Join(parts, " AND "), nil
}
