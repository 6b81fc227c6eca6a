// Package pathops analyses a FHIRPath expression used as a forEach or
// column path to pull out the pieces needed downstream — a trailing
// where() predicate, a trailing first(), known-array-field hops, and an
// explicit trailing index.
package pathops

import (
	"strings"

	"github.com/aehrc/sof-mssql/internal/cerrors"
	"github.com/aehrc/sof-mssql/internal/fhirpath"
)

// ArrayHop is one known-array-field segment encountered along a path,
// together with the dotted path (relative to the binding context in scope)
// needed to reach it. Each ArrayHop becomes one APPLY/OPENJSON join.
type ArrayHop struct {
	Name          string
	PathSoFar     string
	ExplicitIndex *int
}

// Analysis is the result of analysing one forEach/column FHIRPath string.
type Analysis struct {
	// RewrittenPath is the path with any trailing where()/first() peeled
	// off, rendered back to FHIRPath source text.
	RewrittenPath string

	// BasePath is the dotted JSON path of the remaining member chain, with
	// no implicit [0] insertion and no where()/first() suffix.
	BasePath string

	// ArrayHops lists every known-array-field segment found along
	// BasePath, in path order.
	ArrayHops []ArrayHop

	// WherePredicate is the inner expression of a trailing .where(P), or
	// nil if the path has no such call. A literal .where(false) is
	// represented as a BooleanLiteral{false} node; callers special-case it
	// to the constant predicate "1=0" rather than lowering it generically.
	WherePredicate fhirpath.Node

	// UseFirst is set when the path ends in a trailing .first() call
	// (after peeling any .where()).
	UseFirst bool

	// ExplicitIndex is set when the final path segment carries an explicit
	// [n] index.
	ExplicitIndex *int
}

// Analyse parses pathExpr and extracts the structure needed to build a
// FROM/APPLY scaffold and a column/predicate lowering. Lexical or grammar
// failures (including unmatched parens inside a where() argument, which the
// recursive-descent parser already rejects as an unterminated expression)
// surface as PathMalformed, since they were discovered while analysing a
// forEach/column path specifically.
func Analyse(pathExpr string) (*Analysis, error) {
	root, err := fhirpath.Parse(pathExpr)
	if err != nil {
		return nil, cerrors.Errorf(cerrors.StagePathAnalysis, cerrors.KindPathMalformed, pathExpr,
			err, "malformed path: %s", err)
	}

	cur := root
	useFirst := false
	var wherePredicate fhirpath.Node

peel:
	for {
		fn, ok := cur.(fhirpath.FunctionInvocation)
		if !ok || fn.Base == nil {
			break
		}
		switch {
		case fn.Name == "first" && len(fn.Args) == 0:
			useFirst = true
			cur = fn.Base
		case fn.Name == "where" && len(fn.Args) == 1:
			wherePredicate = fn.Args[0]
			cur = fn.Base
			break peel // where() is always the innermost peeled call in a valid path; stop here
		default:
			break peel
		}
	}

	segs, err := fhirpath.PathSegments(cur)
	if err != nil {
		return nil, cerrors.Errorf(cerrors.StagePathAnalysis, cerrors.KindPathMalformed, pathExpr,
			err, "path is not a plain member chain once where()/first() are removed: %s", err)
	}

	var hops []ArrayHop
	var parts []string
	for _, s := range segs {
		parts = append(parts, s.Name)
		if fhirpath.IsKnownArrayField(s.Name) {
			hops = append(hops, ArrayHop{
				Name:          s.Name,
				PathSoFar:     strings.Join(parts, "."),
				ExplicitIndex: s.Index,
			})
		}
	}

	var explicitIndex *int
	if len(segs) > 0 {
		explicitIndex = segs[len(segs)-1].Index
	}

	return &Analysis{
		RewrittenPath:  cur.String(),
		BasePath:       strings.Join(parts, "."),
		ArrayHops:      hops,
		WherePredicate: wherePredicate,
		UseFirst:       useFirst,
		ExplicitIndex:  explicitIndex,
	}, nil
}
