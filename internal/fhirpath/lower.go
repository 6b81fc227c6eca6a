package fhirpath

import (
	"fmt"
	"strconv"
	"strings"
)

// Lower turns an AST node into a T-SQL expression string under ctx. The
// result is always a single SQL scalar or predicate
// expression, fully parenthesised where operator precedence would
// otherwise be ambiguous once spliced into a larger statement.
func Lower(node Node, ctx *BindingContext) (string, error) {
	switch n := node.(type) {
	case Identifier:
		return lowerPath(n, ctx)
	case MemberInvocation:
		return lowerPath(n, ctx)
	case Indexer:
		return lowerPath(n, ctx)
	case NumberLiteral:
		return n.Text, nil
	case StringLiteral:
		return quoteSQLString(n.Value), nil
	case BooleanLiteral:
		if n.Value {
			return "1", nil
		}
		return "0", nil
	case ConstantRef:
		return lowerConstant(n, ctx)
	case FunctionInvocation:
		return lowerFunction(n, ctx)
	case Binary:
		return lowerBinary(n, ctx)
	case Unary:
		return lowerUnary(n, ctx)
	case Parenthesised:
		inner, err := Lower(n.Inner, ctx)
		if err != nil {
			return "", err
		}
		return "(" + inner + ")", nil
	}
	return "", &UnsupportedError{Expression: node.String(), Construct: fmt.Sprintf("%T", node)}
}

// pathSegment is one dotted member of a FHIRPath member-invocation chain,
// optionally carrying an explicit index taken from a trailing [n].
type pathSegment struct {
	name  string
	index *int
}

// PathSegment is the exported form of pathSegment, used by the path
// analyser to inspect a member chain's structure without re-walking
// the AST itself.
type PathSegment struct {
	Name  string
	Index *int
}

// PathSegments decomposes a member/identifier/indexer chain into its
// ordered dotted segments. It fails if node is not a plain path expression
// (e.g. it is a binary operator or an unsupported index expression).
func PathSegments(node Node) ([]PathSegment, error) {
	segs, err := pathSegments(node)
	if err != nil {
		return nil, err
	}
	out := make([]PathSegment, len(segs))
	for i, s := range segs {
		out[i] = PathSegment{Name: s.name, Index: s.index}
	}
	return out, nil
}

func pathSegments(node Node) ([]pathSegment, error) {
	switch n := node.(type) {
	case Identifier:
		return []pathSegment{{name: n.Name}}, nil
	case MemberInvocation:
		if n.Base == nil {
			return []pathSegment{{name: n.Name}}, nil
		}
		segs, err := pathSegments(n.Base)
		if err != nil {
			return nil, err
		}
		return append(segs, pathSegment{name: n.Name}), nil
	case Indexer:
		segs, err := pathSegments(n.Base)
		if err != nil {
			return nil, err
		}
		lit, ok := n.Index.(NumberLiteral)
		if !ok {
			return nil, &UnsupportedError{Expression: node.String(), Construct: "non-literal index expression"}
		}
		idx, err := strconv.Atoi(lit.Text)
		if err != nil {
			return nil, &SyntaxError{Expression: node.String(), Message: "index must be a non-negative integer"}
		}
		segs[len(segs)-1].index = &idx
		return segs, nil
	case Parenthesised:
		return pathSegments(n.Inner)
	default:
		return nil, &UnsupportedError{Expression: node.String(), Construct: "non-path expression used as a path"}
	}
}

// renderPath joins segments with '.', appending "[0]" to an unindexed
// known-array-field segment when applyImplicitIndex is set (the scalar
// lowering case); array-base lowerings (count/join/getReferenceKey) pass
// false so the full collection is addressed.
func renderPath(segs []pathSegment, applyImplicitIndex bool) string {
	var b strings.Builder
	for _, s := range segs {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(s.name)
		if s.index != nil {
			fmt.Fprintf(&b, "[%d]", *s.index)
		} else if applyImplicitIndex && IsKnownArrayField(s.name) {
			b.WriteString("[0]")
		}
	}
	return b.String()
}

func rawArrayPath(node Node) (string, error) {
	if node == nil {
		return "", &UnsupportedError{Expression: "", Construct: "bare function call with no base path"}
	}
	segs, err := pathSegments(node)
	if err != nil {
		return "", err
	}
	return renderPath(segs, false), nil
}

func lowerPath(node Node, ctx *BindingContext) (string, error) {
	segs, err := pathSegments(node)
	if err != nil {
		return "", err
	}
	if len(segs) == 1 && segs[0].name == "id" && segs[0].index == nil && ctx.JSONRef == ctx.RootJSONRef {
		return ctx.IDRef, nil
	}
	path := renderPath(segs, true)
	return fmt.Sprintf("JSON_VALUE(%s, '$.%s')", ctx.JSONRef, path), nil
}

func lowerFunction(fn FunctionInvocation, ctx *BindingContext) (string, error) {
	if explicitlyUnsupported[fn.Name] {
		return "", &UnsupportedError{Expression: fn.String(), Construct: fn.Name + "()"}
	}
	if !isSupportedFunction(fn.Name, len(fn.Args)) {
		return "", &UnsupportedError{Expression: fn.String(), Construct: fn.Name + "()"}
	}

	switch fn.Name {
	case "getResourceKey":
		return ctx.IDRef, nil

	case "exists":
		base, err := Lower(fn.Base, ctx)
		if err != nil {
			return "", err
		}
		return "(" + base + " IS NOT NULL)", nil

	case "empty":
		base, err := Lower(fn.Base, ctx)
		if err != nil {
			return "", err
		}
		return "(" + base + " IS NULL)", nil

	case "first":
		segs, err := pathSegments(fn.Base)
		if err != nil {
			return "", err
		}
		if len(segs) > 0 {
			zero := 0
			segs[len(segs)-1].index = &zero
		}
		path := renderPath(segs, true)
		return fmt.Sprintf("JSON_VALUE(%s, '$.%s')", ctx.JSONRef, path), nil

	case "count":
		rawPath, err := rawArrayPath(fn.Base)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("(SELECT COUNT(*) FROM OPENJSON(%s, '$.%s'))", ctx.JSONRef, rawPath), nil

	case "join":
		sep, ok := fn.Args[0].(StringLiteral)
		if !ok {
			return "", &UnsupportedError{Expression: fn.String(), Construct: "join() with a non-literal separator"}
		}
		rawPath, err := rawArrayPath(fn.Base)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("(SELECT STRING_AGG(value, %s) FROM OPENJSON(%s, '$.%s'))",
			quoteSQLString(sep.Value), ctx.JSONRef, rawPath), nil

	case "where":
		// Restricts an array hop; this is only meaningful attached to a
		// forEach/array-hop scaffold and is lowered there, never inline here.
		return "", &UnsupportedError{Expression: fn.String(), Construct: "where() outside an array-hop context"}

	case "getReferenceKey":
		rawPath, err := rawArrayPath(fn.Base)
		if err != nil {
			return "", err
		}
		refExpr := fmt.Sprintf("JSON_VALUE(%s, '$.%s.reference')", ctx.JSONRef, rawPath)
		idExpr := fmt.Sprintf("SUBSTRING(%s, CHARINDEX('/', %s) + 1, LEN(%s))", refExpr, refExpr, refExpr)
		if len(fn.Args) == 1 {
			typeLit, ok := fn.Args[0].(StringLiteral)
			if !ok {
				return "", &UnsupportedError{Expression: fn.String(), Construct: "getReferenceKey() with a non-literal type filter"}
			}
			return fmt.Sprintf("(CASE WHEN %s LIKE %s THEN %s ELSE NULL END)",
				refExpr, quoteSQLString(typeLit.Value+"/%"), idExpr), nil
		}
		return idExpr, nil
	}

	return "", &UnsupportedError{Expression: fn.String(), Construct: fn.Name + "()"}
}

func lowerBinary(b Binary, ctx *BindingContext) (string, error) {
	left, err := Lower(b.Left, ctx)
	if err != nil {
		return "", err
	}
	right, err := Lower(b.Right, ctx)
	if err != nil {
		return "", err
	}
	switch b.Op {
	case OpEq, OpNeq, OpLt, OpLte, OpGt, OpGte:
		return fmt.Sprintf("(%s %s %s)", left, b.Op, right), nil
	case OpAnd:
		return fmt.Sprintf("(%s AND %s)", left, right), nil
	case OpOr:
		return fmt.Sprintf("(%s OR %s)", left, right), nil
	case OpXor:
		return fmt.Sprintf("((%s) <> (%s))", left, right), nil
	case OpImplies:
		return fmt.Sprintf("(NOT (%s) OR (%s))", left, right), nil
	case OpAdd:
		return fmt.Sprintf("(%s + %s)", left, right), nil
	case OpSub:
		return fmt.Sprintf("(%s - %s)", left, right), nil
	case OpMul:
		return fmt.Sprintf("(%s * %s)", left, right), nil
	case OpDiv, OpIntDiv:
		return fmt.Sprintf("(%s / %s)", left, right), nil
	case OpMod:
		return fmt.Sprintf("(%s %% %s)", left, right), nil
	}
	return "", &UnsupportedError{Expression: b.String(), Construct: fmt.Sprintf("binary operator %q", b.Op)}
}

func lowerUnary(u Unary, ctx *BindingContext) (string, error) {
	val, err := Lower(u.Val, ctx)
	if err != nil {
		return "", err
	}
	switch u.Op {
	case UnaryNot:
		return "(NOT " + val + ")", nil
	case UnaryNeg:
		return "(-" + val + ")", nil
	case UnaryPlus:
		return "(+" + val + ")", nil
	}
	return "", &UnsupportedError{Expression: u.String(), Construct: fmt.Sprintf("unary operator %q", u.Op)}
}

func lowerConstant(c ConstantRef, ctx *BindingContext) (string, error) {
	if c.Name == "resource" || c.Name == "context" {
		return ctx.RootJSONRef, nil
	}
	val, ok := ctx.Constants[c.Name]
	if !ok {
		return "", &UnsupportedError{Expression: "%" + c.Name, Construct: fmt.Sprintf("undefined constant %%%s", c.Name)}
	}
	return renderJSONScalar(val)
}

func renderJSONScalar(v any) (string, error) {
	switch t := v.(type) {
	case nil:
		return "NULL", nil
	case bool:
		if t {
			return "1", nil
		}
		return "0", nil
	case string:
		return quoteSQLString(t), nil
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), nil
	case int:
		return strconv.Itoa(t), nil
	case int64:
		return strconv.FormatInt(t, 10), nil
	default:
		return "", fmt.Errorf("unsupported constant value type %T", v)
	}
}

func quoteSQLString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
