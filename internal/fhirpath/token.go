package fhirpath

// tokenKind enumerates the lexical categories of the FHIRPath subset this
// compiler accepts.
type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokConstant // %ident
	tokString
	tokNumber
	tokOp       // = != < <= > >= + - * / | .
	tokLParen
	tokRParen
	tokLBracket
	tokRBracket
	tokComma
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

// reservedWords are FHIRPath keywords that lex as themselves (tokIdent) but
// are recognised specially by the parser where grammar requires it.
var reservedWords = map[string]bool{
	"true": true, "false": true, "and": true, "or": true, "xor": true,
	"implies": true, "div": true, "mod": true, "in": true, "contains": true,
	"as": true, "is": true, "not": true,
}
