package fhirpath

import (
	"fmt"
	"strconv"
	"strings"
)

func (n Identifier) String() string { return n.Name }

func (n NumberLiteral) String() string { return n.Text }

func (n StringLiteral) String() string {
	return "'" + strings.ReplaceAll(n.Value, "'", "''") + "'"
}

func (n BooleanLiteral) String() string { return strconv.FormatBool(n.Value) }

func (n ConstantRef) String() string { return "%" + n.Name }

func (n MemberInvocation) String() string {
	if n.Base == nil {
		return n.Name
	}
	return n.Base.String() + "." + n.Name
}

func (n FunctionInvocation) String() string {
	args := make([]string, len(n.Args))
	for i, a := range n.Args {
		args[i] = a.String()
	}
	call := n.Name + "(" + strings.Join(args, ", ") + ")"
	if n.Base == nil {
		return call
	}
	return n.Base.String() + "." + call
}

func (n Indexer) String() string {
	return fmt.Sprintf("%s[%s]", n.Base.String(), n.Index.String())
}

func (n Binary) String() string {
	return fmt.Sprintf("%s %s %s", n.Left.String(), n.Op, n.Right.String())
}

func (n Unary) String() string {
	if n.Op == UnaryNot {
		return "not " + n.Val.String()
	}
	return string(n.Op) + n.Val.String()
}

func (n Parenthesised) String() string {
	return "(" + n.Inner.String() + ")"
}
