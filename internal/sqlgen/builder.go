// Package sqlgen turns one expanded SelectCombination into T-SQL text: the
// forEach APPLY scaffolding, the column/where emission, and the final
// query assembly.
package sqlgen

import "fmt"

// Quote renders a T-SQL bracket-quoted identifier: "[" + s + "]". Callers
// are responsible for having already validated name via
// viewdef.ValidIdentifier; Quote itself does not re-validate.
func Quote(name string) string {
	return "[" + name + "]"
}

// TableRef names the source table a branch's FROM clause reads from,
// translated from the public Options struct by the root package so this
// package never imports it back (avoiding an import cycle).
type TableRef struct {
	Schema     string
	Table      string
	IDColumn   string
	JSONColumn string
}

// aliasGen hands out deterministic, source-order APPLY aliases (a1, a2, ...)
// for each array hop a branch introduces, matching the "output is stable
// for a given input" determinism property.
type aliasGen struct {
	n int
}

func (g *aliasGen) next() string {
	g.n++
	return fmt.Sprintf("a%d", g.n)
}
