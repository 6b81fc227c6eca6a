// Package expand flattens a ViewDefinition's select tree, with its unionAll
// branches, into an ordered list of concrete SelectCombinations with no
// unionAll remaining in any of them.
package expand

import (
	"github.com/aehrc/sof-mssql/internal/cerrors"
	"github.com/aehrc/sof-mssql/internal/viewdef"
)

// DefaultExpansionLimit is the default cap on the number of branches a
// unionAll expansion may produce before it is rejected as too complex.
const DefaultExpansionLimit = 1024

// SelectCombination is one concrete sequence of SelectNodes with no
// unionAll anywhere inside it — a single branch that gets lowered into one
// SELECT. Combinations own their own Nodes slice; none of the expansion
// shares a backing array across combinations.
type SelectCombination struct {
	Nodes []viewdef.SelectNode
}

// ExpandUnionAll walks top (a ViewDefinition's top-level select[]) and
// produces the ordered, deterministic list of SelectCombinations implied by
// every unionAll found at any depth, depth-first. limit caps the number of
// combinations produced; exceeding it raises ViewDefinitionTooComplex. A
// limit <= 0 uses DefaultExpansionLimit.
func ExpandUnionAll(top []viewdef.SelectNode, limit int) ([]SelectCombination, error) {
	if limit <= 0 {
		limit = DefaultExpansionLimit
	}
	lists, err := expandNodeList(top, limit)
	if err != nil {
		return nil, err
	}
	combos := make([]SelectCombination, len(lists))
	for i, nodes := range lists {
		combos[i] = SelectCombination{Nodes: nodes}
	}
	return combos, nil
}

// expandNodeList cross-multiplies the alternative renderings of a sibling
// list of SelectNodes (e.g. a ViewDefinition's top-level select[], or one
// node's nested select[]), in source order.
func expandNodeList(nodes []viewdef.SelectNode, limit int) ([][]viewdef.SelectNode, error) {
	combos := [][]viewdef.SelectNode{{}}
	for _, n := range nodes {
		alts, err := expandNode(n, limit)
		if err != nil {
			return nil, err
		}
		combos, err = crossMultiply(combos, alts, limit)
		if err != nil {
			return nil, err
		}
	}
	return combos, nil
}

// expandNode returns every alternative concrete rendering of a single
// SelectNode: if it carries no unionAll (directly or, transitively, in its
// nested select[]), there is exactly one alternative, itself. Otherwise one
// alternative per branch of the cross product of its nested select[]
// combinations and its unionAll children's own alternatives (each unionAll
// child is expanded depth-first, since it may itself carry a nested
// unionAll).
func expandNode(n viewdef.SelectNode, limit int) ([]viewdef.SelectNode, error) {
	selectCombos := [][]viewdef.SelectNode{nil}
	if len(n.Select) > 0 {
		var err error
		selectCombos, err = expandNodeList(n.Select, limit)
		if err != nil {
			return nil, err
		}
	}

	if len(n.UnionAll) == 0 {
		results := make([]viewdef.SelectNode, 0, len(selectCombos))
		for _, sc := range selectCombos {
			clone := n
			clone.Select = sc
			clone.UnionAll = nil
			results = append(results, clone)
		}
		return results, nil
	}

	var unionAlts []viewdef.SelectNode
	for _, child := range n.UnionAll {
		childAlts, err := expandNode(child, limit)
		if err != nil {
			return nil, err
		}
		unionAlts = append(unionAlts, childAlts...)
		if len(unionAlts) > limit {
			return nil, tooComplexError(len(unionAlts), limit)
		}
	}

	var results []viewdef.SelectNode
	for _, sc := range selectCombos {
		for _, alt := range unionAlts {
			clone := n
			clone.Select = append(append([]viewdef.SelectNode{}, sc...), alt)
			clone.UnionAll = nil
			results = append(results, clone)
			if len(results) > limit {
				return nil, tooComplexError(len(results), limit)
			}
		}
	}
	return results, nil
}

// crossMultiply combines every existing combination with every alternative,
// preserving source order (existing combinations outer, alternatives inner)
// so branch order stays stable and deterministic.
func crossMultiply(combos [][]viewdef.SelectNode, alts []viewdef.SelectNode, limit int) ([][]viewdef.SelectNode, error) {
	out := make([][]viewdef.SelectNode, 0, len(combos)*len(alts))
	for _, c := range combos {
		for _, alt := range alts {
			next := make([]viewdef.SelectNode, len(c)+1)
			copy(next, c)
			next[len(c)] = alt
			out = append(out, next)
			if len(out) > limit {
				return nil, tooComplexError(len(out), limit)
			}
		}
	}
	return out, nil
}

func tooComplexError(count, limit int) error {
	return cerrors.Errorf(cerrors.StageUnionExpand, cerrors.KindViewDefinitionTooComplex, "/select",
		nil, "unionAll expansion reached %d branches, more than the limit of %d", count, limit)
}
