package expand_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aehrc/sof-mssql/internal/cerrors"
	"github.com/aehrc/sof-mssql/internal/expand"
	"github.com/aehrc/sof-mssql/internal/viewdef"
)

// columnNames walks a SelectCombination's nodes and collects every column
// name it carries, in order, asserting along the way that no UnionAll
// survived expansion.
func columnNames(t *testing.T, nodes []viewdef.SelectNode) []string {
	t.Helper()
	var names []string
	for _, n := range nodes {
		require.Empty(t, n.UnionAll, "expanded node must not retain unionAll")
		for _, c := range n.Column {
			names = append(names, c.Name)
		}
		names = append(names, columnNames(t, n.Select)...)
	}
	return names
}

func TestExpandUnionAllNoUnionAllProducesSingleCombination(t *testing.T) {
	top := []viewdef.SelectNode{
		{Column: []viewdef.Column{{Name: "pid", Path: "id"}}},
	}
	combos, err := expand.ExpandUnionAll(top, 0)
	require.NoError(t, err)
	require.Len(t, combos, 1)
	assert.Equal(t, []string{"pid"}, columnNames(t, combos[0].Nodes))
}

func TestExpandUnionAllSimpleTwoBranches(t *testing.T) {
	top := []viewdef.SelectNode{
		{
			UnionAll: []viewdef.SelectNode{
				{Column: []viewdef.Column{{Name: "pid", Path: "id"}}},
				{Column: []viewdef.Column{{Name: "pid", Path: "getResourceKey()"}}},
			},
		},
	}
	combos, err := expand.ExpandUnionAll(top, 0)
	require.NoError(t, err)
	require.Len(t, combos, 2)
	assert.Equal(t, []string{"pid"}, columnNames(t, combos[0].Nodes))
	assert.Equal(t, []string{"pid"}, columnNames(t, combos[1].Nodes))
}

func TestExpandUnionAllNestedUnionAllFlattensAlternatives(t *testing.T) {
	top := []viewdef.SelectNode{
		{
			UnionAll: []viewdef.SelectNode{
				{
					UnionAll: []viewdef.SelectNode{
						{Column: []viewdef.Column{{Name: "a", Path: "id"}}},
						{Column: []viewdef.Column{{Name: "a", Path: "getResourceKey()"}}},
					},
				},
				{Column: []viewdef.Column{{Name: "a", Path: "id"}}},
			},
		},
	}
	combos, err := expand.ExpandUnionAll(top, 0)
	require.NoError(t, err)
	// Two alternatives from the nested unionAll, plus one from the sibling
	// branch: three total, not a cross product across the outer branches
	// (they are alternatives of the same unionAll, not independent axes).
	require.Len(t, combos, 3)
}

func TestExpandUnionAllTwoIndependentUnionAllsCrossMultiply(t *testing.T) {
	top := []viewdef.SelectNode{
		{
			Select: []viewdef.SelectNode{
				{
					UnionAll: []viewdef.SelectNode{
						{Column: []viewdef.Column{{Name: "a", Path: "id"}}},
						{Column: []viewdef.Column{{Name: "a", Path: "getResourceKey()"}}},
					},
				},
				{
					UnionAll: []viewdef.SelectNode{
						{Column: []viewdef.Column{{Name: "b", Path: "id"}}},
						{Column: []viewdef.Column{{Name: "b", Path: "getResourceKey()"}}},
					},
				},
			},
		},
	}
	combos, err := expand.ExpandUnionAll(top, 0)
	require.NoError(t, err)
	assert.Len(t, combos, 4)
}

func TestExpandUnionAllExceedingLimitIsTooComplexError(t *testing.T) {
	top := []viewdef.SelectNode{
		{
			UnionAll: []viewdef.SelectNode{
				{Column: []viewdef.Column{{Name: "a", Path: "id"}}},
				{Column: []viewdef.Column{{Name: "a", Path: "getResourceKey()"}}},
				{Column: []viewdef.Column{{Name: "a", Path: "id"}}},
			},
		},
	}
	_, err := expand.ExpandUnionAll(top, 2)
	require.Error(t, err)
	var compileErr *cerrors.CompileError
	require.ErrorAs(t, err, &compileErr)
	assert.Equal(t, cerrors.KindViewDefinitionTooComplex, compileErr.Kind)
}

func TestExpandUnionAllDefaultLimitAppliesWhenNonPositive(t *testing.T) {
	top := []viewdef.SelectNode{
		{Column: []viewdef.Column{{Name: "pid", Path: "id"}}},
	}
	combos, err := expand.ExpandUnionAll(top, -1)
	require.NoError(t, err)
	require.Len(t, combos, 1)
}
