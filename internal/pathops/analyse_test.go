package pathops_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aehrc/sof-mssql/internal/fhirpath"
	"github.com/aehrc/sof-mssql/internal/pathops"
)

func TestAnalysePlainPathNoArrayHops(t *testing.T) {
	a, err := pathops.Analyse("gender")
	require.NoError(t, err)
	assert.Equal(t, "gender", a.BasePath)
	assert.Empty(t, a.ArrayHops)
	assert.False(t, a.UseFirst)
	assert.Nil(t, a.WherePredicate)
	assert.Nil(t, a.ExplicitIndex)
}

func TestAnalysePathWithKnownArrayField(t *testing.T) {
	a, err := pathops.Analyse("name.family")
	require.NoError(t, err)
	assert.Equal(t, "name.family", a.BasePath)
	require.Len(t, a.ArrayHops, 1)
	assert.Equal(t, "name", a.ArrayHops[0].Name)
	assert.Equal(t, "name", a.ArrayHops[0].PathSoFar)
	assert.Nil(t, a.ArrayHops[0].ExplicitIndex)
}

func TestAnalysePeelsTrailingFirst(t *testing.T) {
	a, err := pathops.Analyse("name.first()")
	require.NoError(t, err)
	assert.True(t, a.UseFirst)
	assert.Equal(t, "name", a.BasePath)
	assert.Equal(t, "name", a.RewrittenPath)
}

func TestAnalysePeelsTrailingWhere(t *testing.T) {
	a, err := pathops.Analyse("telecom.where(use = 'official')")
	require.NoError(t, err)
	require.NotNil(t, a.WherePredicate)
	assert.Equal(t, "telecom", a.BasePath)

	bin, ok := a.WherePredicate.(fhirpath.Binary)
	require.True(t, ok)
	assert.Equal(t, fhirpath.OpEq, bin.Op)
}

func TestAnalysePeelsWhereThenFirst(t *testing.T) {
	a, err := pathops.Analyse("telecom.where(use = 'official').first()")
	require.NoError(t, err)
	assert.True(t, a.UseFirst)
	require.NotNil(t, a.WherePredicate)
	assert.Equal(t, "telecom", a.BasePath)
}

func TestAnalyseOnlyOuterWhereIsPeeled(t *testing.T) {
	// Only the outermost where() is peeled; a second, nested where() left
	// behind in the base is no longer a plain member chain, so it surfaces
	// as a malformed path rather than being silently peeled too.
	_, err := pathops.Analyse("name.where(x = 1).where(y = 2)")
	require.Error(t, err)
}

func TestAnalyseExplicitIndex(t *testing.T) {
	a, err := pathops.Analyse("name[1].family")
	require.NoError(t, err)
	require.Len(t, a.ArrayHops, 1)
	require.NotNil(t, a.ArrayHops[0].ExplicitIndex)
	assert.Equal(t, 1, *a.ArrayHops[0].ExplicitIndex)
	// The [1] sits on "name", not on the final segment "family", so the
	// trailing-index field stays unset.
	assert.Nil(t, a.ExplicitIndex)
}

func TestAnalyseMultipleArrayHopsInPathOrder(t *testing.T) {
	a, err := pathops.Analyse("contact.name.family")
	require.NoError(t, err)
	require.Len(t, a.ArrayHops, 2)
	assert.Equal(t, "contact", a.ArrayHops[0].Name)
	assert.Equal(t, "contact", a.ArrayHops[0].PathSoFar)
	assert.Equal(t, "name", a.ArrayHops[1].Name)
	assert.Equal(t, "contact.name", a.ArrayHops[1].PathSoFar)
}

func TestAnalyseMalformedPathIsError(t *testing.T) {
	_, err := pathops.Analyse("name.where(use = 'official")
	require.Error(t, err)
}

func TestAnalyseNonPathExpressionIsError(t *testing.T) {
	_, err := pathops.Analyse("1 + 2")
	require.Error(t, err)
}
