package fhirpath_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aehrc/sof-mssql/internal/fhirpath"
)

func lowerExpr(t *testing.T, expr string, ctx *fhirpath.BindingContext) string {
	t.Helper()
	node, err := fhirpath.Parse(expr)
	require.NoError(t, err)
	sql, err := fhirpath.Lower(node, ctx)
	require.NoError(t, err)
	return sql
}

func TestLowerBareID(t *testing.T) {
	ctx := fhirpath.Root("r", "id", "json")
	assert.Equal(t, "r.id", lowerExpr(t, "id", ctx))
}

func TestLowerKnownArrayFieldGetsImplicitIndex(t *testing.T) {
	ctx := fhirpath.Root("r", "id", "json")
	assert.Equal(t, "JSON_VALUE(r.json, '$.name[0].family')", lowerExpr(t, "name.family", ctx))
}

func TestLowerExplicitIndexOverridesImplicit(t *testing.T) {
	ctx := fhirpath.Root("r", "id", "json")
	assert.Equal(t, "JSON_VALUE(r.json, '$.name[1].family')", lowerExpr(t, "name[1].family", ctx))
}

func TestLowerUnknownArrayFieldGetsNoImplicitIndex(t *testing.T) {
	ctx := fhirpath.Root("r", "id", "json")
	assert.Equal(t, "JSON_VALUE(r.json, '$.meta.versionId')", lowerExpr(t, "meta.versionId", ctx))
}

func TestLowerExistsAndEmpty(t *testing.T) {
	ctx := fhirpath.Root("r", "id", "json")
	assert.Equal(t, "(JSON_VALUE(r.json, '$.birthDate') IS NOT NULL)", lowerExpr(t, "birthDate.exists()", ctx))
	assert.Equal(t, "(JSON_VALUE(r.json, '$.birthDate') IS NULL)", lowerExpr(t, "birthDate.empty()", ctx))
}

func TestLowerCount(t *testing.T) {
	ctx := fhirpath.Root("r", "id", "json")
	assert.Equal(t, "(SELECT COUNT(*) FROM OPENJSON(r.json, '$.name'))", lowerExpr(t, "name.count()", ctx))
}

func TestLowerJoin(t *testing.T) {
	ctx := fhirpath.Root("r", "id", "json")
	assert.Equal(t,
		"(SELECT STRING_AGG(value, ' ') FROM OPENJSON(r.json, '$.name.given'))",
		lowerExpr(t, "name.given.join(' ')", ctx))
}

func TestLowerGetResourceKey(t *testing.T) {
	ctx := fhirpath.Root("r", "id", "json")
	assert.Equal(t, "r.id", lowerExpr(t, "getResourceKey()", ctx))
}

func TestLowerGetReferenceKeyWithoutTypeFilter(t *testing.T) {
	ctx := fhirpath.Root("r", "id", "json")
	got := lowerExpr(t, "subject.getReferenceKey()", ctx)
	assert.Contains(t, got, "SUBSTRING(")
	assert.Contains(t, got, "CHARINDEX('/',")
	assert.Contains(t, got, "$.subject.reference")
}

func TestLowerGetReferenceKeyWithTypeFilter(t *testing.T) {
	ctx := fhirpath.Root("r", "id", "json")
	got := lowerExpr(t, "subject.getReferenceKey('Patient')", ctx)
	assert.Contains(t, got, "CASE WHEN")
	assert.Contains(t, got, "LIKE 'Patient/%'")
}

func TestLowerWhereOutsideArrayHopIsUnsupported(t *testing.T) {
	ctx := fhirpath.Root("r", "id", "json")
	node, err := fhirpath.Parse("name.where(use = 'official')")
	require.NoError(t, err)
	_, err = fhirpath.Lower(node, ctx)
	require.Error(t, err)
	var unsupported *fhirpath.UnsupportedError
	require.ErrorAs(t, err, &unsupported)
}

func TestLowerExplicitlyUnsupportedConstructs(t *testing.T) {
	ctx := fhirpath.Root("r", "id", "json")
	for _, expr := range []string{"value.as(Quantity)", "value.ofType(Quantity)", "iif(true, 1, 0)"} {
		node, err := fhirpath.Parse(expr)
		require.NoError(t, err, expr)
		_, err = fhirpath.Lower(node, ctx)
		require.Error(t, err, expr)
		var unsupported *fhirpath.UnsupportedError
		require.ErrorAs(t, err, &unsupported, expr)
	}
}

func TestLowerBooleanAndComparisonOperators(t *testing.T) {
	ctx := fhirpath.Root("r", "id", "json")
	assert.Equal(t, "(r.id = '1')", lowerExpr(t, "id = '1'", ctx))
	assert.Equal(t, "1", lowerExpr(t, "true", ctx))
	assert.Equal(t, "0", lowerExpr(t, "false", ctx))
}

func TestLowerConstantReference(t *testing.T) {
	ctx := fhirpath.Root("r", "id", "json").WithConstants(map[string]any{
		"orgId": "123",
	})
	assert.Equal(t, "'123'", lowerExpr(t, "%orgId", ctx))
}

func TestLowerUndefinedConstantIsUnsupported(t *testing.T) {
	ctx := fhirpath.Root("r", "id", "json")
	node, err := fhirpath.Parse("%missing")
	require.NoError(t, err)
	_, err = fhirpath.Lower(node, ctx)
	require.Error(t, err)
	var unsupported *fhirpath.UnsupportedError
	require.ErrorAs(t, err, &unsupported)
}

func TestLowerResourceAndContextConstants(t *testing.T) {
	ctx := fhirpath.Root("r", "id", "json")
	assert.Equal(t, "r.json", lowerExpr(t, "%resource", ctx))
	assert.Equal(t, "r.json", lowerExpr(t, "%context", ctx))
}

func TestPathSegmentsRejectsNonPathExpression(t *testing.T) {
	node, err := fhirpath.Parse("1 + 2")
	require.NoError(t, err)
	_, err = fhirpath.PathSegments(node)
	require.Error(t, err)
}
