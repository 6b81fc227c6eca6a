package fhirpath

// knownArrayFields is the fixed set of FHIR element names that the compiler
// treats as repeating (array-valued) when they appear as a bare path segment
// with no explicit index. This is a literal, not a general FHIR schema
// lookup — the set is domain-specific and may be incomplete, so it is kept
// as a plain configuration constant rather than derived from a schema.
var knownArrayFields = map[string]bool{
	"name":          true,
	"telecom":       true,
	"address":       true,
	"contact":       true,
	"identifier":    true,
	"communication": true,
	"link":          true,
}

// IsKnownArrayField reports whether name is a member of the fixed
// known-array-field set used for implicit [0] insertion.
func IsKnownArrayField(name string) bool {
	return knownArrayFields[name]
}

// BindingContext is the local scope under which a FHIRPath AST node is
// lowered to SQL. A fresh BindingContext is created on descent
// into a forEach/forEachOrNull or nested select and discarded on return;
// none of its fields are mutated in place, matching the "binding contexts
// are created on descent and discarded on return" lifecycle rule.
type BindingContext struct {
	// ResourceAlias is the SQL alias bound to the root resource table row
	// (normally "r").
	ResourceAlias string

	// JSONRef is the SQL expression yielding the JSON document or
	// sub-document currently in scope. It starts as "<alias>.<jsonColumn>"
	// and rebinds to "<apply-alias>.value" under a forEach.
	JSONRef string

	// RootJSONRef is always the root resource's JSON reference, regardless
	// of how deeply nested the current scope is. %resource and %context
	// resolve against this, never against JSONRef.
	RootJSONRef string

	// IDRef is the SQL expression yielding the root resource's id column.
	// It never rebinds under a forEach: getResourceKey() always names the
	// root row. A bare "id" path resolves to IDRef only while JSONRef is
	// still the root reference; inside a forEach it reads the element's id.
	IDRef string

	// Constants holds the ViewDefinition's constant[] entries, name -> JSON
	// scalar value, consulted when lowering a ConstantRef.
	Constants map[string]any

	// ParentPathArrays is the ordered list of array hops already unrolled
	// via APPLY in enclosing scopes; used by the path analyser to avoid
	// re-emitting a hop that a forEach already materialised.
	ParentPathArrays []string
}

// Root builds the BindingContext a branch's outermost lowering starts from,
// bound to the configured id/JSON column names for the source table.
func Root(resourceAlias, idColumn, jsonColumn string) *BindingContext {
	jsonRef := resourceAlias + "." + jsonColumn
	return &BindingContext{
		ResourceAlias: resourceAlias,
		JSONRef:       jsonRef,
		RootJSONRef:   jsonRef,
		IDRef:         resourceAlias + "." + idColumn,
		Constants:     map[string]any{},
	}
}

// WithJSONRef returns a child context rebound to a new current JSON
// reference (e.g. "<apply-alias>.value" under a forEach), preserving
// everything else.
func (c *BindingContext) WithJSONRef(jsonRef string, arrayHop string) *BindingContext {
	child := *c
	child.JSONRef = jsonRef
	if arrayHop != "" {
		child.ParentPathArrays = append(append([]string{}, c.ParentPathArrays...), arrayHop)
	}
	return &child
}

// WithConstants returns a child context with the given constants merged in,
// overriding any name collision from the parent.
func (c *BindingContext) WithConstants(extra map[string]any) *BindingContext {
	merged := make(map[string]any, len(c.Constants)+len(extra))
	for k, v := range c.Constants {
		merged[k] = v
	}
	for k, v := range extra {
		merged[k] = v
	}
	child := *c
	child.Constants = merged
	return &child
}
