package fhirpath

// supportedFunctions is the invocation table this package knows how to
// lower, keyed by name with the expected argument count. A function absent
// from this table, or called through an alias it doesn't recognise,
// surfaces as UnsupportedError at lowering time rather than at parse time,
// keeping syntax errors and unsupported constructs distinct.
var supportedFunctions = map[string]int{
	"exists":          0,
	"empty":           0,
	"first":           0,
	"count":           0,
	"where":           1,
	"join":            1,
	"getResourceKey":  0,
	"getReferenceKey": -1, // 0 or 1: optional resourceType filter argument
}

// explicitlyUnsupported names constructs this compiler recognises but
// deliberately does not lower, so the error message can be specific rather than
// a generic "unknown function".
var explicitlyUnsupported = map[string]bool{
	"as":     true,
	"ofType": true,
	"iif":    true,
}

func isSupportedFunction(name string, argc int) bool {
	want, ok := supportedFunctions[name]
	if !ok {
		return false
	}
	if want == -1 {
		return argc == 0 || argc == 1
	}
	return want == argc
}
