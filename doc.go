// Package sofmssql compiles SQL-on-FHIR ViewDefinition documents into T-SQL
// queries for Microsoft SQL Server. The compiler is single-threaded and
// purely functional: every exported entry point here takes its input by
// value (or a fresh byte slice) and returns either a complete result or an
// error — it performs no I/O, holds no state between calls, and is safe to
// call concurrently from multiple goroutines provided each call owns its
// own arguments.
//
// Command-line and NDJSON-loading frontends are external collaborators
// and are not part of this module; only the library API in
// api.go, config.go, and errors.go is exported.
package sofmssql
