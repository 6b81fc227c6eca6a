package sofmssql

import (
	"github.com/aehrc/sof-mssql/internal/expand"
	"github.com/aehrc/sof-mssql/internal/sqlgen"
	"github.com/aehrc/sof-mssql/internal/viewdef"
)

// Model is the parsed, validated ViewDefinition the compiler works from.
type Model = viewdef.ViewDefinition

// Column describes one projected output column.
type Column = sqlgen.Column

// Tag is descriptive per-column metadata carried through from column.tag[].
type Tag = viewdef.Tag

// Result is the outcome of Transpile: the assembled SQL text and the
// columns it projects, in order.
type Result struct {
	SQL     string
	Columns []Column
}

// ParseViewDefinition parses and validates a ViewDefinition JSON document
// without compiling it to SQL. Two successive calls on the same bytes
// return structurally equal models.
func ParseViewDefinition(raw []byte) (*Model, error) {
	vd, err := viewdef.Parse(raw)
	if err != nil {
		return nil, err
	}
	if err := viewdef.Validate(vd); err != nil {
		return nil, err
	}
	return vd, nil
}

// Transpile compiles a ViewDefinition into a single T-SQL SELECT (or a
// UNION ALL of SELECTs, one per unionAll branch). For any valid V,
// Transpile(V) is byte-for-byte identical across calls.
func Transpile(raw []byte, opts Options) (*Result, error) {
	vd, err := ParseViewDefinition(raw)
	if err != nil {
		return nil, err
	}
	return transpileModel(vd, opts)
}

func transpileModel(vd *Model, opts Options) (*Result, error) {
	opts = opts.withDefaults()
	if err := opts.validate(); err != nil {
		return nil, err
	}

	combos, err := expand.ExpandUnionAll(vd.Select, opts.expansionLimit())
	if err != nil {
		return nil, err
	}

	constants := make(map[string]any, len(vd.Constant))
	for _, c := range vd.Constant {
		constants[c.Name] = c.Value
	}

	table := opts.tableRef()
	branches := make([]*sqlgen.BranchResult, len(combos))
	for i, combo := range combos {
		br, err := sqlgen.BuildBranch(combo, vd.Resource, vd.Where, constants, table)
		if err != nil {
			return nil, err
		}
		branches[i] = br
	}

	sql, columns, err := sqlgen.AssembleUnion(branches)
	if err != nil {
		return nil, err
	}

	return &Result{SQL: sql, Columns: columns}, nil
}

// CreateView compiles a ViewDefinition and wraps it as
// CREATE VIEW <viewName> AS <select>. viewName is validated as a SQL
// Server identifier before anything is emitted.
func CreateView(raw []byte, viewName string, opts Options) (string, error) {
	if ok, reason := viewdef.ValidIdentifier(viewName); !ok {
		return "", emitIdentifierError("viewName", viewName, reason)
	}
	result, err := Transpile(raw, opts)
	if err != nil {
		return "", err
	}
	return sqlgen.EmitCreateView(viewName, result.SQL), nil
}

// CreateTable compiles a ViewDefinition and wraps it as a materialising
// SELECT INTO <tableName>. tableName is validated as a SQL Server
// identifier before anything is emitted.
func CreateTable(raw []byte, tableName string, opts Options) (string, error) {
	if ok, reason := viewdef.ValidIdentifier(tableName); !ok {
		return "", emitIdentifierError("tableName", tableName, reason)
	}
	result, err := Transpile(raw, opts)
	if err != nil {
		return "", err
	}
	return sqlgen.EmitSelectInto(tableName, result.SQL), nil
}

func emitIdentifierError(field, value, reason string) error {
	return Errorf(StageEmit, KindEmitError, field, nil, "%s %q is not a valid SQL Server identifier: %s", field, value, reason)
}
