package sqlgen

import (
	"fmt"
	"strings"

	"github.com/aehrc/sof-mssql/internal/cerrors"
	"github.com/aehrc/sof-mssql/internal/expand"
	"github.com/aehrc/sof-mssql/internal/fhirpath"
	"github.com/aehrc/sof-mssql/internal/viewdef"
)

// Column is one projected output column, returned to the caller alongside
// the emitted SQL text.
type Column struct {
	Name        string
	Type        string
	Description string
	Tag         []viewdef.Tag
}

// BranchResult is one fully assembled SELECT for a single SelectCombination,
// not yet joined with its sibling branches.
type BranchResult struct {
	SQL     string
	Columns []Column
}

// BuildBranch lowers one SelectCombination into a complete SELECT: the FROM
// scaffold, the column list, and the WHERE clause built from the top-level
// where[] plus the mandatory resource_type filter.
func BuildBranch(combo expand.SelectCombination, resourceType string, wheres []viewdef.Where, constants map[string]any, table TableRef) (*BranchResult, error) {
	rootCtx := fhirpath.Root("r", table.IDColumn, table.JSONColumn)
	rootCtx = rootCtx.WithConstants(constants)

	var from strings.Builder
	fmt.Fprintf(&from, "FROM %s.%s AS r", Quote(table.Schema), Quote(table.Table))

	state := &branchState{from: &from, aliasGen: &aliasGen{}}
	if err := buildBranchNodes(combo.Nodes, rootCtx, state); err != nil {
		return nil, err
	}
	if len(state.columns) == 0 {
		return nil, cerrors.Errorf(cerrors.StageEmit, cerrors.KindEmitError, "/select", nil,
			"select branch produces no columns")
	}

	seen := make(map[string]bool, len(state.columns))
	for _, c := range state.columns {
		if seen[c.Name] {
			return nil, cerrors.Errorf(cerrors.StageEmit, cerrors.KindEmitError, "/select", nil,
				"duplicate column name %q within the same select branch", c.Name)
		}
		seen[c.Name] = true
	}

	whereClause, err := BuildWhereConjunction(resourceType, wheres, rootCtx)
	if err != nil {
		return nil, err
	}

	selectList := make([]string, len(state.columns))
	columns := make([]Column, len(state.columns))
	for i, c := range state.columns {
		selectList[i] = fmt.Sprintf("%s AS %s", c.SQL, Quote(c.Name))
		columns[i] = Column{Name: c.Name, Type: c.Type, Description: c.Description, Tag: c.Tag}
	}

	sql := fmt.Sprintf("SELECT %s %s WHERE %s", strings.Join(selectList, ", "), from.String(), whereClause)
	return &BranchResult{SQL: sql, Columns: columns}, nil
}

// AssembleUnion joins every branch's SELECT with UNION ALL in source order
// after checking every branch produced the same ordered column-name list.
func AssembleUnion(branches []*BranchResult) (string, []Column, error) {
	if len(branches) == 0 {
		return "", nil, cerrors.Errorf(cerrors.StageEmit, cerrors.KindEmitError, "/select", nil,
			"no select branches to assemble")
	}

	names := make([][]string, len(branches))
	for i, br := range branches {
		colNames := make([]string, len(br.Columns))
		for j, c := range br.Columns {
			colNames[j] = c.Name
		}
		names[i] = colNames
	}
	if err := viewdef.ValidateBranchColumns(names); err != nil {
		return "", nil, err
	}

	parts := make([]string, len(branches))
	for i, br := range branches {
		parts[i] = br.SQL
	}

	return strings.Join(parts, "\nUNION ALL\n"), branches[0].Columns, nil
}

// EmitCreateView wraps an assembled query as CREATE VIEW <name> AS <select>.
// viewName must already have passed viewdef.ValidIdentifier.
func EmitCreateView(viewName, sql string) string {
	return fmt.Sprintf("CREATE VIEW %s AS\n%s", Quote(viewName), sql)
}

// EmitSelectInto wraps an assembled query as a materialising SELECT INTO.
// tableName must already have passed viewdef.ValidIdentifier.
func EmitSelectInto(tableName, sql string) string {
	return fmt.Sprintf("SELECT * INTO %s FROM (\n%s\n) AS t", Quote(tableName), sql)
}
