package viewdef

import (
	"fmt"
	"strings"

	"github.com/aehrc/sof-mssql/internal/cerrors"
	"github.com/go-playground/validator/v10"
)

var structValidator = validator.New()

// Validate checks a parsed ViewDefinition's struct-tag shape (resourceType,
// status, required fields) via go-playground/validator,
// then the constraints a struct tag can't express — R4 resource membership,
// non-empty where[].path, forEach/forEachOrNull exclusivity, column
// identifier legality, FHIR primitive type names, and column-name
// uniqueness within one select node's own column[].
//
// Validate only checks the un-expanded tree. Branch-level checks run after
// expansion in internal/sqlgen: BuildBranch rejects a duplicate column name
// within one branch, and AssembleUnion calls ValidateBranchColumns for
// column-list equality across branches.
func Validate(vd *ViewDefinition) error {
	if err := structValidator.Struct(vd); err != nil {
		return cerrors.Errorf(cerrors.StageViewDefinition, cerrors.KindViewDefinitionInvalid, "/",
			err, "%s", describeValidationError(err))
	}

	if !IsR4Resource(vd.Resource) {
		return cerrors.Errorf(cerrors.StageViewDefinition, cerrors.KindViewDefinitionInvalid, "/resource",
			nil, "%q is not a recognised FHIR R4 resource type", vd.Resource)
	}

	for i, w := range vd.Where {
		if strings.TrimSpace(w.Path) == "" {
			return cerrors.Errorf(cerrors.StageViewDefinition, cerrors.KindViewDefinitionInvalid,
				fmt.Sprintf("/where/%d/path", i), nil, "where[].path must not be empty")
		}
	}

	if err := validateSelectTree(vd.Select, "/select"); err != nil {
		return err
	}

	return nil
}

func validateSelectTree(nodes []SelectNode, pointer string) error {
	for i, n := range nodes {
		nodePointer := fmt.Sprintf("%s/%d", pointer, i)

		if n.ForEach != "" && n.ForEachOrNull != "" {
			return cerrors.Errorf(cerrors.StageViewDefinition, cerrors.KindViewDefinitionInvalid, nodePointer,
				nil, "forEach and forEachOrNull are mutually exclusive")
		}

		seen := map[string]bool{}
		for ci, col := range n.Column {
			colPointer := fmt.Sprintf("%s/column/%d", nodePointer, ci)
			if err := validateColumn(col, colPointer); err != nil {
				return err
			}
			if seen[col.Name] {
				return cerrors.Errorf(cerrors.StageViewDefinition, cerrors.KindViewDefinitionInvalid, colPointer,
					nil, "duplicate column name %q within the same select node", col.Name)
			}
			seen[col.Name] = true
		}

		if err := validateSelectTree(n.Select, nodePointer+"/select"); err != nil {
			return err
		}
		if err := validateSelectTree(n.UnionAll, nodePointer+"/unionAll"); err != nil {
			return err
		}
	}
	return nil
}

func validateColumn(col Column, pointer string) error {
	if ok, reason := ValidIdentifier(col.Name); !ok {
		return cerrors.Errorf(cerrors.StageViewDefinition, cerrors.KindViewDefinitionInvalid, pointer+"/name",
			nil, "column name %q is not a valid SQL Server identifier: %s", col.Name, reason)
	}
	if col.Type != "" && !IsFHIRPrimitive(col.Type) {
		return cerrors.Errorf(cerrors.StageViewDefinition, cerrors.KindViewDefinitionInvalid, pointer+"/type",
			nil, "column type %q is not a recognised FHIR primitive", col.Type)
	}
	return nil
}

// ValidateBranchColumns checks that every unionAll branch shares an
// identical ordered column-name list, once the select tree has been
// expanded into concrete branches. columnsByBranch[i]
// is the ordered column-name list produced by branch i.
func ValidateBranchColumns(columnsByBranch [][]string) error {
	if len(columnsByBranch) < 2 {
		return nil
	}
	want := columnsByBranch[0]
	for i := 1; i < len(columnsByBranch); i++ {
		got := columnsByBranch[i]
		if !equalStrings(want, got) {
			return cerrors.Errorf(cerrors.StageViewDefinition, cerrors.KindViewDefinitionInvalid,
				fmt.Sprintf("/select (branch %d)", i), nil,
				"unionAll branch %d produces columns %v, branch 0 produces %v", i, got, want)
		}
	}
	return nil
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func describeValidationError(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return err.Error()
	}
	fields := make([]string, len(verrs))
	for i, fe := range verrs {
		fields[i] = fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag())
	}
	return strings.Join(fields, "; ")
}
