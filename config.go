package sofmssql

import (
	"github.com/go-playground/validator/v10"

	"github.com/aehrc/sof-mssql/internal/cerrors"
	"github.com/aehrc/sof-mssql/internal/expand"
	"github.com/aehrc/sof-mssql/internal/sqlgen"
	"github.com/aehrc/sof-mssql/internal/viewdef"
)

var optionsValidator = validator.New()

// Options configures the source table a ViewDefinition compiles against
// and bounds the unionAll expander. All four identifier
// fields are validated as SQL Server identifiers before anything is
// compiled — an invalid identifier here fails fast with EmitError rather
// than surfacing inside a half-built query.
type Options struct {
	TableName          string `validate:"required,max=128"`
	SchemaName         string `validate:"required,max=128"`
	ResourceIDColumn   string `validate:"required,max=128"`
	ResourceJSONColumn string `validate:"required,max=128"`

	// ExpansionLimit caps the number of branches a unionAll expansion may
	// produce. Zero uses expand.DefaultExpansionLimit.
	ExpansionLimit int
}

// DefaultOptions returns the conventional fhir_resources/dbo defaults.
func DefaultOptions() Options {
	return Options{
		TableName:          "fhir_resources",
		SchemaName:         "dbo",
		ResourceIDColumn:   "id",
		ResourceJSONColumn: "json",
	}
}

// withDefaults fills in zero-valued fields with DefaultOptions' values,
// leaving explicit caller values untouched.
func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.TableName == "" {
		o.TableName = d.TableName
	}
	if o.SchemaName == "" {
		o.SchemaName = d.SchemaName
	}
	if o.ResourceIDColumn == "" {
		o.ResourceIDColumn = d.ResourceIDColumn
	}
	if o.ResourceJSONColumn == "" {
		o.ResourceJSONColumn = d.ResourceJSONColumn
	}
	return o
}

// validate runs the struct-tag pass and then the SQL Server identifier
// check for all four identifier fields.
func (o Options) validate() error {
	if err := optionsValidator.Struct(o); err != nil {
		return cerrors.Errorf(cerrors.StageEmit, cerrors.KindEmitError, "", err, "invalid options: %s", err)
	}
	fields := map[string]string{
		"tableName":          o.TableName,
		"schemaName":         o.SchemaName,
		"resourceIdColumn":   o.ResourceIDColumn,
		"resourceJsonColumn": o.ResourceJSONColumn,
	}
	for field, value := range fields {
		if ok, reason := viewdef.ValidIdentifier(value); !ok {
			return cerrors.Errorf(cerrors.StageEmit, cerrors.KindEmitError, field, nil,
				"%s %q is not a valid SQL Server identifier: %s", field, value, reason)
		}
	}
	return nil
}

func (o Options) tableRef() sqlgen.TableRef {
	return sqlgen.TableRef{
		Schema:     o.SchemaName,
		Table:      o.TableName,
		IDColumn:   o.ResourceIDColumn,
		JSONColumn: o.ResourceJSONColumn,
	}
}

func (o Options) expansionLimit() int {
	if o.ExpansionLimit > 0 {
		return o.ExpansionLimit
	}
	return expand.DefaultExpansionLimit
}
