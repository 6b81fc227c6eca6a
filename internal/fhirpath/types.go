package fhirpath

// sqlTypeByFHIRType maps a FHIR primitive type name to the T-SQL type used
// for an explicit CAST. Unknown or unset types fall back to
// NVARCHAR(MAX), the widest safe representation for a JSON_VALUE scalar.
var sqlTypeByFHIRType = map[string]string{
	"id":       "NVARCHAR(MAX)",
	"string":   "NVARCHAR(MAX)",
	"code":     "NVARCHAR(MAX)",
	"uri":      "NVARCHAR(MAX)",
	"url":      "NVARCHAR(MAX)",
	"canonical": "NVARCHAR(MAX)",
	"markdown": "NVARCHAR(MAX)",
	"oid":      "NVARCHAR(MAX)",
	"uuid":     "NVARCHAR(MAX)",

	"boolean": "BIT",

	"integer":     "INT",
	"positiveInt": "INT",
	"unsignedInt": "INT",

	"integer64": "BIGINT",

	"decimal": "DECIMAL(18,6)",

	"date":     "DATETIME2",
	"dateTime": "DATETIME2",
	"instant":  "DATETIME2",

	"time": "TIME",

	"base64Binary": "VARBINARY(MAX)",
}

// MapSQLType returns the T-SQL type that a Column.type value casts to. An
// empty or unrecognised fhirType maps to NVARCHAR(MAX), mirroring the
// "unknown -> NVARCHAR(MAX)" row of the type table.
func MapSQLType(fhirType string) string {
	if fhirType == "" {
		return "NVARCHAR(MAX)"
	}
	if sqlType, ok := sqlTypeByFHIRType[fhirType]; ok {
		return sqlType
	}
	return "NVARCHAR(MAX)"
}

// IsBooleanType reports whether a Column.type casts via the three-valued
// CASE WHEN form rather than a plain CAST.
func IsBooleanType(fhirType string) bool {
	return fhirType == "boolean"
}

// NeedsCast reports whether a scalar expression typed as fhirType requires
// an explicit wrap at all; NVARCHAR(MAX) values coming out of JSON_VALUE are
// already the right shape and are left uncast.
func NeedsCast(fhirType string) bool {
	if fhirType == "" {
		return false
	}
	return MapSQLType(fhirType) != "NVARCHAR(MAX)"
}
