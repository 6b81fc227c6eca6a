package viewdef

import (
	"bytes"
	"encoding/json"

	"github.com/aehrc/sof-mssql/internal/cerrors"
)

// Parse decodes a ViewDefinition JSON document into the typed model. It does
// not validate the result beyond what the JSON decoder itself enforces
// (the shape must at least unmarshal) — structural and constraint checks
// belong to Validate.
func Parse(raw []byte) (*ViewDefinition, error) {
	var vd ViewDefinition
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&vd); err != nil {
		return nil, cerrors.Errorf(cerrors.StageViewDefinition, cerrors.KindViewDefinitionInvalid, "",
			err, "malformed ViewDefinition JSON: %s", err)
	}
	normaliseConstants(&vd)
	return &vd, nil
}

// normaliseConstants converts json.Number constant values (produced by
// UseNumber, which keeps integers from losing precision) down to float64 so
// downstream consumers (the FHIRPath lowerer) see a single numeric type.
func normaliseConstants(vd *ViewDefinition) {
	for i, c := range vd.Constant {
		if num, ok := c.Value.(json.Number); ok {
			if f, err := num.Float64(); err == nil {
				vd.Constant[i].Value = f
			} else {
				vd.Constant[i].Value = num.String()
			}
		}
	}
}
