package data

import (
	_ "embed"
)

// ReferenceYAML is the default reference catalogue: units, gases,
// classifications and emission factors.
//
//go:embed reference.yaml
var ReferenceYAML []byte
