package emissions

// constError is an immutable error type for sentinel errors.
type constError string

func (e constError) Error() string { return string(e) }

// Sentinel errors, comparable with errors.Is.
var (
	// ErrIncompatibleUnits means two units do not share a standard unit.
	ErrIncompatibleUnits = constError("incompatible units of measure")

	// ErrNoLinearConversion means a unit declares no scale to its standard unit.
	ErrNoLinearConversion = constError("unit has no linear conversion")

	// ErrMissingUnit means a conversion was requested without a unit.
	ErrMissingUnit = constError("missing unit of measure")
)
