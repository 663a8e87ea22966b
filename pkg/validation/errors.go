package validation

import "errors"

// Programmer errors. Validation findings are never reported through these.
var (
	ErrNilDefinition        = errors.New("workflow definition cannot be nil")
	ErrNilStandardTypes     = errors.New("standard types cannot be nil")
	ErrNilPropertyType      = errors.New("property type cannot be nil")
	ErrUnknownPrimitiveType = errors.New("unknown property primitive type")
)
