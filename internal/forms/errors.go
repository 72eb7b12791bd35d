package forms

import "errors"

var (
	ErrFieldIndexOutOfRange = errors.New("field index out of range")
	ErrInvalidFieldType     = errors.New("invalid field type")
	ErrReadOnly             = errors.New("widget is read-only")
	ErrNoInput              = errors.New("field has no input")
)
