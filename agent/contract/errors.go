package contract

import "errors"

var (
	ErrEmptyMessage = errors.New("message is empty")
	ErrModelInvoke  = errors.New("model invoke failed")
	ErrValidation   = errors.New("validation failed")
	ErrBOMNotLoaded = errors.New("bill of materials not loaded")
)
