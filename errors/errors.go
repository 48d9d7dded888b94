package errors

import "errors"

// Library-wide error messages are here.
var (
	ErrImageEmpty = errors.New("image is empty")
)
