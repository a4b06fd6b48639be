package ref

import "fmt"

// UnknownFieldError reports the first parameter that remained empty after
// a strict resolve. It is a user-input error: the caller did not supply
// enough information to identify the resource.
type UnknownFieldError struct {
	Path  string // original text the reference was parsed from
	Field string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("unknown field [%s] in [%s]", e.Field, e.Path)
}
