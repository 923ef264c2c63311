// Package validator checks tagged structs and reports failures as a
// field to message map ready for the response envelope.
package validator

// Validator validates a struct value.
type Validator interface {
	Validate(data any) error
}
