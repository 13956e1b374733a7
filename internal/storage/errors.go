package storage

import (
	"fmt"
	"strings"
)

// NotFoundError reports that no readable document exists for a model, in
// either the primary or the fallback format.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no readable file at '%s'", e.Path)
}

// ParseError reports a syntactically malformed document.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed document '%s'", e.Path)
}

func (e *ParseError) Unwrap() error { return e.Err }

// FieldError is one schema violation inside a document.
type FieldError struct {
	Path    string
	Message string
}

// ValidationError reports a well-formed document whose content does not
// match the model schema.
type ValidationError struct {
	Path   string
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Path+": "+f.Message)
	}
	return fmt.Sprintf("document '%s' failed validation: %s", e.Path, strings.Join(msgs, "; "))
}
