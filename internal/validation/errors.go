// Package validation holds the field error type shared by form validators.
package validation

import (
	"sort"
	"strings"
)

// Errors maps form fields to the reason they were rejected.
type Errors map[string]string

func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+e[f])
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

// Err returns e as an error, or nil when no field was rejected.
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}
