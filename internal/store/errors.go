package store

import (
	"fmt"
	"sort"
	"strings"
)

// Validation messages follow the wording the API has always returned.
const (
	MsgBlank = "can't be blank"
	MsgTaken = "has already been taken"
)

// ValidationErrors maps a field name to the list of violation messages for
// that field. It is returned by CafeStore.Create and rendered by the handler
// as the 422 response body.
type ValidationErrors map[string][]string

func (v ValidationErrors) Error() string {
	fields := make([]string, 0, len(v))
	for field := range v {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(v))
	for _, field := range fields {
		parts = append(parts, fmt.Sprintf("%s %s", field, strings.Join(v[field], ", ")))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (v ValidationErrors) add(field, message string) {
	v[field] = append(v[field], message)
}
