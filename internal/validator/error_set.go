package validator

import (
	"fmt"
	"strings"
)

// NonField is the ErrorSet key for failures that concern the input as a whole.
const NonField = "__all__"

// Entry is the serialized form of one error in an ErrorSet.
type Entry struct {
	Param   string `json:"param,omitempty"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// ErrorSet accumulates validation failures keyed by field name, preserving the
// order in which fields first failed.
type ErrorSet struct {
	order  []string
	errors map[string][]*ValidationError
}

// NewErrorSet creates an empty ErrorSet.
func NewErrorSet() *ErrorSet {
	return &ErrorSet{errors: make(map[string][]*ValidationError)}
}

// Add records every validation error carried by err under field.
func (s *ErrorSet) Add(field string, err error) {
	if err == nil {
		return
	}
	if _, ok := s.errors[field]; !ok {
		s.order = append(s.order, field)
	}
	s.errors[field] = append(s.errors[field], unwrap(err)...)
}

// Has reports whether field has at least one error.
func (s *ErrorSet) Has(field string) bool {
	return len(s.errors[field]) > 0
}

// Get returns the errors recorded for field.
func (s *ErrorSet) Get(field string) []*ValidationError {
	return s.errors[field]
}

// Fields returns the failing fields in insertion order.
func (s *ErrorSet) Fields() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Len returns the total number of errors.
func (s *ErrorSet) Len() int {
	n := 0
	for _, errs := range s.errors {
		n += len(errs)
	}
	return n
}

// Empty reports whether no error was recorded.
func (s *ErrorSet) Empty() bool {
	return s == nil || len(s.order) == 0
}

// Entries flattens the set for serialization. Non-field errors carry no param.
func (s *ErrorSet) Entries() []Entry {
	out := make([]Entry, 0, s.Len())
	for _, field := range s.order {
		param := field
		if field == NonField {
			param = ""
		}
		for _, e := range s.errors[field] {
			out = append(out, Entry{Param: param, Message: e.Message, Code: e.Code})
		}
	}
	return out
}

func (s *ErrorSet) Error() string {
	parts := make([]string, 0, len(s.order))
	for _, field := range s.order {
		msgs := make([]string, 0, len(s.errors[field]))
		for _, e := range s.errors[field] {
			msgs = append(msgs, e.Message)
		}
		parts = append(parts, fmt.Sprintf("%s: %s", field, strings.Join(msgs, " ")))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
