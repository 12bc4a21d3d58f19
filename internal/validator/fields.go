package validator

import (
	"fmt"
	"strings"
)

// Messages shared by the field cleaners.
const (
	MsgRequired = "This field is required."
	MsgInvalid  = "Enter a valid value."
)

// ErrRequired is returned by cleaners for a missing required value.
var ErrRequired = NewError(MsgRequired, CodeRequired)

// CharField cleans a free-text value.
type CharField struct {
	Required  bool
	MaxLength int
}

// Clean returns the trimmed text of v. Numbers and booleans are accepted in
// their JSON form; objects and arrays are rejected.
func (f CharField) Clean(v Value) (string, error) {
	var s string
	switch v.Kind() {
	case KindAbsent, KindNull:
	case KindString, KindNumber, KindBool:
		s = strings.TrimSpace(v.Text())
	default:
		return "", NewError(MsgInvalid, CodeInvalid)
	}
	if s == "" {
		if f.Required {
			return "", ErrRequired
		}
		return "", nil
	}
	if f.MaxLength > 0 && len([]rune(s)) > f.MaxLength {
		return "", NewError(
			fmt.Sprintf("Ensure this value has at most %d characters (it has %d).", f.MaxLength, len([]rune(s))),
			"max_length",
		)
	}
	return s, nil
}

// ChoiceField cleans a value that must be one of a fixed set.
type ChoiceField struct {
	Choices  []string
	Optional bool
}

// Clean returns the selected choice.
func (f ChoiceField) Clean(v Value) (string, error) {
	s, err := CharField{Required: !f.Optional}.Clean(v)
	if err != nil || s == "" {
		return s, err
	}
	for _, c := range f.Choices {
		if c == s {
			return s, nil
		}
	}
	return "", NewError(
		fmt.Sprintf("Select a valid choice. %s is not one of the available choices.", s),
		CodeInvalidChoice,
	)
}

// Required accepts any value that is not empty.
func Required(v Value) error {
	if v.IsEmpty() {
		return ErrRequired
	}
	return nil
}
