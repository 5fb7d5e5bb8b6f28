package domain

import (
	"fmt"
	"regexp"
	"strings"
)

var numberPattern = regexp.MustCompile(`^[0-9]+$`)

type Field struct {
	Name  string
	Value string
}

// RequireFields fails on the first field whose value is blank.
func RequireFields(fields ...Field) error {
	for _, f := range fields {
		if strings.TrimSpace(f.Value) == "" {
			return fmt.Errorf("%w: please fill all fields (%s is empty)", ErrValidation, f.Name)
		}
	}
	return nil
}

func ValidateNumber(number string) error {
	if !numberPattern.MatchString(number) {
		return fmt.Errorf("%w: the number must contain only digits", ErrValidation)
	}
	return nil
}
