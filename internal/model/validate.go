package model

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// FieldError describes one failed field constraint.
type FieldError struct {
	Field string
	Rule  string
	Param string
}

func (f FieldError) String() string {
	if f.Param != "" {
		return fmt.Sprintf("%s must satisfy %s=%s", f.Field, f.Rule, f.Param)
	}
	return fmt.Sprintf("%s must satisfy %s", f.Field, f.Rule)
}

// ValidationError lists every failed constraint of a record.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.String()
	}
	return strings.Join(parts, "; ")
}

// ValidateBookmark checks title, url and description constraints.
// The url must also be absolute with a host.
func ValidateBookmark(b Bookmark) error {
	if err := structErr(validatorInstance().Struct(b)); err != nil {
		return err
	}
	if _, err := HostOf(b.URL); err != nil {
		return &ValidationError{Fields: []FieldError{{Field: "url", Rule: "absolute"}}}
	}
	return nil
}

// ValidateFolder checks folder title constraints.
func ValidateFolder(f Folder) error {
	return structErr(validatorInstance().Struct(f))
}

func structErr(err error) error {
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	out := &ValidationError{}
	for _, fe := range fieldErrs {
		out.Fields = append(out.Fields, FieldError{
			Field: strings.ToLower(fe.Field()),
			Rule:  fe.Tag(),
			Param: fe.Param(),
		})
	}
	return out
}

// ValidateBookmarkTitle checks a title on its own, as used by rename.
func ValidateBookmarkTitle(title string) error {
	err := validatorInstance().Var(title, "required,max=255")
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	out := &ValidationError{}
	for _, fe := range fieldErrs {
		out.Fields = append(out.Fields, FieldError{Field: "title", Rule: fe.Tag(), Param: fe.Param()})
	}
	return out
}
