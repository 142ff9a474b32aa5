package record

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return Required(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	return v
}

// Required reports whether a text value satisfies the required-field rule:
// it must contain something other than whitespace.
func Required(value string) bool {
	return strings.TrimSpace(value) != ""
}

// RequiredTags reports whether a tag selection satisfies the required-field
// rule: at least one non-blank tag ID.
func RequiredTags(tags []string) bool {
	for _, t := range tags {
		if Required(t) {
			return true
		}
	}
	return false
}

// FieldError describes one invalid field.
type FieldError struct {
	Field   string // "name", "description" or "tags"
	Message string
}

// ValidationError lists every invalid field of a record.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Message
	}
	return strings.Join(msgs, "; ")
}

// Has reports whether the named field is among the failures.
func (e *ValidationError) Has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

// Validate checks the caller-side rules for a record about to be written:
// name and description must be non-blank and at least one tag must be set.
// Stores never call this; it is the caller's job.
func Validate(r Record) error {
	err := validate.Struct(r)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	out := &ValidationError{}
	seen := make(map[string]bool)
	for _, fe := range verrs {
		field := fieldName(fe)
		if seen[field] {
			continue
		}
		seen[field] = true
		out.Fields = append(out.Fields, FieldError{
			Field:   field,
			Message: fmt.Sprintf("%s is required", fieldLabel(field)),
		})
	}
	return out
}

// fieldName maps a validator error to a lower-case field name. Errors on
// individual tags ("Tags[0]") collapse into "tags".
func fieldName(fe validator.FieldError) string {
	name := fe.StructField()
	if i := strings.IndexByte(name, '['); i >= 0 {
		name = name[:i]
	}
	return strings.ToLower(name)
}

func fieldLabel(field string) string {
	switch field {
	case "name":
		return "Name"
	case "description":
		return "Description"
	case "tags":
		return "Tags"
	default:
		return field
	}
}
