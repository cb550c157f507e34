package domain

import (
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/spf13/cast"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// FieldError describes a single rejected path
type FieldError struct {
	Path    string
	Kind    string // required, cast or the failing validator tag
	Message string
}

// ValidationError is returned when a document does not satisfy the product schema.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, fe.Path+": "+fe.Message)
	}
	return "Product validation failed: " + strings.Join(parts, ", ")
}

func (e *ValidationError) add(fe FieldError) {
	e.Errors = append(e.Errors, fe)
}

func (e *ValidationError) orNil() error {
	if e == nil || len(e.Errors) == 0 {
		return nil
	}
	return e
}

// IsValidationError reports whether err carries a *ValidationError
func IsValidationError(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr)
}

func requiredError(path string) FieldError {
	return FieldError{Path: path, Kind: "required", Message: fmt.Sprintf("Path `%s` is required.", path)}
}

func castError(path, kind string, v interface{}) FieldError {
	return FieldError{
		Path: path,
		Kind: "cast",
		Message: fmt.Sprintf("Cast to %s failed for value %s (type %s) at path \"%s\"",
			kind, describeValue(v), describeType(v), path),
	}
}

func toValidationError(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return errors.Wrap(err, "validate product")
	}
	out := &ValidationError{}
	for _, fe := range verrs {
		path := fe.Field()
		if fe.Tag() == "required" {
			out.add(requiredError(path))
			continue
		}
		out.add(FieldError{
			Path:    path,
			Kind:    fe.Tag(),
			Message: fmt.Sprintf("Validator failed for path `%s` with value `%v`", path, fe.Value()),
		})
	}
	return out.orNil()
}

// ParseProductFields casts a decoded JSON payload into product fields.
// Unknown keys, the identifier and the timestamps are ignored; a key that is
// present but cannot be cast yields a *ValidationError.
func ParseProductFields(raw map[string]interface{}) (ProductFields, error) {
	var (
		f    ProductFields
		verr = &ValidationError{}
	)
	if v, ok := raw["name"]; ok {
		if s, fe := castString("name", v); fe != nil {
			verr.add(*fe)
		} else {
			f.Name = &s
		}
	}
	if v, ok := raw["price"]; ok {
		if n, fe := castNumber("price", v); fe != nil {
			verr.add(*fe)
		} else {
			f.Price = &n
		}
	}
	if v, ok := raw["image"]; ok {
		if s, fe := castString("image", v); fe != nil {
			verr.add(*fe)
		} else {
			f.Image = &s
		}
	}
	return f, verr.orNil()
}

func castString(path string, v interface{}) (string, *FieldError) {
	switch v.(type) {
	case nil:
		fe := requiredError(path)
		return "", &fe
	case map[string]interface{}, []interface{}:
		fe := castError(path, "string", v)
		return "", &fe
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		fe := castError(path, "string", v)
		return "", &fe
	}
	return s, nil
}

func castNumber(path string, v interface{}) (float64, *FieldError) {
	switch tv := v.(type) {
	case nil:
		fe := requiredError(path)
		return 0, &fe
	case string:
		if strings.TrimSpace(tv) == "" {
			fe := requiredError(path)
			return 0, &fe
		}
	case map[string]interface{}, []interface{}:
		fe := castError(path, "Number", v)
		return 0, &fe
	}
	n, err := cast.ToFloat64E(v)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		fe := castError(path, "Number", v)
		return 0, &fe
	}
	return n, nil
}

func describeValue(v interface{}) string {
	if s, ok := v.(string); ok {
		return fmt.Sprintf("%q", s)
	}
	b, err := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}

func describeType(v interface{}) string {
	switch v.(type) {
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64, float32, int, int64, int32:
		return "number"
	case []interface{}:
		return "Array"
	case map[string]interface{}:
		return "Object"
	}
	return fmt.Sprintf("%T", v)
}
