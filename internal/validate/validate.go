// Package validate evaluates the declarative rule sets (struct tags) of the
// request payloads and reports field-level violations.
package validate

import (
	"errors"
	"fmt"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"reflect"
	"strings"
)

type Violation struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Param   string `json:"param,omitempty"`
	Message string `json:"message"`
}

type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("objectid", func(fl validator.FieldLevel) bool {
		return primitive.IsValidObjectID(fl.Field().String())
	})
	return &Validator{v: v}
}

// Check returns nil when payload passes its rule set. payload must be a
// struct or a pointer to one.
func (x *Validator) Check(payload any) ([]Violation, error) {
	err := x.v.Struct(payload)
	if err == nil {
		return nil, nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return nil, err
	}
	out := make([]Violation, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		field := fieldPath(fe.Namespace())
		out = append(out, Violation{
			Field:   field,
			Rule:    fe.Tag(),
			Param:   fe.Param(),
			Message: message(field, fe),
		})
	}
	return out, nil
}

// fieldPath drops the root struct name: "OrderCreate.items[0].quantity"
// becomes "items[0].quantity".
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func message(field string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "objectid":
		return field + " must be a valid id"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "min", "max":
		return minMax(field, fe)
	default:
		return fmt.Sprintf("%s failed %s", field, fe.Tag())
	}
}

func minMax(field string, fe validator.FieldError) string {
	bound := "at least"
	if fe.Tag() == "max" {
		bound = "at most"
	}
	switch fe.Kind() {
	case reflect.String:
		return fmt.Sprintf("%s must be %s %s characters", field, bound, fe.Param())
	case reflect.Slice:
		return fmt.Sprintf("%s must contain %s %s entries", field, bound, fe.Param())
	default:
		return fmt.Sprintf("%s must be %s %s", field, bound, fe.Param())
	}
}
