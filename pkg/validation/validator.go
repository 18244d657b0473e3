package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/oksasatya/go-books-api/pkg/apperror"
)

var once sync.Once

// Init configures the global validator used by Gin's binding.
// - Uses JSON tag names in errors.
// - Registers alias tags for the schema rules of this API.
func Init() {
	once.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			v.RegisterTagNameFunc(func(fld reflect.StructField) string {
				name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
				if name == "-" {
					return ""
				}
				return name
			})
			v.RegisterAlias("pwd", "min=8")
			v.RegisterAlias("bookstatus", "oneof='PUBLISHED' 'NOT PUBLISHED'")
		}
	})
}

// Struct validates v with the same engine gin binding uses.
func Struct(v any) error {
	Init()
	if err := binding.Validator.ValidateStruct(v); err != nil {
		return FromBindError(err)
	}
	return nil
}

// ErrTrailingData reports extra content after the JSON body.
var ErrTrailingData = errors.New("unexpected data after JSON body")

// FromBindError converts binding/validation errors into an operational
// validation error carrying every violated constraint.
func FromBindError(err error) error {
	if err == nil {
		return nil
	}

	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		return apperror.New(apperror.KindTooLarge, fmt.Sprintf("Request body too large (limit %d bytes)", mbe.Limit))
	}
	if errors.Is(err, io.EOF) {
		return apperror.Validation("Request body is required")
	}

	var se *json.SyntaxError
	if errors.As(err, &se) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, ErrTrailingData) {
		return apperror.Validation("Invalid JSON payload")
	}
	var ute *json.UnmarshalTypeError
	if errors.As(err, &ute) {
		v := apperror.Violation{Field: ute.Field, Message: "must be a " + ute.Type.String()}
		return apperror.Validation(invalidMessage([]apperror.Violation{v}), v)
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := ToViolations(verrs)
		return apperror.Validation(invalidMessage(out), out...)
	}

	// Custom UnmarshalJSON failures (dates) land here.
	return apperror.Validation("Invalid input data. " + err.Error())
}

// ToViolations converts validator errors into field/message pairs, in struct
// field order.
func ToViolations(verrs validator.ValidationErrors) []apperror.Violation {
	out := make([]apperror.Violation, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, apperror.Violation{Field: fe.Field(), Message: formatFieldError(fe)})
	}
	return out
}

func invalidMessage(vs []apperror.Violation) string {
	parts := make([]string, 0, len(vs))
	for _, v := range vs {
		parts = append(parts, v.Field+" "+v.Message)
	}
	return "Invalid input data. " + strings.Join(parts, ". ")
}

func formatFieldError(fe validator.FieldError) string {
	tag := fe.Tag()
	param := fe.Param()
	kind := fe.Kind()

	switch tag {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "url":
		return "must be a valid URL"
	case "uuid", "uuid4":
		return "must be a valid UUID"
	case "len":
		return fmt.Sprintf("must be exactly %s characters long", param)
	case "min":
		if isNumberKind(kind) {
			return "must be at least " + param
		}
		if kind == reflect.Slice {
			return "must contain at least " + param + " items"
		}
		return "must be at least " + param + " characters long"
	case "max":
		if isNumberKind(kind) {
			return "must be at most " + param
		}
		if kind == reflect.Slice {
			return "must contain at most " + param + " items"
		}
		return "must be at most " + param + " characters long"
	case "gte":
		return "must be greater than or equal to " + param
	case "lte":
		return "must be less than or equal to " + param
	case "eqfield":
		return "must match " + lowerFirst(param)
	case "oneof":
		return "must be one of: " + strings.Join(splitParams(param), ", ")
	case "bookstatus":
		return "is either: PUBLISHED or NOT PUBLISHED"
	case "pwd":
		return "must be at least 8 characters long"
	case "dive":
		return "array validation failed"
	default:
		if param != "" {
			return fmt.Sprintf("validation failed for '%s' with parameter '%s'", tag, param)
		}
		return fmt.Sprintf("validation failed for '%s'", tag)
	}
}

func isNumberKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}

// splitParams understands validator's quoted oneof params: 'A B' 'C'.
func splitParams(p string) []string {
	if p == "" {
		return nil
	}
	if strings.Contains(p, "'") {
		var out []string
		for _, s := range strings.Split(p, "'") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return strings.Fields(p)
}

// eqfield reports the Go field name; JSON names here are lowerCamel.
func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
