package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/oksasatya/member-directory/internal/domain/entity"
	"github.com/oksasatya/member-directory/internal/domain/roster"
)

// Init configures the global validator used by Gin's binding: JSON tag names
// in errors plus the zip5, mailpref and relation tags. It panics when a tag
// cannot be registered, since binding would then silently skip it.
func Init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := Register(v); err != nil {
			panic(err)
		}
	}
}

// Register installs the tag name func and directory validators on v.
func Register(v *validator.Validate) error {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	rules := []struct {
		tag string
		fn  validator.Func
	}{
		{"zip5", validZip5},
		{"mailpref", validMailPref},
		{"relation", validRelation},
	}
	for _, r := range rules {
		if err := v.RegisterValidation(r.tag, r.fn); err != nil {
			return fmt.Errorf("register %s: %w", r.tag, err)
		}
	}
	return nil
}

// validZip5 accepts "21044", "21044-1234" and "210441234": five leading digits.
func validZip5(fl validator.FieldLevel) bool {
	s := strings.TrimSpace(fl.Field().String())
	if len(s) < 5 {
		return false
	}
	for _, r := range s[:5] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func validMailPref(fl validator.FieldLevel) bool {
	return entity.MailingPreference(fl.Field().String()).Valid()
}

func validRelation(fl validator.FieldLevel) bool {
	_, ok := roster.ParseRelation(fl.Field().String())
	return ok
}

func relationCodes() []string {
	out := make([]string, 0, 6)
	for _, r := range roster.Relations() {
		out = append(out, string(r))
	}
	return out
}

// ToDetails converts validation/binding errors into a map[field]message suitable for API error.details.
func ToDetails(err error) map[string]string {
	if err == nil {
		return nil
	}

	// Invalid JSON payloads
	var se *json.SyntaxError
	var ute *json.UnmarshalTypeError
	if errors.As(err, &se) || errors.As(err, &ute) {
		return map[string]string{"payload": "invalid json"}
	}

	// Validation errors from validator.v10
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			field := fe.Field()
			out[field] = formatFieldError(fe)
		}
		return out
	}

	// Fallback
	return map[string]string{"payload": "invalid payload"}
}

func formatFieldError(fe validator.FieldError) string {
	tag := fe.Tag()
	param := fe.Param()

	switch tag {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "max":
		if isNumberKind(fe.Kind()) {
			return "must be at most " + param
		}
		return "must be at most " + param + " characters long"
	case "zip5":
		return "must start with a 5 digit zip code"
	case "mailpref":
		return "must be one of: " + string(entity.MailDoNotMail) + ", " + string(entity.MailPostal) + ", " + string(entity.MailEmail)
	case "relation":
		return "must be one of: " + strings.Join(relationCodes(), ", ")
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
