package validator

import (
	stdErrors "errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/johnquangdev/meeting-portal/errors"
)

var (
	mobileRe = regexp.MustCompile(`^\d{10}$`)
	dateRe   = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	clockRe  = regexp.MustCompile(`^\d{2}:\d{2}$`)
)

// CustomValidator implements echo.Validator using go-playground/validator.
// Failures come back as a VALIDATION AppError keyed by json field name.
type CustomValidator struct {
	v *validator.Validate
}

// New creates a new CustomValidator instance
func New() *CustomValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("mobile", func(fl validator.FieldLevel) bool {
		return mobileRe.MatchString(strings.TrimSpace(fl.Field().String()))
	})
	_ = v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		return dateRe.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("clock", func(fl validator.FieldLevel) bool {
		return clockRe.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return &CustomValidator{v: v}
}

// Validate performs struct validation
func (cv *CustomValidator) Validate(i interface{}) error {
	err := cv.v.Struct(i)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !stdErrors.As(err, &fieldErrs) {
		return apperrors.ErrInternal(err)
	}

	fields := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		if _, seen := fields[fe.Field()]; seen {
			continue
		}
		fields[fe.Field()] = message(fe)
	}
	return apperrors.ErrValidation("Please correct the highlighted fields.", fields)
}

func message(fe validator.FieldError) string {
	label := humanize(fe.Field())
	switch fe.Tag() {
	case "required", "notblank":
		return fmt.Sprintf("%s is required", label)
	case "email":
		return "Enter a valid email address"
	case "mobile":
		return "Mobile number must be exactly 10 digits"
	case "isodate":
		return fmt.Sprintf("%s must be a date (YYYY-MM-DD)", label)
	case "clock":
		return fmt.Sprintf("%s must be a time (HH:MM)", label)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", label, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", label)
	}
}

// humanize turns "homeDistrict" into "Home district"
func humanize(field string) string {
	var b strings.Builder
	for i, r := range field {
		if i > 0 && r >= 'A' && r <= 'Z' {
			b.WriteByte(' ')
			b.WriteRune(r + ('a' - 'A'))
			continue
		}
		if i == 0 && r >= 'a' && r <= 'z' {
			b.WriteRune(r - ('a' - 'A'))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
