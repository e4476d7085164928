package validation

import (
	"errors"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"

	"github.com/noah-isme/school-portal-api/internal/models"
	appErrors "github.com/noah-isme/school-portal-api/pkg/errors"
)

const (
	roleTag             = "role"
	attendanceStatusTag = "attendance_status"
	notBlankTag         = "notblank"
)

// Validator wraps a validator instance with English messages and the portal's custom tags.
type Validator struct {
	validate   *validator.Validate
	translator ut.Translator
}

// New builds a Validator. Field names in messages follow the json tags.
func New() *Validator {
	validate := validator.New()

	locale := en.New()
	translator, _ := ut.New(locale, locale).GetTranslator("en")
	_ = enTranslations.RegisterDefaultTranslations(validate, translator)

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterValidation(roleTag, func(fl validator.FieldLevel) bool {
		return models.Role(fl.Field().String()).Valid()
	})
	_ = validate.RegisterValidation(attendanceStatusTag, func(fl validator.FieldLevel) bool {
		return models.AttendanceStatus(fl.Field().String()).Valid()
	})
	_ = validate.RegisterValidation(notBlankTag, func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})

	v := &Validator{validate: validate, translator: translator}
	for _, tag := range []string{roleTag, attendanceStatusTag, notBlankTag} {
		_ = validate.RegisterTranslation(tag, translator, func(ut.Translator) error { return nil }, translateCustom)
	}
	return v
}

func translateCustom(_ ut.Translator, fe validator.FieldError) string {
	switch fe.Tag() {
	case roleTag:
		return fe.Field() + " must be a known role"
	case attendanceStatusTag:
		return fe.Field() + " must be one of present, absent, late, left_early, excused"
	case notBlankTag:
		return fe.Field() + " cannot be blank"
	default:
		return fe.Error()
	}
}

// Struct validates s and returns a VALIDATION_ERROR whose message lists every failing field.
func (v *Validator) Struct(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}

	messages := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		messages = append(messages, fe.Translate(v.translator))
	}
	sort.Strings(messages)
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, strings.Join(messages, "; "))
}
