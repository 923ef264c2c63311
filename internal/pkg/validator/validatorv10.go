package validator

import (
	"encoding/json"
	"errors"
	"reflect"
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
)

var (
	rePassword = regexp.MustCompile(`^.{8,72}$`)
	reOTP      = regexp.MustCompile(`^[0-9]{6}$`)
)

// ErrTranslatorNotFound is returned when the english translator is missing.
var ErrTranslatorNotFound = errors.New("validator: translator not found")

// FieldErrors maps a field name to its translated message.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	if len(fe) == 0 {
		return "validation error"
	}
	b, _ := json.Marshal(map[string]string(fe)) //nolint:errchkjson // map of strings
	return string(b)
}

// Values returns the underlying map.
func (fe FieldErrors) Values() map[string]string {
	return fe
}

// V10Validator is backed by go-playground/validator.
type V10Validator struct {
	validate   *validator.Validate
	translator ut.Translator
}

// NewV10Validator registers english messages plus the password and otp rules.
func NewV10Validator() (*V10Validator, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(fieldName)

	enLocale := en.New()
	trans, ok := ut.New(enLocale, enLocale).GetTranslator("en")
	if !ok {
		return nil, ErrTranslatorNotFound
	}
	if err := enTranslations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	rules := []struct {
		tag, msg string
		re       *regexp.Regexp
	}{
		{"password", "{0} must be 8-72 characters", rePassword},
		{"otp", "{0} must be 6 digits", reOTP},
	}
	for _, r := range rules {
		if err := registerRegexRule(validate, trans, r.tag, r.msg, r.re); err != nil {
			return nil, err
		}
	}

	return &V10Validator{validate: validate, translator: trans}, nil
}

func registerRegexRule(v *validator.Validate, trans ut.Translator, tag, msg string, re *regexp.Regexp) error {
	err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
		s, ok := fl.Field().Interface().(string)
		return ok && re.MatchString(s)
	})
	if err != nil {
		return err
	}

	return v.RegisterTranslation(tag, trans,
		func(t ut.Translator) error { return t.Add(tag, msg, false) },
		func(t ut.Translator, fe validator.FieldError) string {
			out, err := t.T(fe.Tag(), fe.Field())
			if err != nil {
				return fe.Error()
			}
			return out
		},
	)
}

// Validate returns FieldErrors when data breaks a rule.
func (v *V10Validator) Validate(data any) error {
	err := v.validate.Struct(data)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := make(FieldErrors, len(verrs))
	for _, fe := range verrs {
		out[fe.Field()] = fe.Translate(v.translator)
	}
	return out
}

// fieldName prefers the json tag so messages use wire names, falling back to
// snake_case of the Go field name.
func fieldName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	switch name {
	case "-":
		return ""
	case "":
		return toSnake(f.Name)
	default:
		return name
	}
}

func toSnake(s string) string {
	runes := []rune(s)
	var b strings.Builder
	b.Grow(len(s) + 4)

	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				b.WriteByte('_')
			}
		}
		b.WriteRune(unicode.ToLower(r))
	}

	return b.String()
}
