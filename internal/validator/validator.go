package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	govalidator "github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/PabloGalante/interviewbuddy/internal/domain"
)

var (
	once     sync.Once
	validate *govalidator.Validate
	trans    ut.Translator
	initErr  error
)

func jsonTagName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	return name
}

func newTranslator() ut.Translator {
	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	t, _ := uni.GetTranslator("en")
	return t
}

func instance() *govalidator.Validate {
	once.Do(func() {
		validate = govalidator.New(govalidator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(jsonTagName)
		trans = newTranslator()
		if err := en_translations.RegisterDefaultTranslations(validate, trans); err != nil {
			initErr = fmt.Errorf("registering validation translations: %w", err)
		}
	})
	return validate
}

// ginValidator makes gin's binding use the same validator, tag name and
// translations as ValidateSpec. Request DTOs use `validate` tags.
type ginValidator struct{}

func (ginValidator) ValidateStruct(obj any) error {
	if obj == nil {
		return nil
	}

	v := reflect.ValueOf(obj)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.Struct:
		return instance().Struct(obj)
	case reflect.Slice, reflect.Array:
		for i := 0; i < v.Len(); i++ {
			if err := (ginValidator{}).ValidateStruct(v.Index(i).Interface()); err != nil {
				return err
			}
		}
	}
	return nil
}

func (ginValidator) Engine() any {
	return instance()
}

// Setup makes gin's binding engine report JSON field names with English
// messages. Call once during startup, before serving requests.
func Setup() error {
	instance()
	if initErr != nil {
		return initErr
	}
	binding.Validator = ginValidator{}
	return nil
}

// TranslateErrors maps a validation error to field -> readable message.
// Any other error ends up under "detail".
func TranslateErrors(err error) map[string]string {
	instance()
	fields := make(map[string]string)

	var ve govalidator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			fields[fieldPath(fe)] = fe.Translate(trans)
		}
		return fields
	}

	fields["detail"] = err.Error()
	return fields
}

// ValidateSpec checks an InterviewSpec and returns a *domain.ValidationError
// describing every invalid field.
func ValidateSpec(spec domain.InterviewSpec) error {
	if err := instance().Struct(spec); err != nil {
		return &domain.ValidationError{Fields: TranslateErrors(err)}
	}
	return nil
}

// fieldPath drops the struct name so "InterviewSpec.techStack[0]" reads "techStack[0]".
func fieldPath(fe govalidator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}
