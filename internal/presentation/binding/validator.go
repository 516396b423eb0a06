package binding

import (
	"errors"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/hilthontt/encore/internal/infrastructure/json"
)

type DefaultValidator struct {
	once       sync.Once
	validate   *validator.Validate
	translator ut.Translator
}

// Validator is shared by every handler.
var Validator = &DefaultValidator{}

func (v *DefaultValidator) ValidateStruct(obj any) error {
	if kindOfData(obj) == reflect.Struct {
		v.lazyinit()
		if err := v.validate.Struct(obj); err != nil {
			return err
		}
	}
	return nil
}

func (v *DefaultValidator) Translator() ut.Translator {
	v.lazyinit()
	return v.translator
}

func (v *DefaultValidator) lazyinit() {
	v.once.Do(func() {
		v.validate = validator.New(validator.WithRequiredStructEnabled())
		v.validate.SetTagName("binding")
		v.validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})

		en := en.New()
		uni := ut.New(en, en)
		v.translator, _ = uni.GetTranslator("en")

		_ = en_translations.RegisterDefaultTranslations(v.validate, v.translator)

		v.registerCustomTranslations()
	})
}

func (v *DefaultValidator) registerTranslation(tag, text string, withParam bool) {
	_ = v.validate.RegisterTranslation(tag, v.translator, func(ut ut.Translator) error {
		return ut.Add(tag, text, true)
	}, func(ut ut.Translator, fe validator.FieldError) string {
		if withParam {
			t, _ := ut.T(tag, fe.Field(), fe.Param())
			return t
		}
		t, _ := ut.T(tag, fe.Field())
		return t
	})
}

func (v *DefaultValidator) registerCustomTranslations() {
	v.registerTranslation("required", "{0} is required", false)
	v.registerTranslation("max", "{0} must be at most {1}", true)
	v.registerTranslation("min", "{0} must be at least {1}", true)
	v.registerTranslation("len", "{0} must be exactly {1} characters", true)
	v.registerTranslation("email", "{0} must be a valid email address", false)
	v.registerTranslation("url", "{0} must be a valid URL", false)
	v.registerTranslation("http_url", "{0} must be a valid http(s) URL", false)
	v.registerTranslation("numeric", "{0} must be a valid numeric value", false)
	v.registerTranslation("oneof", "{0} must be one of [{1}]", true)
	v.registerTranslation("uuid", "{0} must be a valid UUID", false)
	v.registerTranslation("unique", "{0} must not contain duplicates", false)
}

func TranslateValidationErrors(err error) []string {
	var messages []string

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		trans := Validator.Translator()
		for _, e := range validationErrs {
			messages = append(messages, e.Translate(trans))
		}
	}

	return messages
}

func TranslateValidationError(err error) string {
	messages := TranslateValidationErrors(err)
	if len(messages) > 0 {
		return strings.Join(messages, "; ")
	}
	return err.Error()
}

// BindJSON decodes the body into obj and validates its binding tags. On
// failure the 400 response is already written and false is returned.
func BindJSON(w http.ResponseWriter, r *http.Request, obj any) bool {
	if err := json.Read(w, r, obj); err != nil {
		json.WriteBadRequestError(w, err.Error())
		return false
	}
	if err := Validator.ValidateStruct(obj); err != nil {
		json.WriteBadRequestError(w, TranslateValidationError(err))
		return false
	}
	return true
}

func kindOfData(data any) reflect.Kind {
	value := reflect.ValueOf(data)
	valueType := value.Kind()

	if valueType == reflect.Pointer {
		valueType = value.Elem().Kind()
	}

	return valueType
}
