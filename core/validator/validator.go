package validator

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// Validator validates structs against `validate` tags
type Validator interface {
	// Struct validates a struct
	Struct(s any) error

	// StructCtx validates a struct with a context
	StructCtx(ctx context.Context, s any) error

	// GetValidator returns the underlying validator instance
	GetValidator() *validator.Validate
}

// Validate is the global validator instance
var (
	Validate Validator
	once     sync.Once
)

func init() {
	once.Do(func() {
		Validate = New()
	})
}

type validatorImpl struct {
	validator *validator.Validate
	trans     ut.Translator
}

// New creates a new validator instance with English translations registered
func New() Validator {
	v := &validatorImpl{
		validator: validator.New(),
	}

	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	if trans, found := uni.GetTranslator("en"); found {
		v.trans = trans
		_ = en_translations.RegisterDefaultTranslations(v.validator, trans)
	}

	return v
}

func (v *validatorImpl) Struct(s any) error {
	if s == nil {
		return errors.New("validation target cannot be nil")
	}
	return v.translateError(v.validator.Struct(s))
}

func (v *validatorImpl) StructCtx(ctx context.Context, s any) error {
	if s == nil {
		return errors.New("validation target cannot be nil")
	}
	return v.translateError(v.validator.StructCtx(ctx, s))
}

func (v *validatorImpl) GetValidator() *validator.Validate {
	return v.validator
}

// translateError flattens validator.ValidationErrors into a single readable error
func (v *validatorImpl) translateError(err error) error {
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok || v.trans == nil {
		return err
	}

	messages := make([]string, 0, len(validationErrors))
	for _, fe := range validationErrors {
		messages = append(messages, fe.Translate(v.trans))
	}

	return errors.New(strings.Join(messages, "; "))
}
