package validator

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// Validator validates structs and reports translated messages
type Validator interface {
	Struct(s any) error
	StructCtx(ctx context.Context, s any) error
}

// Option configures a validator
type Option func(*validatorImpl) error

// WithTagName sets the struct tag read by the validator (default "validate")
func WithTagName(tagName string) Option {
	return func(v *validatorImpl) error {
		v.validator.SetTagName(tagName)
		return nil
	}
}

// WithRule registers a custom rule and its English message. The message may use {0} for the field name.
func WithRule(tag string, fn validator.Func, message string) Option {
	return func(v *validatorImpl) error {
		if err := v.validator.RegisterValidation(tag, fn); err != nil {
			return err
		}
		return v.validator.RegisterTranslation(tag, v.trans,
			func(trans ut.Translator) error {
				return trans.Add(tag, message, true)
			},
			func(trans ut.Translator, fe validator.FieldError) string {
				msg, err := trans.T(tag, fe.Field())
				if err != nil {
					return fe.Error()
				}
				return msg
			},
		)
	}
}

type validatorImpl struct {
	validator *validator.Validate
	trans     ut.Translator
}

// New creates a validator with English messages
func New(opts ...Option) (Validator, error) {
	locale := en.New()
	trans, _ := ut.New(locale, locale).GetTranslator("en")

	v := &validatorImpl{
		validator: validator.New(validator.WithRequiredStructEnabled()),
		trans:     trans,
	}
	if err := en_translations.RegisterDefaultTranslations(v.validator, trans); err != nil {
		return nil, err
	}

	for _, opt := range opts {
		if err := opt(v); err != nil {
			return nil, err
		}
	}
	return v, nil
}

func (v *validatorImpl) Struct(s any) error {
	return v.StructCtx(context.Background(), s)
}

func (v *validatorImpl) StructCtx(ctx context.Context, s any) error {
	if s == nil {
		return errors.New("validation target cannot be nil")
	}
	return v.translate(v.validator.StructCtx(ctx, s))
}

func (v *validatorImpl) translate(err error) error {
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fields := make([]FieldError, 0, len(verrs))
	messages := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msg := fe.Translate(v.trans)
		fields = append(fields, FieldError{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Value:   fe.Value(),
			Message: msg,
		})
		messages = append(messages, msg)
	}

	return &ValidationErrors{
		Fields:  fields,
		message: strings.Join(messages, "; "),
	}
}
