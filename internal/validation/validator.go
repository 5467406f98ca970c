package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// EmailFormatTag is the struct tag name bound to ValidEmail
const EmailFormatTag = "customer_email"

type violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// PayloadError aggregates per-field violations of a request payload
type PayloadError struct {
	violations []violation
}

func (e *PayloadError) Error() string {
	buff := bytes.NewBufferString("")

	for _, err := range e.violations {
		buff.WriteString(err.Message)
		buff.WriteString("\n")
	}

	return buff.String()
}

func (e *PayloadError) Violation(v violation) {
	e.violations = append(e.violations, v)
}

func (e *PayloadError) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Errors []violation `json:"errors"`
	}{
		Errors: e.violations,
	})
}

// EchoValidator adapts go-playground validator to echo's Validator interface
type EchoValidator struct {
	validator  *validator.Validate
	translator ut.Translator
}

func Echo(validate *validator.Validate, translator ut.Translator) (*EchoValidator, error) {
	err := validate.RegisterValidation(EmailFormatTag, func(fl validator.FieldLevel) bool {
		return ValidEmail(fl.Field().String())
	})
	if err != nil {
		return nil, err
	}

	return &EchoValidator{
		validator:  validate,
		translator: translator,
	}, nil
}

func (v *EchoValidator) Validate(i any) error {
	err := v.validator.Struct(i)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		return v.payloadError(ve)
	}

	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}

func (v *EchoValidator) payloadError(ve validator.ValidationErrors) error {
	pldErr := &PayloadError{violations: make([]violation, 0)}
	for _, e := range ve {
		pldErr.Violation(violation{
			Field:   e.Field(),
			Message: e.Translate(v.translator),
		})
	}
	return pldErr
}
