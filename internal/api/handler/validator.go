package handler

import (
	"github.com/campus-issues/issue-tracker/internal/pkg/validate"
)

// echoValidator adapts the shared validator so Echo can call c.Validate(req).
// Failures carry domain.ErrValidation and render as 400.
type echoValidator struct {
	v *validate.Validator
}

// NewValidator returns an echoValidator ready to be assigned to echo.Echo.Validator.
func NewValidator() *echoValidator {
	return &echoValidator{v: validate.New()}
}

// Validate satisfies the echo.Validator interface.
func (ev *echoValidator) Validate(i any) error {
	return ev.v.Struct(i)
}
