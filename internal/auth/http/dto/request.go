// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	validation "github.com/jellydator/validation"

	customValidation "github.com/svit-erp/portalgate/internal/validation"
)

// Login field bounds. The password cap keeps a single request from buying unbounded hashing work.
const (
	MaxUsernameLength = 255
	MaxPasswordLength = 1024
)

// LoginRequest contains the credentials posted by the login form.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"` //nolint:gosec // request field, never logged
}

// Validate checks that both credentials are present and within bounds.
func (r *LoginRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Username,
			validation.Required,
			customValidation.NotBlank,
			validation.RuneLength(1, MaxUsernameLength),
		),
		validation.Field(&r.Password,
			validation.Required,
			validation.Length(1, MaxPasswordLength),
		),
	)
}
