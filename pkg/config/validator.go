package config

import (
	"net/url"

	"github.com/go-playground/validator/v10"
)

// RegisterCustomValidators installs the config-specific tags.
func RegisterCustomValidators(v *validator.Validate) error {
	return v.RegisterValidation("origin", validateOrigin)
}

// validateOrigin accepts "*" or an absolute http(s) origin without a path.
func validateOrigin(fl validator.FieldLevel) bool {
	origin := fl.Field().String()
	if origin == "*" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return (u.Path == "" || u.Path == "/") && u.RawQuery == ""
}
