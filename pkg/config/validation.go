package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// validate is the singleton validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Validate validates the configuration using struct tags and custom rules.
//
// Note: Log level normalization is handled in ApplyDefaults, not here.
// Validation accepts both uppercase and lowercase log levels.
//
// Returns an error describing validation failures.
func Validate(cfg *AppConfig) error {
	if err := validate.Struct(cfg); err != nil {
		return formatValidationError(err)
	}

	if err := validateCustomRules(cfg); err != nil {
		return err
	}

	return nil
}

// validateCustomRules performs custom validation beyond struct tags.
func validateCustomRules(cfg *AppConfig) error {
	catalogs := make(map[string]bool)
	for i, catalog := range cfg.Catalogs {
		if catalogs[catalog.Name] {
			return fmt.Errorf("catalogs[%d]: duplicate catalog name %q", i, catalog.Name)
		}
		catalogs[catalog.Name] = true

		filesets := make(map[string]bool)
		for j, fileset := range catalog.Filesets {
			if filesets[fileset.Name] {
				return fmt.Errorf("catalogs[%d].filesets[%d]: duplicate fileset name %q", i, j, fileset.Name)
			}
			filesets[fileset.Name] = true
		}
	}

	if cfg.Filesystem.RateLimit > 0 && cfg.Filesystem.RateBurst == 0 {
		return fmt.Errorf("filesystem: rate_burst must be positive when rate_limit is set")
	}

	return nil
}

// formatValidationError converts validator errors into user-friendly messages.
func formatValidationError(err error) error {
	if validationErrs, ok := err.(validator.ValidationErrors); ok {
		if len(validationErrs) > 0 {
			e := validationErrs[0]
			return fmt.Errorf("%s: validation failed on '%s' tag (value: %v)",
				e.Namespace(), e.Tag(), e.Value())
		}
	}
	return err
}
