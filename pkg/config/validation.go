package config

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// validate is the singleton validator instance
var validate = validator.New()

// Validate validates the configuration using struct tags and custom rules.
//
// Log level normalization happens in ApplyDefaults; validation accepts both
// cases.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return formatValidationError(err)
	}

	return validateCustomRules(cfg)
}

// validateCustomRules checks rules that cannot be expressed in tags.
func validateCustomRules(cfg *Config) error {
	if len(cfg.Drivers) == 0 {
		return fmt.Errorf("drivers: at least one driver must be configured")
	}

	for name := range cfg.Drivers {
		if name == "" {
			return fmt.Errorf("drivers: driver name cannot be empty")
		}
	}

	if cfg.DefaultDriver != "" {
		if _, ok := cfg.Drivers[cfg.DefaultDriver]; !ok {
			return fmt.Errorf("default_driver: %q is not a configured driver", cfg.DefaultDriver)
		}
	}

	for name, drv := range cfg.Drivers {
		if drv.RateLimit.Burst > 0 && drv.RateLimit.RequestsPerSecond == 0 {
			return fmt.Errorf("drivers.%s.rate_limit: burst is set but requests_per_second is 0", name)
		}
	}

	return nil
}

// formatValidationError converts validator errors into user-friendly messages.
func formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
		e := validationErrs[0]
		return fmt.Errorf("%s: validation failed on '%s' tag (value: %v)",
			e.Namespace(), e.Tag(), e.Value())
	}
	return err
}
