package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var validate = validator.New()

// ValidateConfig checks the field rules and then the requirements of the
// current environment
func ValidateConfig(cfg *Config) error {
	var problems []ValidationError

	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		for _, fe := range verrs {
			problems = append(problems, ValidationError{
				Field:   fe.Field(),
				Message: fmt.Sprintf("failed %q rule (value %q)", fe.Tag(), fmt.Sprint(fe.Value())),
			})
		}
	}

	switch cfg.Environment {
	case Production:
		if cfg.DBDriver == "postgres" && cfg.DBPassword == "" {
			problems = append(problems, ValidationError{Field: "DBPassword", Message: "db_password secret is required"})
		}
		if cfg.DBDriver == "sqlite" {
			problems = append(problems, ValidationError{Field: "DBDriver", Message: "sqlite is not supported in production"})
		}
	case CI:
		if cfg.DBDriver == "postgres" && cfg.DBPassword == "" {
			problems = append(problems, ValidationError{Field: "DBPassword", Message: "TEST_DB_PASSWORD environment variable is required in CI environment"})
		}
	}

	if len(problems) == 0 {
		return nil
	}
	lines := make([]string, len(problems))
	for i, p := range problems {
		lines[i] = p.Error()
	}
	return fmt.Errorf("configuration validation failed:\n%s", strings.Join(lines, "\n"))
}
