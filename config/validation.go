package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateConfig checks if the configuration meets the requirements for the current environment
func ValidateConfig(cfg *Config) error {
	env := GetEnvironment()

	var problems []ValidationError

	if cfg.JWTSecret == "" && env != Test {
		problems = append(problems, ValidationError{Field: "JWT_SECRET", Message: "is required"})
	}

	switch cfg.DBDriver {
	case "postgres":
		for _, f := range []struct{ name, value string }{
			{"DB_HOST", cfg.DBHost},
			{"DB_PORT", cfg.DBPort},
			{"DB_USER", cfg.DBUser},
			{"DB_NAME", cfg.DBName},
		} {
			if f.value == "" {
				problems = append(problems, ValidationError{Field: f.name, Message: "is required for the postgres driver"})
			}
		}
		if cfg.DBPassword == "" && (env == CI || env == Production) {
			problems = append(problems, ValidationError{Field: "DB_PASSWORD", Message: "is required in " + string(env)})
		}
	case "sqlite":
		if cfg.SQLitePath == "" {
			problems = append(problems, ValidationError{Field: "SQLITE_PATH", Message: "is required for the sqlite driver"})
		}
	default:
		problems = append(problems, ValidationError{Field: "DB_DRIVER", Message: fmt.Sprintf("unsupported driver %q", cfg.DBDriver)})
	}

	if len(cfg.CORSAllowedOrigins) == 0 {
		problems = append(problems, ValidationError{Field: "CORS_ALLOWED_ORIGINS", Message: "must list at least one origin"})
	}

	if cfg.FoodSearchURL == "" {
		problems = append(problems, ValidationError{Field: "FOOD_SEARCH_URL", Message: "is required"})
	}
	if cfg.SearchPageSize <= 0 {
		problems = append(problems, ValidationError{Field: "SEARCH_PAGE_SIZE", Message: "must be a positive integer"})
	}
	if cfg.SearchDebounce <= 0 {
		problems = append(problems, ValidationError{Field: "SEARCH_DEBOUNCE", Message: "must be a positive duration"})
	}
	if cfg.SearchTimeout <= 0 {
		problems = append(problems, ValidationError{Field: "SEARCH_TIMEOUT", Message: "must be a positive duration"})
	}
	if cfg.SearchRatePerMinute <= 0 {
		problems = append(problems, ValidationError{Field: "SEARCH_RATE_PER_MINUTE", Message: "must be a positive integer"})
	}
	if cfg.SearchUserLimit <= 0 {
		problems = append(problems, ValidationError{Field: "SEARCH_USER_LIMIT", Message: "must be a positive integer"})
	}

	if len(problems) > 0 {
		lines := make([]string, len(problems))
		for i, p := range problems {
			lines[i] = p.Error()
		}
		return fmt.Errorf("configuration validation failed:\n%s", strings.Join(lines, "\n"))
	}

	return nil
}
