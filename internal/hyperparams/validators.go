package hyperparams

import (
	"fmt"
	"regexp"
	"strings"
)

func asInt(v any) (int64, error) {
	switch val := v.(type) {
	case int:
		return int64(val), nil
	case int64:
		return val, nil
	default:
		return 0, fmt.Errorf("expected an integer, got %T", v)
	}
}

// IsInt accepts any integer value.
func IsInt() func(any) error {
	return func(v any) error {
		_, err := asInt(v)
		return err
	}
}

// PositiveInt accepts integers strictly greater than zero.
func PositiveInt() func(any) error {
	return func(v any) error {
		n, err := asInt(v)
		if err != nil {
			return err
		}
		if n <= 0 {
			return fmt.Errorf("must be greater than 0, got %d", n)
		}
		return nil
	}
}

// IntRange accepts integers in the closed interval [min, max].
func IntRange(min, max int64) func(any) error {
	return func(v any) error {
		n, err := asInt(v)
		if err != nil {
			return err
		}
		if n < min || n > max {
			return fmt.Errorf("must be in [%d, %d], got %d", min, max, n)
		}
		return nil
	}
}

// IsBool accepts boolean values.
func IsBool() func(any) error {
	return func(v any) error {
		if _, ok := v.(bool); !ok {
			return fmt.Errorf("expected a boolean, got %T", v)
		}
		return nil
	}
}

// OneOf accepts strings drawn from the allowed set.
func OneOf(allowed ...string) func(any) error {
	return func(v any) error {
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("expected a string, got %T", v)
		}
		for _, a := range allowed {
			if s == a {
				return nil
			}
		}
		return fmt.Errorf("must be one of [%s], got %q", strings.Join(allowed, ", "), s)
	}
}

// Matches accepts strings matching the given pattern.
func Matches(pattern string) func(any) error {
	re := regexp.MustCompile(pattern)
	return func(v any) error {
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("expected a string, got %T", v)
		}
		if !re.MatchString(s) {
			return fmt.Errorf("must match %q, got %q", pattern, s)
		}
		return nil
	}
}
