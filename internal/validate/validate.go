package validate

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"beanbrew/internal/domain"
)

var (
	reEmail    = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	rePhone    = regexp.MustCompile(`^[0-9+() .-]{3,25}$`)
	reUsername = regexp.MustCompile(`^[A-Za-z0-9_.-]{3,32}$`)
)

var structs = validator.New(validator.WithRequiredStructEnabled())

// Struct validates request DTOs tagged with `validate:"..."`; the first
// failing field comes back as a domain.ValidationError.
func Struct(v any) error {
	err := structs.Struct(v)
	if err == nil {
		return nil
	}
	var fields validator.ValidationErrors
	if errors.As(err, &fields) && len(fields) > 0 {
		f := fields[0]
		return domain.Invalid(strings.ToLower(f.Field()), fmt.Sprintf("failed %q rule", f.Tag()))
	}
	return domain.Invalid("", err.Error())
}

func Email(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) == 0 || len(s) > 100 {
		return "", false
	}
	return s, reEmail.MatchString(s)
}

func Phone(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, rePhone.MatchString(s)
}

// Name validates a displayable name with a reasonable max length.
func Name(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > 80 {
		return "", false
	}
	return s, true
}

// Q trims a search term and caps its length. An empty term is allowed.
func Q(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 50 {
		s = s[:50]
	}
	return s
}

func Username(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, reUsername.MatchString(s)
}

// Password enforces a simple length window.
func Password(s string) bool {
	l := len(s)
	return l >= 4 && l <= 72
}

// Date parses YYYY-MM-DD in loc.
func Date(s string, loc *time.Location) (time.Time, bool) {
	d, err := time.ParseInLocation(time.DateOnly, strings.TrimSpace(s), loc)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}
