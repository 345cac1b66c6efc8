package tutor

import (
	"errors"
	"fmt"
)

// ErrConfiguration matches every *ConfigurationError via errors.Is.
var ErrConfiguration = errors.New("configuration error")

// ErrEmptyMessage is returned by Conversation.Send for blank input.
var ErrEmptyMessage = errors.New("message is empty")

// ConfigurationError reports an unsupported level or other invalid
// setting. It is raised where the value is used, not deferred.
type ConfigurationError struct {
	Field string
	Value string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: unsupported %s %q", e.Field, e.Value)
}

// Is makes errors.Is(err, ErrConfiguration) hold.
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// ValidateLevel returns a *ConfigurationError unless l is a supported level.
func ValidateLevel(l Level) error {
	if !l.Valid() {
		return &ConfigurationError{Field: "level", Value: string(l)}
	}
	return nil
}

// ParseLevel converts s to a Level. The match is exact; "a1" is rejected.
func ParseLevel(s string) (Level, error) {
	l := Level(s)
	if err := ValidateLevel(l); err != nil {
		return "", err
	}
	return l, nil
}

// ParseLanguage converts s to a Language. Unsupported codes yield
// DefaultLanguage rather than an error.
func ParseLanguage(s string) Language {
	if l := Language(s); l.Valid() {
		return l
	}
	return DefaultLanguage
}
