package utils

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Size limits (in bytes)
const (
	MaxURLLength      = 4096
	MaxPropertyKeyLen = 64 * 1024
)

// ValidateText checks that a host string can cross into the engine.
func ValidateText(value, fieldName string) error {
	if !utf8.ValidString(value) {
		return fmt.Errorf("%s is not valid UTF-8", fieldName)
	}
	return nil
}

// ValidatePropertyKey checks a property name used to build a key.
func ValidatePropertyKey(name string) error {
	if err := ValidateText(name, "property name"); err != nil {
		return err
	}
	if len(name) > MaxPropertyKeyLen {
		return fmt.Errorf("property name of %d bytes exceeds maximum %d bytes", len(name), MaxPropertyKeyLen)
	}
	return nil
}

// ValidateSourceURL checks the url attached to a source unit. The url only
// appears in stack traces, so anything printable is accepted.
func ValidateSourceURL(url string) error {
	if err := ValidateText(url, "source url"); err != nil {
		return err
	}
	if len(url) > MaxURLLength {
		return fmt.Errorf("source url of %d bytes exceeds maximum %d bytes", len(url), MaxURLLength)
	}
	if i := strings.IndexFunc(url, unicode.IsControl); i >= 0 {
		return fmt.Errorf("source url contains control character at byte %d", i)
	}
	return nil
}
