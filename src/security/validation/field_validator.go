// backend/src/security/validation/field_validator.go
package validation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/username/tradevault/backend/src/logger"
)

var ErrValidationFailed = fmt.Errorf("validation failed")

// Constants for lengths remain here
const (
	DefaultMaxStringLength = 255
	MaxInstrumentLength    = 32
	MaxCurrencyCodeLength  = 3
	MaxAccountNameLength   = 100
	MaxNoteLength          = 4096
)

// --- String Validators ---

// ValidateStringNotEmpty checks if a string is not empty after trimming.
func ValidateStringNotEmpty(s, fieldName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s cannot be empty", ErrValidationFailed, fieldName)
	}
	return nil
}

// ValidateStringMaxLength checks if a string's UTF-8 character count is within max bounds.
func ValidateStringMaxLength(s string, maxLength int, fieldName string) error {
	if utf8.RuneCountInString(s) > maxLength {
		return fmt.Errorf("%w: %s exceeds maximum length of %d characters", ErrValidationFailed, fieldName, maxLength)
	}
	return nil
}

// ValidateStringRegex checks if a string matches a given regex pattern.
func ValidateStringRegex(s string, pattern *regexp.Regexp, fieldName, formatDescription string) error {
	if !pattern.MatchString(s) {
		return fmt.Errorf("%w: %s ('%s') is not in the expected format (%s)", ErrValidationFailed, fieldName, s, formatDescription)
	}
	return nil
}

// --- Numeric Validators ---

// ValidateFloatString parses a string to float and checks if it's within a range.
func ValidateFloatString(s, fieldName string, allowNegative bool, minVal, maxVal float64) (float64, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return 0, nil
	}

	val, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s ('%s') is not a valid float: %v", ErrValidationFailed, fieldName, s, err)
	}
	if !allowNegative && val < 0 {
		logger.L.Warn("Negative value not allowed for field", "field", fieldName, "value", val)
		return 0, fmt.Errorf("%w: %s cannot be negative", ErrValidationFailed, fieldName)
	}
	if val < minVal || val > maxVal {
		logger.L.Warn("Float value out of range", "field", fieldName, "value", val, "min", minVal, "max", maxVal)
		return 0, fmt.Errorf("%w: %s must be between %.2f and %.2f, got %.2f", ErrValidationFailed, fieldName, minVal, maxVal, val)
	}
	return val, nil
}

// --- Date Validator ---

// ValidateTimestampString checks if a string is a valid RFC3339 timestamp.
func ValidateTimestampString(s, fieldName string) (time.Time, error) {
	trimmed := strings.TrimSpace(s)
	if err := ValidateStringNotEmpty(trimmed, fieldName); err != nil {
		return time.Time{}, err
	}
	t, err := time.Parse(time.RFC3339, trimmed)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s ('%s') is not a valid timestamp (expected RFC3339): %v", ErrValidationFailed, fieldName, s, err)
	}
	return t, nil
}

// --- Specific Format Validators ---

// Regexes for specific formats are defined here
var (
	instrumentRegex   = regexp.MustCompile(`^[A-Za-z0-9._/-]+$`)
	currencyCodeRegex = regexp.MustCompile(`^[A-Z]{3}$`)
)

// ValidateInstrument checks if a string is a plausible instrument symbol.
// Empty is allowed; the report engine buckets those as "unspecified".
func ValidateInstrument(s string) error {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil
	}
	if err := ValidateStringMaxLength(trimmed, MaxInstrumentLength, "Instrument"); err != nil {
		return err
	}
	return ValidateStringRegex(trimmed, instrumentRegex, "Instrument", "alphanumeric with ./-_ separators")
}

// ValidateDirection checks the trade direction enum.
func ValidateDirection(s string) error {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "BUY", "SELL":
		return nil
	}
	return fmt.Errorf("%w: Direction ('%s') must be BUY or SELL", ErrValidationFailed, s)
}

// ValidateOutcome checks the journaled outcome enum. Empty is allowed: the
// trader may not have classified the trade yet.
func ValidateOutcome(s string) error {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "WIN", "LOSS", "BREAKEVEN":
		return nil
	}
	return fmt.Errorf("%w: Outcome ('%s') must be WIN, LOSS or BREAKEVEN", ErrValidationFailed, s)
}

// ValidateCurrencyCode checks if currency code is 3 uppercase letters.
func ValidateCurrencyCode(s string) error {
	trimmed := strings.ToUpper(strings.TrimSpace(s)) // Normalize to uppercase before validation
	if trimmed == "" {
		return nil
	}
	if err := ValidateStringMaxLength(trimmed, MaxCurrencyCodeLength, "Currency Code"); err != nil {
		return err
	}
	if !currencyCodeRegex.MatchString(trimmed) {
		return fmt.Errorf("%w: Currency Code ('%s') is not in the expected format (3 uppercase letters)", ErrValidationFailed, s)
	}
	return nil
}

// ValidateTimeZone checks that the runtime can resolve the IANA zone name.
func ValidateTimeZone(s string) error {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil
	}
	if _, err := time.LoadLocation(trimmed); err != nil {
		return fmt.Errorf("%w: Time zone ('%s') is not a recognized IANA zone", ErrValidationFailed, s)
	}
	return nil
}
