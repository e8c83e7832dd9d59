package validator

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	// ErrInvalidLength indicates the number is neither a 10-digit mobile nor a 9-digit landline
	ErrInvalidLength = errors.New("phone number must be 10 digits (mobile) or 9 digits (landline)")

	// ErrInvalidPrefix indicates the number doesn't start with a Thai trunk prefix
	ErrInvalidPrefix = errors.New("phone number must start with 06, 08 or 09 (mobile) or 02-07 (landline)")

	// ErrInvalidFormat indicates phone number contains invalid characters
	ErrInvalidFormat = errors.New("phone number can only contain digits")

	// ErrEmptyPhone indicates phone number is empty
	ErrEmptyPhone = errors.New("phone number cannot be empty")
)

// mobilePrefixes are the Thai mobile trunk prefixes (10-digit numbers)
var mobilePrefixes = []string{"06", "08", "09"}

// landlinePrefixes are the Thai fixed-line area prefixes (9-digit numbers)
var landlinePrefixes = []string{"02", "03", "04", "05", "07"}

// phoneRegex matches digits only
var phoneRegex = regexp.MustCompile(`^\d+$`)

// PhoneValidator handles Thai phone number validation
type PhoneValidator struct{}

// NewPhoneValidator creates a new phone validator instance
func NewPhoneValidator() *PhoneValidator {
	return &PhoneValidator{}
}

// Validate validates a Thai phone number.
// Accepts 0812345678, 081-234-5678, +66 81 234 5678 or 021234567.
// Returns the sanitized number (digits only, leading 0).
func (v *PhoneValidator) Validate(phone string) (string, error) {
	if strings.TrimSpace(phone) == "" {
		return "", ErrEmptyPhone
	}

	sanitized := v.Sanitize(phone)

	if !phoneRegex.MatchString(sanitized) {
		return "", ErrInvalidFormat
	}

	switch len(sanitized) {
	case 10:
		if !hasAnyPrefix(sanitized, mobilePrefixes) {
			return "", ErrInvalidPrefix
		}
	case 9:
		if !hasAnyPrefix(sanitized, landlinePrefixes) {
			return "", ErrInvalidPrefix
		}
	default:
		return "", ErrInvalidLength
	}

	return sanitized, nil
}

// Sanitize removes separators and rewrites the +66 country code to a leading 0
func (v *PhoneValidator) Sanitize(phone string) string {
	replacer := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "", "+", "", ".", "")
	phone = replacer.Replace(phone)

	if strings.HasPrefix(phone, "66") && (len(phone) == 11 || len(phone) == 10) {
		phone = "0" + phone[2:]
	}

	return phone
}

// IsMobile reports whether a valid number is a mobile number
func (v *PhoneValidator) IsMobile(phone string) bool {
	sanitized, err := v.Validate(phone)
	return err == nil && len(sanitized) == 10
}

// Format formats a number for display: 08X XXX XXXX or 0X XXX XXXX
func (v *PhoneValidator) Format(phone string) (string, error) {
	sanitized, err := v.Validate(phone)
	if err != nil {
		return "", err
	}

	if len(sanitized) == 10 {
		return fmt.Sprintf("%s %s %s", sanitized[0:3], sanitized[3:6], sanitized[6:10]), nil
	}
	return fmt.Sprintf("%s %s %s", sanitized[0:2], sanitized[2:5], sanitized[5:9]), nil
}

// IsValid is a convenience method that returns true if phone is valid
func (v *PhoneValidator) IsValid(phone string) bool {
	_, err := v.Validate(phone)
	return err == nil
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
