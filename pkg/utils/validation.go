package utils

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateStruct validates a struct based on its validation tags
func ValidateStruct(s interface{}) error {
	if err := validate.Struct(s); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// formatValidationError formats validation errors into readable messages
func formatValidationError(err error) error {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		var msgs []string
		for _, e := range validationErrors {
			msgs = append(msgs, formatFieldError(e))
		}
		return fmt.Errorf("%s", strings.Join(msgs, "; "))
	}
	return err
}

// formatFieldError formats a single field validation error
func formatFieldError(e validator.FieldError) string {
	field := strings.ToLower(e.Field())

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, e.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	case "dive":
		return fmt.Sprintf("%s contains invalid values", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

// MaxEntityNameLength bounds node names and other short display names.
const MaxEntityNameLength = 50

var (
	// Characters that may not appear in node names or titles.
	disallowedNameChars = []string{":", "#", "/", "|", "_"}

	tagPattern       = regexp.MustCompile(`^[a-z ]+$`)
	alphanumericOnly = regexp.MustCompile(`^[a-zA-Z0-9]+$`)
	doubledSpace     = regexp.MustCompile(`\s\s+`)
)

// RequireValidName checks that name is usable as a node name or a short
// metadata field. entity names the thing being validated and appears in
// the returned message.
func RequireValidName(name, entity string, allowEmpty bool) error {
	if name == "" {
		if allowEmpty {
			return nil
		}
		return fmt.Errorf("please enter a non-empty %s", entity)
	}
	if strings.TrimSpace(name) != name {
		return fmt.Errorf(
			"names should not start or end with whitespace, received %q", name)
	}
	if doubledSpace.MatchString(name) {
		return fmt.Errorf(
			"adjacent whitespace in %s should be collapsed, received %q",
			entity, name)
	}
	if len(name) > MaxEntityNameLength {
		return fmt.Errorf(
			"the length of %s should be at most %d characters, received %q",
			entity, MaxEntityNameLength, name)
	}
	for _, c := range disallowedNameChars {
		if strings.Contains(name, c) {
			return fmt.Errorf("invalid character %s in %s %q", c, entity, name)
		}
	}
	return nil
}

// RequireValidTag checks one document tag against the tag rules: only
// lowercase letters and spaces, no edge or doubled whitespace.
func RequireValidTag(tag string) error {
	if tag == "" {
		return fmt.Errorf("tags should be non-empty")
	}
	if !tagPattern.MatchString(tag) {
		return fmt.Errorf(
			"tags should only contain lowercase letters and spaces, received %q",
			tag)
	}
	if tag[0] == ' ' || tag[len(tag)-1] == ' ' {
		return fmt.Errorf(
			"tags should not start or end with whitespace, received %q", tag)
	}
	if doubledSpace.MatchString(tag) {
		return fmt.Errorf(
			"adjacent whitespace in tags should be collapsed, received %q", tag)
	}
	return nil
}

// IsAlphanumeric reports whether s contains only [a-zA-Z0-9].
func IsAlphanumeric(s string) bool {
	return alphanumericOnly.MatchString(s)
}

// IsValidLanguageCode reports whether code is a supported content
// language code.
func IsValidLanguageCode(code string) bool {
	_, ok := supportedLanguageCodes[code]
	return ok
}

var supportedLanguageCodes = map[string]struct{}{
	"ar": {}, "bg": {}, "bn": {}, "cs": {}, "da": {}, "de": {}, "el": {},
	"en": {}, "es": {}, "fi": {}, "fr": {}, "hi": {}, "hu": {}, "id": {},
	"it": {}, "ja": {}, "kn": {}, "ko": {}, "ml": {}, "mr": {}, "nl": {},
	"no": {}, "pl": {}, "pt": {}, "ro": {}, "ru": {}, "sk": {}, "sv": {},
	"sw": {}, "ta": {}, "te": {}, "th": {}, "tr": {}, "uk": {}, "ur": {},
	"vi": {}, "zh": {},
}
