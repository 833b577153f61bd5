package validation

import (
	"fmt"
	"regexp"
)

var (
	// Twitch logins: alphanumeric plus underscore. Twitch enforces a
	// 4-character minimum for new accounts but legacy 3-character logins exist.
	twitchLoginRegex = regexp.MustCompile(`^[a-zA-Z0-9_]{3,25}$`)

	// Twitch broadcaster IDs are numeric strings
	broadcasterIDRegex = regexp.MustCompile(`^\d+$`)
)

// Validator provides input validation for command options.
// Validation failures surface as chat replies, never transport errors.
type Validator struct{}

// NewValidator creates a new validator.
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateLogin checks that a value looks like a Twitch login.
// Call after trim/lowercase coercion.
func (v *Validator) ValidateLogin(login string) error {
	if !twitchLoginRegex.MatchString(login) {
		return fmt.Errorf("invalid Twitch login format")
	}
	return nil
}

// ValidateBroadcasterID checks that a value looks like a Twitch broadcaster ID.
func (v *Validator) ValidateBroadcasterID(broadcasterID string) error {
	if !broadcasterIDRegex.MatchString(broadcasterID) {
		return fmt.Errorf("invalid broadcaster ID format")
	}
	return nil
}
