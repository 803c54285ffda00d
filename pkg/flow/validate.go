package flow

import (
	"regexp"
	"strings"
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidEmail reports whether s looks like an email address. This is
// presentation validation; the server applies its own checks.
func ValidEmail(s string) bool {
	return emailRe.MatchString(strings.TrimSpace(s))
}

// Requirement is one entry of the live password checklist shown while
// the user types.
type Requirement struct {
	Label string
	re    *regexp.Regexp
}

// Met reports whether the password satisfies this requirement.
func (r Requirement) Met(password string) bool {
	return r.re.MatchString(password)
}

// PasswordRequirements is the fixed checklist applied to new passwords,
// in display order.
var PasswordRequirements = []Requirement{
	{Label: "At least 8 characters", re: regexp.MustCompile(`.{8,}`)},
	{Label: "One uppercase letter", re: regexp.MustCompile(`[A-Z]`)},
	{Label: "One lowercase letter", re: regexp.MustCompile(`[a-z]`)},
	{Label: "One number", re: regexp.MustCompile(`[0-9]`)},
}

// RequirementStatus pairs a checklist entry with whether the current
// input satisfies it.
type RequirementStatus struct {
	Label string
	Met   bool
}

// CheckPassword evaluates the full checklist against password.
func CheckPassword(password string) []RequirementStatus {
	out := make([]RequirementStatus, len(PasswordRequirements))
	for i, r := range PasswordRequirements {
		out[i] = RequirementStatus{Label: r.Label, Met: r.Met(password)}
	}
	return out
}

// ValidPassword reports whether every checklist requirement is met.
func ValidPassword(password string) bool {
	for _, r := range PasswordRequirements {
		if !r.Met(password) {
			return false
		}
	}
	return true
}
