package auth

import "unicode"

// Password strength buckets shown next to the register form.
const (
	StrengthWeak   = "Weak"
	StrengthFair   = "Fair"
	StrengthGood   = "Good"
	StrengthStrong = "Strong"
)

// PasswordCheck is the client-side password policy result. Length, a
// lowercase letter and a digit are required; uppercase and special
// characters only raise the strength score.
type PasswordCheck struct {
	MinLength  bool
	HasUpper   bool
	HasLower   bool
	HasNumber  bool
	HasSpecial bool
	Strength   string
	OK         bool
}

// CheckPassword evaluates the registration password policy.
func CheckPassword(pw string) PasswordCheck {
	c := PasswordCheck{MinLength: len(pw) >= 10}
	for _, r := range pw {
		switch {
		case unicode.IsUpper(r):
			c.HasUpper = true
		case unicode.IsLower(r):
			c.HasLower = true
		case unicode.IsDigit(r):
			c.HasNumber = true
		default:
			c.HasSpecial = true
		}
	}

	passed := 0
	for _, ok := range []bool{c.MinLength, c.HasUpper, c.HasLower, c.HasNumber, c.HasSpecial} {
		if ok {
			passed++
		}
	}
	switch {
	case passed <= 2:
		c.Strength = StrengthWeak
	case passed == 3:
		c.Strength = StrengthFair
	case passed == 4:
		c.Strength = StrengthGood
	default:
		c.Strength = StrengthStrong
	}

	c.OK = c.MinLength && c.HasLower && c.HasNumber
	return c
}
