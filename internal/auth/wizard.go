package auth

import "strings"

// Step is the login wizard position.
type Step int

const (
	StepMobile Step = iota
	StepOTP
)

// Wizard is the two-step login form state. The identifier returned by
// SendOTP travels with it into the OTP step.
type Wizard struct {
	Step       Step
	Mobile     string
	OTP        string
	Identifier string
	Notice     string
}

// SetMobile replaces the mobile input, keeping only digits.
func (w *Wizard) SetMobile(raw string) {
	w.Mobile = SanitizeDigits(raw, MobileLength)
}

// SetOTP replaces the otp input, keeping only digits.
func (w *Wizard) SetOTP(raw string) {
	w.OTP = SanitizeDigits(raw, OTPLength)
}

// CanSubmit reports whether the current step's input is complete.
func (w Wizard) CanSubmit() bool {
	if w.Step == StepOTP {
		return ValidateOTP(w.OTP) == nil
	}
	return ValidateMobile(w.Mobile) == nil
}

// CodeSent advances to the OTP step.
func (w *Wizard) CodeSent(identifier, notice string) {
	w.Step = StepOTP
	w.Identifier = identifier
	w.Notice = notice
	w.OTP = ""
}

// Back returns to the mobile step and forgets the pending challenge.
func (w *Wizard) Back() {
	w.Step = StepMobile
	w.OTP = ""
	w.Identifier = ""
	w.Notice = ""
}

// ValidateMobile accepts exactly ten ASCII digits.
func ValidateMobile(mobile string) error {
	if !allDigits(mobile, MobileLength) {
		return ErrInvalidMobile
	}
	return nil
}

// ValidateOTP accepts exactly six ASCII digits.
func ValidateOTP(otp string) error {
	if !allDigits(otp, OTPLength) {
		return ErrInvalidOTP
	}
	return nil
}

// SanitizeDigits drops everything but ASCII digits and truncates to max
// (max <= 0 means no limit).
func SanitizeDigits(s string, max int) string {
	var b strings.Builder
	for _, r := range s {
		if r < '0' || r > '9' {
			continue
		}
		if max > 0 && b.Len() >= max {
			break
		}
		b.WriteRune(r)
	}
	return b.String()
}

func allDigits(s string, n int) bool {
	if len(s) != n {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
