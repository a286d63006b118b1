package onboarding

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

func validateCredentials(c Credentials, p Policy) *ValidationError {
	if !ValidEmail(strings.TrimSpace(c.Email)) {
		return validationf(StageCredentials, "email", "Invalid email format.")
	}
	if utf8.RuneCountInString(c.Password) < p.MinPasswordLength {
		return validationf(StageCredentials, "password", "Password must be at least %d characters.", p.MinPasswordLength)
	}
	if p.RequireConfirmation && c.ConfirmPassword != c.Password {
		return validationf(StageCredentials, "confirm_password", "Passwords do not match.")
	}
	if strings.TrimSpace(c.Name) == "" {
		return validationf(StageCredentials, "name", "Name is required.")
	}
	return nil
}

func validateBiometrics(b Biometrics, p Policy) *ValidationError {
	if b.Gender != "" && !b.Gender.Valid() {
		return validationf(StageBiometrics, "gender", "Invalid gender.")
	}

	age, ok := parseNumber(b.Age)
	if !ok || (p.CheckAgeRange && (age < 1 || age > 120)) {
		return validationf(StageBiometrics, "age", "Invalid age.")
	}
	if _, ok := parseNumber(b.Weight); !ok {
		return validationf(StageBiometrics, "weight", "Invalid weight.")
	}
	if _, ok := parseNumber(b.Height); !ok {
		return validationf(StageBiometrics, "height", "Invalid height.")
	}
	return nil
}

func validateMedical(m Medical) *ValidationError {
	if bg := strings.TrimSpace(m.BloodGroup); bg != "" && !validBloodGroup(bg) {
		return validationf(StageMedical, "blood_group", "Invalid blood group.")
	}
	return nil
}

func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if strings.ContainsAny(s, "xX") {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
