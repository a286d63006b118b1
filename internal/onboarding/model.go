package onboarding

import (
	"strings"
	"time"
)

type Stage int

const (
	StageCredentials Stage = iota + 1
	StageBiometrics
	StageMedical
)

func (s Stage) String() string {
	switch s {
	case StageCredentials:
		return "credentials"
	case StageBiometrics:
		return "biometrics"
	case StageMedical:
		return "medical"
	default:
		return "unknown"
	}
}

type Gender string

const (
	GenderMale        Gender = "male"
	GenderFemale      Gender = "female"
	GenderNotToAnswer Gender = "not-to-answer"
)

func (g Gender) Valid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderNotToAnswer:
		return true
	}
	return false
}

// BloodGroups is the fixed enumeration accepted for Medical.BloodGroup.
var BloodGroups = []string{"A+", "A-", "B+", "B-", "O+", "O-", "AB+", "AB-"}

func validBloodGroup(s string) bool {
	for _, g := range BloodGroups {
		if g == s {
			return true
		}
	}
	return false
}

// Credentials are collected on stage 1.
type Credentials struct {
	Email           string
	Password        string
	ConfirmPassword string
	Name            string
}

// Biometrics are collected on stage 2. Numbers are kept as entered.
type Biometrics struct {
	Gender Gender
	Age    string
	Weight string
	Height string
}

// Medical details are collected on stage 3; every field is optional.
type Medical struct {
	BloodGroup     string
	AdditionalInfo string
	PhotoURL       string
}

// Draft accumulates everything entered so far. It lives only in memory.
type Draft struct {
	Credentials Credentials
	Biometrics  Biometrics
	Medical     Medical
}

type Identity struct {
	ID    string
	Email string
	Name  string
}

type Session struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
}

// Profile is the remote profile document, keyed by the identity id.
type Profile struct {
	ID             string `json:"id"`
	Email          string `json:"email"`
	Name           string `json:"name"`
	Gender         Gender `json:"gender"`
	Age            string `json:"age,omitempty"`
	Weight         string `json:"weight,omitempty"`
	Height         string `json:"height,omitempty"`
	BloodGroup     string `json:"blood_group,omitempty"`
	AdditionalInfo string `json:"additional_info,omitempty"`
	PhotoURL       string `json:"photo_url,omitempty"`
}

// Policy holds the configurable validation rules.
type Policy struct {
	MinPasswordLength   int
	RequireConfirmation bool
	CheckAgeRange       bool
}

// DefaultMinPasswordLength is the password minimum of the current signup flow.
const DefaultMinPasswordLength = 8

func DefaultPolicy() Policy {
	return Policy{
		MinPasswordLength:   DefaultMinPasswordLength,
		RequireConfirmation: true,
		CheckAgeRange:       true,
	}
}

// PhotoDefaults picks a profile photo when none was supplied.
type PhotoDefaults struct {
	BaseURL string
}

func (p PhotoDefaults) For(g Gender) string {
	base := strings.TrimRight(p.BaseURL, "/")
	switch g {
	case GenderMale:
		return base + "/male.png"
	case GenderFemale:
		return base + "/female.png"
	default:
		return base + "/default.png"
	}
}
