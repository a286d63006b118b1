package prediction

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"seva-health/internal/health"

	"github.com/go-playground/validator/v10"
)

var (
	ErrIncompletePage = errors.New("Please fill all fields on this page before proceeding.")
	ErrIncompleteForm = errors.New("Please ensure all fields are filled before submitting.")
	ErrEmptySymptoms  = errors.New("Please enter your symptoms.")
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// CardioInput is posted as-is; keys match the model's feature names.
type CardioInput struct {
	Age                   string `json:"Age" validate:"required,numeric"`
	Gender                string `json:"Gender" validate:"required,oneof=male female"`
	Height                string `json:"Height" validate:"required,numeric"`
	Weight                string `json:"Weight" validate:"required,numeric"`
	Cholesterol           string `json:"Cholesterol" validate:"required,oneof='normal' 'above normal' 'well above normal'"`
	BMI                   string `json:"BMI"`
	BloodPressureCategory string `json:"BloodPressureCategory"`
	Systolic              string `json:"Systolic" validate:"omitempty,numeric"`
	Diastolic             string `json:"Diastolic" validate:"omitempty,numeric"`
	Smoke                 string `json:"Smoke" validate:"required,oneof='smoker' 'non smoker'"`
	Alcohol               string `json:"Alcohol" validate:"required,oneof='alcoholic' 'non alcoholic'"`
	Active                string `json:"Active" validate:"required,oneof=active inactive"`
	Glucose               string `json:"Glucose" validate:"required,oneof='normal' 'above normal' 'well above normal'"`
}

var CardioPages = [][]string{
	{"Age", "Gender", "Height", "Weight"},
	{"Cholesterol", "Glucose", "Systolic", "Diastolic"},
	{"Smoke", "Alcohol", "Active"},
}

// DiabetesInput is posted as-is; keys match the model's feature names.
type DiabetesInput struct {
	Age              string `json:"Age" validate:"required,numeric"`
	Gender           string `json:"Gender" validate:"required,oneof=male female"`
	BMI              string `json:"BMI" validate:"required,numeric"`
	BloodPressure    string `json:"BloodPressure" validate:"required,oneof=high low"`
	HeartAttack      string `json:"HeartAttack" validate:"required,oneof=yes no"`
	HighCholesterol  string `json:"HighCholesterol" validate:"required,oneof=high low"`
	Stroke           string `json:"Stroke" validate:"required,oneof=yes no"`
	CholesterolCheck string `json:"CholesterolCheck" validate:"required,oneof=yes no"`
	Smoke            string `json:"Smoke" validate:"required,oneof=yes no"`
	Veggies          string `json:"Veggies" validate:"required,oneof=yes no"`
	Fruits           string `json:"Fruits" validate:"required,oneof=yes no"`
	Alcohol          string `json:"Alcohol" validate:"required,oneof=alcoholic non_alcoholic"`
	Active           string `json:"Active" validate:"required,oneof=yes no"`
}

var DiabetesPages = [][]string{
	{"Age", "Gender", "BMI"},
	{"BloodPressure", "HeartAttack", "HighCholesterol", "Stroke"},
	{"CholesterolCheck", "Smoke", "Veggies", "Fruits", "Alcohol", "Active"},
}

// FieldError lists the fields that failed and wraps the form-level message.
type FieldError struct {
	Fields []string
	Err    error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s (%s)", e.Err.Error(), strings.Join(e.Fields, ", "))
}

func (e *FieldError) Unwrap() error { return e.Err }

// ValidatePage checks only the fields on page (0-based) of pages.
func ValidatePage(form any, pages [][]string, page int) error {
	if page < 0 || page >= len(pages) {
		return fmt.Errorf("page %d out of range", page+1)
	}
	return fieldError(validate.StructPartial(form, pages[page]...), ErrIncompletePage)
}

// ValidateForm checks every field.
func ValidateForm(form any) error {
	return fieldError(validate.Struct(form), ErrIncompleteForm)
}

func fieldError(err error, sentinel error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fe := &FieldError{Err: sentinel}
	for _, v := range verrs {
		fe.Fields = append(fe.Fields, v.Field())
	}
	return fe
}

// complete fills BMI from height and weight and derives the blood pressure
// category from the readings when the caller left them blank.
func (in CardioInput) complete() CardioInput {
	if strings.TrimSpace(in.BMI) == "" {
		if r, err := health.BMI(in.Weight, in.Height); err == nil {
			in.BMI = strconv.FormatFloat(r.Rounded(), 'f', 1, 64)
		}
	}
	if strings.TrimSpace(in.BloodPressureCategory) == "" {
		in.BloodPressureCategory = BloodPressureCategory(in.Systolic, in.Diastolic)
	}
	return in
}

// BloodPressureCategory classifies a reading in mmHg. Unparseable readings
// give "".
func BloodPressureCategory(systolic, diastolic string) string {
	sys, err1 := strconv.ParseFloat(strings.TrimSpace(systolic), 64)
	dia, err2 := strconv.ParseFloat(strings.TrimSpace(diastolic), 64)
	if err1 != nil || err2 != nil {
		return ""
	}
	switch {
	case sys >= 140 || dia >= 90:
		return "Hypertension Stage 2"
	case sys >= 130 || dia >= 80:
		return "Hypertension Stage 1"
	case sys >= 120:
		return "Elevated"
	default:
		return "Normal"
	}
}
