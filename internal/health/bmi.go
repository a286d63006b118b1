// Package health has the offline calculators.
package health

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

var (
	ErrMissingInput = errors.New("weight and height are required")
	ErrInvalidInput = errors.New("weight and height must be positive numbers")
)

type BMIResult struct {
	Value    float64
	Category string
}

// Rounded is Value to one decimal place.
func (r BMIResult) Rounded() float64 {
	return math.Round(r.Value*10) / 10
}

// BMI computes the body mass index from weight in kg and height in cm.
func BMI(weight, height string) (BMIResult, error) {
	weight, height = strings.TrimSpace(weight), strings.TrimSpace(height)
	if weight == "" || height == "" {
		return BMIResult{}, ErrMissingInput
	}

	w, ok := parsePositive(weight)
	if !ok {
		return BMIResult{}, ErrInvalidInput
	}
	h, ok := parsePositive(height)
	if !ok {
		return BMIResult{}, ErrInvalidInput
	}

	m := h / 100
	v := w / (m * m)
	return BMIResult{Value: v, Category: Category(v)}, nil
}

func Category(bmi float64) string {
	switch {
	case bmi < 18.5:
		return "Underweight"
	case bmi < 25:
		return "Normal weight"
	case bmi < 30:
		return "Overweight"
	default:
		return "Obese"
	}
}

// parsePositive accepts plain decimal numbers only; hex floats, infinities
// and NaN are rejected.
func parsePositive(s string) (float64, bool) {
	if strings.ContainsAny(s, "xX") {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
		return 0, false
	}
	return f, true
}
