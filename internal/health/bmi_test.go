package health

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBMI(t *testing.T) {
	r, err := BMI("70", "175")
	require.NoError(t, err)
	assert.Equal(t, 22.9, r.Rounded())
	assert.Equal(t, "Normal weight", r.Category)
}

func TestBMI_Errors(t *testing.T) {
	_, err := BMI("", "175")
	assert.ErrorIs(t, err, ErrMissingInput)
	_, err = BMI("70", "tall")
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = BMI("70", "0")
	assert.ErrorIs(t, err, ErrInvalidInput)

	for _, bad := range []string{"inf", "+Inf", "NaN", "0x1p3", "0X10"} {
		_, err = BMI(bad, "175")
		assert.ErrorIs(t, err, ErrInvalidInput, bad)
	}
}

func TestCategory(t *testing.T) {
	cases := map[float64]string{
		18.4: "Underweight",
		18.5: "Normal weight",
		24.9: "Normal weight",
		25:   "Overweight",
		29.9: "Overweight",
		30:   "Obese",
	}
	for v, want := range cases {
		assert.Equal(t, want, Category(v), "bmi %.1f", v)
	}
}
