package appointments

import "seva-health/internal/models"

// DefaultSlots are offered for every doctor on every date.
var DefaultSlots = []string{"10:00", "11:00", "14:00", "15:00"}

// PreBookingAmount is charged when an appointment is booked.
const PreBookingAmount = 100

// DefaultDirectory is seeded into an empty store.
func DefaultDirectory() ([]models.Specialization, []models.Doctor) {
	specs := []models.Specialization{
		{ID: "cardiology", Name: "Cardiology"},
		{ID: "dermatology", Name: "Dermatology"},
		{ID: "general-medicine", Name: "General Medicine"},
		{ID: "orthopedics", Name: "Orthopedics"},
		{ID: "pediatrics", Name: "Pediatrics"},
	}
	doctors := []models.Doctor{
		{ID: "dr-sen", SpecializationID: "cardiology", Name: "Dr. Arindam Sen", Degree: "MBBS, MD, DM (Cardiology)", Details: "Interventional cardiologist, 14 years"},
		{ID: "dr-roy", SpecializationID: "cardiology", Name: "Dr. Priya Roy", Degree: "MBBS, MD", Details: "Heart failure and hypertension clinic"},
		{ID: "dr-das", SpecializationID: "dermatology", Name: "Dr. Neha Das", Degree: "MBBS, MD (Dermatology)", Details: "Skin allergies and acne"},
		{ID: "dr-ghosh", SpecializationID: "general-medicine", Name: "Dr. Sourav Ghosh", Degree: "MBBS", Details: "Family physician"},
		{ID: "dr-bose", SpecializationID: "general-medicine", Name: "Dr. Ananya Bose", Degree: "MBBS, MD (Internal Medicine)", Details: "Diabetes and thyroid care"},
		{ID: "dr-paul", SpecializationID: "orthopedics", Name: "Dr. Rahul Paul", Degree: "MBBS, MS (Ortho)", Details: "Sports injuries and joint replacement"},
		{ID: "dr-mitra", SpecializationID: "pediatrics", Name: "Dr. Sharmila Mitra", Degree: "MBBS, DCH", Details: "Child health and vaccination"},
	}
	return specs, doctors
}
