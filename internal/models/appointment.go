package models

import (
	"time"
)

const (
	OPDOnline  = "online"
	OPDOffline = "offline"

	AppointmentBooked = "booked"
)

type Appointment struct {
	ID               string    `bson:"_id" json:"id"`
	PatientID        string    `bson:"patient_id" json:"patient_id"`
	DoctorID         string    `bson:"doctor_id" json:"doctor_id"`
	Date             string    `bson:"date" json:"date"`
	Slot             string    `bson:"slot" json:"slot"`
	OPDType          string    `bson:"opd_type" json:"opd_type"`
	PreBookingAmount int       `bson:"pre_booking_amount" json:"pre_booking_amount"`
	PaymentRef       string    `bson:"payment_ref" json:"payment_ref"`
	Status           string    `bson:"status" json:"status"`
	IdempotencyKey   string    `bson:"idempotency_key,omitempty" json:"idempotency_key,omitempty"`
	CreatedAt        time.Time `bson:"created_at" json:"created_at"`
}
