package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"seva-health/internal/models"
)

type BookRequest struct {
	DoctorID       string `json:"doctor_id"`
	Date           string `json:"date"`
	Slot           string `json:"slot"`
	OPDType        string `json:"opd_type"`
	PaymentRef     string `json:"payment_ref"`
	IdempotencyKey string `json:"idempotency_key,omitempty"`
}

func (c *Client) Specializations(ctx context.Context) ([]models.Specialization, error) {
	var out []models.Specialization
	err := c.call(ctx, http.MethodGet, "/v1/specializations", "", nil, &out)
	return out, err
}

func (c *Client) Doctors(ctx context.Context, specializationID string) ([]models.Doctor, error) {
	var out []models.Doctor
	err := c.call(ctx, http.MethodGet, "/v1/specializations/"+url.PathEscape(specializationID)+"/doctors", "", nil, &out)
	return out, err
}

func (c *Client) Slots(ctx context.Context, doctorID, date string) ([]string, error) {
	var out struct {
		Slots []string `json:"slots"`
	}
	path := query("/v1/doctors/"+url.PathEscape(doctorID)+"/slots", url.Values{"date": {date}})
	err := c.call(ctx, http.MethodGet, path, "", nil, &out)
	return out.Slots, err
}

func (c *Client) Book(ctx context.Context, token string, req BookRequest) (models.Appointment, error) {
	var out models.Appointment
	err := c.call(ctx, http.MethodPost, "/v1/appointments", token, req, &out)
	return out, err
}

func (c *Client) Appointments(ctx context.Context, token string) ([]models.Appointment, error) {
	var out []models.Appointment
	err := c.call(ctx, http.MethodGet, "/v1/appointments", token, nil, &out)
	return out, err
}
