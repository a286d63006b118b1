package handlers

import (
	"net/http"

	"seva-health/internal/appointments"
	"seva-health/internal/logging"
	"seva-health/internal/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type AppointmentHandler struct {
	svc *appointments.Service
	log *zap.Logger
}

func NewAppointmentHandler(svc *appointments.Service, logger *zap.Logger) *AppointmentHandler {
	return &AppointmentHandler{
		svc: svc,
		log: logging.OrNop(logger).Named("handlers.appointments"),
	}
}

var appointmentErrors = map[error]int{
	appointments.ErrNotFound:     http.StatusNotFound,
	appointments.ErrInvalidDate:  http.StatusBadRequest,
	appointments.ErrDateInPast:   http.StatusBadRequest,
	appointments.ErrInvalidSlot:  http.StatusBadRequest,
	appointments.ErrInvalidOPD:   http.StatusBadRequest,
	appointments.ErrPaymentRef:   http.StatusBadRequest,
	appointments.ErrDoctorNeeded: http.StatusBadRequest,
}

type BookAppointmentRequest struct {
	DoctorID       string `json:"doctor_id" validate:"required"`
	Date           string `json:"date" validate:"required,datetime=2006-01-02"`
	Slot           string `json:"slot" validate:"required"`
	OPDType        string `json:"opd_type" validate:"required,oneof=online offline"`
	PaymentRef     string `json:"payment_ref" validate:"required"`
	IdempotencyKey string `json:"idempotency_key"`
}

// --- GET /v1/specializations ---

func (h *AppointmentHandler) ListSpecializations(w http.ResponseWriter, r *http.Request) {
	specs, err := h.svc.ListSpecializations(r.Context())
	if err != nil {
		writeServiceError(w, h.log, err, appointmentErrors)
		return
	}
	writeJSON(w, http.StatusOK, specs)
}

// --- GET /v1/specializations/{id}/doctors ---

func (h *AppointmentHandler) ListDoctors(w http.ResponseWriter, r *http.Request) {
	doctors, err := h.svc.ListDoctors(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.log, err, appointmentErrors)
		return
	}
	writeJSON(w, http.StatusOK, doctors)
}

// --- GET /v1/doctors/{id}/slots?date= ---

func (h *AppointmentHandler) Slots(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		writeError(w, http.StatusBadRequest, "date is required")
		return
	}

	slots, err := h.svc.AvailableSlots(r.Context(), chi.URLParam(r, "id"), date)
	if err != nil {
		writeServiceError(w, h.log, err, appointmentErrors)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"doctor_id": chi.URLParam(r, "id"),
		"date":      date,
		"slots":     slots,
	})
}

// --- POST /v1/appointments ---

func (h *AppointmentHandler) Book(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req BookAppointmentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	appt, created, err := h.svc.Book(r.Context(), userID, appointments.BookInput{
		DoctorID:       req.DoctorID,
		Date:           req.Date,
		Slot:           req.Slot,
		OPDType:        req.OPDType,
		PaymentRef:     req.PaymentRef,
		IdempotencyKey: req.IdempotencyKey,
	})
	if err != nil {
		writeServiceError(w, h.log, err, appointmentErrors)
		return
	}
	if !created {
		// Already booked with this key, return the existing one (idempotent behavior)
		writeJSON(w, http.StatusOK, appt)
		return
	}
	writeJSON(w, http.StatusCreated, appt)
}

// --- GET /v1/appointments ---

func (h *AppointmentHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	list, err := h.svc.ListForPatient(r.Context(), userID)
	if err != nil {
		writeServiceError(w, h.log, err, appointmentErrors)
		return
	}
	writeJSON(w, http.StatusOK, list)
}
