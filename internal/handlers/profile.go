package handlers

import (
	"net/http"

	"seva-health/internal/account"
	"seva-health/internal/logging"
	"seva-health/internal/middleware"

	"go.uber.org/zap"
)

type ProfileHandler struct {
	svc *account.Service
	log *zap.Logger
}

func NewProfileHandler(svc *account.Service, logger *zap.Logger) *ProfileHandler {
	return &ProfileHandler{
		svc: svc,
		log: logging.OrNop(logger).Named("handlers.profile"),
	}
}

type CreateProfileRequest struct {
	ID             string `json:"id"`
	Email          string `json:"email" validate:"omitempty,email"`
	Name           string `json:"name" validate:"max=128"`
	Gender         string `json:"gender" validate:"omitempty,oneof=male female not-to-answer"`
	Age            string `json:"age" validate:"omitempty,numeric"`
	Weight         string `json:"weight" validate:"omitempty,numeric"`
	Height         string `json:"height" validate:"omitempty,numeric"`
	BloodGroup     string `json:"blood_group" validate:"omitempty,oneof=A+ A- B+ B- O+ O- AB+ AB-"`
	AdditionalInfo string `json:"additional_info" validate:"max=2000"`
	PhotoURL       string `json:"photo_url" validate:"omitempty,url"`
}

// --- POST /v1/profiles ---

func (h *ProfileHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req CreateProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	p, err := h.svc.CreateProfile(r.Context(), userID, account.ProfileInput{
		ID:             req.ID,
		Email:          req.Email,
		Name:           req.Name,
		Gender:         req.Gender,
		Age:            req.Age,
		Weight:         req.Weight,
		Height:         req.Height,
		BloodGroup:     req.BloodGroup,
		AdditionalInfo: req.AdditionalInfo,
		PhotoURL:       req.PhotoURL,
	})
	if err != nil {
		writeServiceError(w, h.log, err, accountErrors)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// --- GET /v1/profiles/me ---

func (h *ProfileHandler) GetMine(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	p, err := h.svc.GetProfile(r.Context(), userID)
	if err != nil {
		writeServiceError(w, h.log, err, accountErrors)
		return
	}
	writeJSON(w, http.StatusOK, p)
}
