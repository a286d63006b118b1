// Package appointments serves the doctor directory and patient bookings.
package appointments

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"seva-health/internal/logging"
	"seva-health/internal/metrics"
	"seva-health/internal/models"
	"seva-health/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidDate  = errors.New("date must be YYYY-MM-DD")
	ErrDateInPast   = errors.New("date is in the past")
	ErrInvalidSlot  = errors.New("slot is not available")
	ErrInvalidOPD   = errors.New("opd type must be online or offline")
	ErrPaymentRef   = errors.New("payment reference is required")
	ErrDoctorNeeded = errors.New("doctor is required")
)

type DirectoryRepository interface {
	ListSpecializations(ctx context.Context) ([]models.Specialization, error)
	FindSpecialization(ctx context.Context, id string) (*models.Specialization, error)
	ListDoctors(ctx context.Context, specializationID string) ([]models.Doctor, error)
	FindDoctor(ctx context.Context, id string) (*models.Doctor, error)
	Seed(ctx context.Context, specs []models.Specialization, doctors []models.Doctor) (bool, error)
}

type AppointmentRepository interface {
	Create(ctx context.Context, a *models.Appointment) error
	FindByIdempotencyKey(ctx context.Context, patientID, key string) (*models.Appointment, error)
	ListByPatient(ctx context.Context, patientID string) ([]models.Appointment, error)
}

type BookInput struct {
	DoctorID       string
	Date           string
	Slot           string
	OPDType        string
	PaymentRef     string
	IdempotencyKey string
}

type Service struct {
	directory    DirectoryRepository
	appointments AppointmentRepository
	log          *zap.Logger
	now          func() time.Time
}

func NewService(directory DirectoryRepository, appts AppointmentRepository, logger *zap.Logger) *Service {
	return &Service{
		directory:    directory,
		appointments: appts,
		log:          logging.OrNop(logger).Named("appointments"),
		now:          time.Now,
	}
}

// SeedDefaults loads DefaultDirectory when the directory is empty.
func (s *Service) SeedDefaults(ctx context.Context) error {
	specs, doctors := DefaultDirectory()
	seeded, err := s.directory.Seed(ctx, specs, doctors)
	if err != nil {
		return fmt.Errorf("seed directory: %w", err)
	}
	if seeded {
		s.log.Info("directory seeded", zap.Int("specializations", len(specs)), zap.Int("doctors", len(doctors)))
	}
	return nil
}

func (s *Service) ListSpecializations(ctx context.Context) ([]models.Specialization, error) {
	return s.directory.ListSpecializations(ctx)
}

func (s *Service) ListDoctors(ctx context.Context, specializationID string) ([]models.Doctor, error) {
	spec, err := s.directory.FindSpecialization(ctx, specializationID)
	if err != nil {
		return nil, err
	}
	if spec == nil {
		return nil, ErrNotFound
	}
	return s.directory.ListDoctors(ctx, specializationID)
}

func (s *Service) GetDoctor(ctx context.Context, id string) (models.Doctor, error) {
	d, err := s.directory.FindDoctor(ctx, id)
	if err != nil {
		return models.Doctor{}, err
	}
	if d == nil {
		return models.Doctor{}, ErrNotFound
	}
	return *d, nil
}

// AvailableSlots returns the bookable slots of a doctor on date.
func (s *Service) AvailableSlots(ctx context.Context, doctorID, date string) ([]string, error) {
	if _, err := s.GetDoctor(ctx, doctorID); err != nil {
		return nil, err
	}
	if _, err := s.parseDate(date); err != nil {
		return nil, err
	}
	return slices.Clone(DefaultSlots), nil
}

func (s *Service) parseDate(date string) (time.Time, error) {
	d, err := time.Parse(dateLayout, strings.TrimSpace(date))
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	today, _ := time.Parse(dateLayout, s.now().Format(dateLayout))
	if d.Before(today) {
		return time.Time{}, ErrDateInPast
	}
	return d, nil
}

// Book stores a booked appointment. A repeated IdempotencyKey returns the
// earlier booking with created=false.
func (s *Service) Book(ctx context.Context, patientID string, in BookInput) (appt models.Appointment, created bool, err error) {
	if in.IdempotencyKey != "" {
		existing, err := s.appointments.FindByIdempotencyKey(ctx, patientID, in.IdempotencyKey)
		if err != nil {
			return models.Appointment{}, false, err
		}
		if existing != nil {
			return *existing, false, nil
		}
	}

	if strings.TrimSpace(in.DoctorID) == "" {
		return models.Appointment{}, false, ErrDoctorNeeded
	}
	if _, err := s.GetDoctor(ctx, in.DoctorID); err != nil {
		return models.Appointment{}, false, err
	}
	if _, err := s.parseDate(in.Date); err != nil {
		return models.Appointment{}, false, err
	}
	if !slices.Contains(DefaultSlots, in.Slot) {
		return models.Appointment{}, false, ErrInvalidSlot
	}
	if in.OPDType != models.OPDOnline && in.OPDType != models.OPDOffline {
		return models.Appointment{}, false, ErrInvalidOPD
	}
	if strings.TrimSpace(in.PaymentRef) == "" {
		return models.Appointment{}, false, ErrPaymentRef
	}

	a := &models.Appointment{
		ID:               uuid.NewString(),
		PatientID:        patientID,
		DoctorID:         in.DoctorID,
		Date:             strings.TrimSpace(in.Date),
		Slot:             in.Slot,
		OPDType:          in.OPDType,
		PreBookingAmount: PreBookingAmount,
		PaymentRef:       in.PaymentRef,
		Status:           models.AppointmentBooked,
		IdempotencyKey:   in.IdempotencyKey,
	}
	if err := s.appointments.Create(ctx, a); err != nil {
		if errors.Is(err, repository.ErrDuplicate) && in.IdempotencyKey != "" {
			// lost a race with the same key
			existing, ferr := s.appointments.FindByIdempotencyKey(ctx, patientID, in.IdempotencyKey)
			if ferr == nil && existing != nil {
				return *existing, false, nil
			}
		}
		return models.Appointment{}, false, fmt.Errorf("create appointment: %w", err)
	}

	metrics.AppointmentsBooked.Inc()
	s.log.Info("appointment booked",
		zap.String("appointment_id", a.ID),
		zap.String("doctor_id", a.DoctorID),
		zap.String("date", a.Date),
		zap.String("slot", a.Slot),
	)
	return *a, true, nil
}

func (s *Service) ListForPatient(ctx context.Context, patientID string) ([]models.Appointment, error) {
	return s.appointments.ListByPatient(ctx, patientID)
}
