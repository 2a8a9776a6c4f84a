package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

var (
	// ErrDoctorUnavailable covers both a missing doctor and an inactive one;
	// callers are not told which.
	ErrDoctorUnavailable = errors.New("doctor not found or inactive")

	// ErrSlotUnavailable is returned whether the occupied slot was seen by
	// the pre-check or reported by the store as a lost create race.
	ErrSlotUnavailable = errors.New("this time slot is not available")

	ErrInvalidStatusTransition = errors.New("invalid status transition")
	ErrCancellationReason      = errors.New("cancellation reason is required")
)

// Service is the single authority that turns booking requests into persisted
// appointments and drives the status state machine.
type Service struct {
	repo      Repository
	validator *Validator
	logger    zerolog.Logger
	now       func() time.Time
}

func NewService(repo Repository, validator *Validator, logger zerolog.Logger) *Service {
	return &Service{
		repo:      repo,
		validator: validator,
		logger:    logger,
		now:       time.Now,
	}
}

// Book runs the full validation pipeline and creates a Pending appointment.
// Checks run cheapest first and fail fast: structure, patient existence,
// doctor eligibility, slot conflict, then the single create. The store's
// unique occupancy index backs up the conflict pre-check under concurrency.
func (s *Service) Book(ctx context.Context, req BookingRequest) (int64, error) {
	if err := s.validator.Check(req); err != nil {
		return 0, err
	}

	if _, err := s.repo.GetPatientByID(ctx, req.PatientID); err != nil {
		if errors.Is(err, ErrPatientNotFound) {
			return 0, err
		}
		return 0, fmt.Errorf("load patient: %w", err)
	}

	doctor, err := s.repo.GetDoctorByID(ctx, req.DoctorID)
	if err != nil {
		if errors.Is(err, ErrDoctorNotFound) {
			return 0, ErrDoctorUnavailable
		}
		return 0, fmt.Errorf("load doctor: %w", err)
	}
	if !doctor.IsActive {
		return 0, ErrDoctorUnavailable
	}

	available, err := s.IsSlotAvailable(ctx, req.DoctorID, req.AppointmentDate, req.AppointmentTime, nil)
	if err != nil {
		return 0, fmt.Errorf("check slot availability: %w", err)
	}
	if !available {
		return 0, ErrSlotUnavailable
	}

	appt := &Appointment{
		PatientID:       req.PatientID,
		DoctorID:        req.DoctorID,
		AppointmentDate: NormalizeDate(req.AppointmentDate),
		AppointmentTime: req.AppointmentTime,
		Status:          StatusPending,
		Notes:           req.Notes,
		CreatedAt:       s.now().UTC(),
	}

	id, err := s.repo.CreateAppointment(ctx, appt)
	if err != nil {
		if errors.Is(err, ErrSlotTaken) {
			// Lost a concurrent race for the slot after the pre-check
			// passed. Same outcome as an occupied slot.
			return 0, ErrSlotUnavailable
		}
		return 0, fmt.Errorf("create appointment: %w", err)
	}

	s.logger.Info().
		Int64("appointment_id", id).
		Int64("patient_id", req.PatientID).
		Int64("doctor_id", req.DoctorID).
		Str("date", appt.AppointmentDate.Format("2006-01-02")).
		Str("time", appt.AppointmentTime).
		Msg("appointment booked")

	return id, nil
}

// IsSlotAvailable answers whether a doctor is free at a date and time.
// excludeID skips the caller's own appointment when rescheduling.
func (s *Service) IsSlotAvailable(ctx context.Context, doctorID int64, date time.Time, timeOfDay string, excludeID *int64) (bool, error) {
	count, err := s.repo.CountConflictingAppointments(ctx, doctorID, date, timeOfDay, excludeID)
	if err != nil {
		return false, fmt.Errorf("count conflicting appointments: %w", err)
	}
	return count == 0, nil
}

// Reschedule moves an existing appointment to a new date and time. The
// appointment being moved is excluded from the conflict check so it cannot
// collide with itself.
func (s *Service) Reschedule(ctx context.Context, id int64, date time.Time, timeOfDay string) (*Appointment, error) {
	appt, err := s.repo.GetAppointmentByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load appointment: %w", err)
	}

	if !appt.Status.OccupiesSlot() || appt.Status == StatusCompleted {
		return nil, ErrInvalidStatusTransition
	}

	candidate := BookingRequest{
		PatientID:       appt.PatientID,
		DoctorID:        appt.DoctorID,
		AppointmentDate: date,
		AppointmentTime: timeOfDay,
	}
	if err := s.validator.Check(candidate); err != nil {
		return nil, err
	}

	available, err := s.IsSlotAvailable(ctx, appt.DoctorID, date, timeOfDay, &appt.ID)
	if err != nil {
		return nil, fmt.Errorf("check slot availability: %w", err)
	}
	if !available {
		return nil, ErrSlotUnavailable
	}

	updated, err := s.repo.UpdateAppointmentSlot(ctx, id, date, timeOfDay)
	if err != nil {
		if errors.Is(err, ErrSlotTaken) {
			return nil, ErrSlotUnavailable
		}
		return nil, fmt.Errorf("reschedule appointment: %w", err)
	}

	s.logger.Info().
		Int64("appointment_id", id).
		Str("date", NormalizeDate(date).Format("2006-01-02")).
		Str("time", timeOfDay).
		Msg("appointment rescheduled")

	return updated, nil
}

// Confirm moves a pending appointment to confirmed.
func (s *Service) Confirm(ctx context.Context, id int64) (*Appointment, error) {
	return s.changeStatus(ctx, id, StatusConfirmed, "")
}

// Complete closes a confirmed appointment.
func (s *Service) Complete(ctx context.Context, id int64) (*Appointment, error) {
	return s.changeStatus(ctx, id, StatusCompleted, "")
}

// Cancel ends an appointment and frees its slot. A reason is mandatory.
func (s *Service) Cancel(ctx context.Context, id int64, reason string) (*Appointment, error) {
	if reason == "" {
		return nil, ErrCancellationReason
	}
	return s.changeStatus(ctx, id, StatusCancelled, reason)
}

// MarkNoShow ends an appointment the patient did not attend, freeing its slot.
func (s *Service) MarkNoShow(ctx context.Context, id int64) (*Appointment, error) {
	return s.changeStatus(ctx, id, StatusNoShow, "")
}

// changeStatus applies one state-machine transition. The repository update is
// compare-and-swap on the current status, so a concurrent transition makes
// this one fail rather than overwrite it. Status changes never re-check the
// slot.
func (s *Service) changeStatus(ctx context.Context, id int64, to Status, reason string) (*Appointment, error) {
	appt, err := s.repo.GetAppointmentByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load appointment: %w", err)
	}

	if !appt.Status.CanTransitionTo(to) {
		return nil, ErrInvalidStatusTransition
	}

	updated, err := s.repo.UpdateAppointmentStatus(ctx, id, appt.Status, to, reason)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			// The status moved under us between the read and the update.
			return nil, ErrInvalidStatusTransition
		}
		return nil, fmt.Errorf("update appointment status: %w", err)
	}

	s.logger.Info().
		Int64("appointment_id", id).
		Str("from", string(appt.Status)).
		Str("to", string(to)).
		Msg("appointment status changed")

	return updated, nil
}

// GetAppointment retrieves an appointment by ID.
func (s *Service) GetAppointment(ctx context.Context, id int64) (*Appointment, error) {
	appt, err := s.repo.GetAppointmentByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get appointment: %w", err)
	}
	return appt, nil
}

// ListByPatient retrieves a patient's appointments, newest first.
func (s *Service) ListByPatient(ctx context.Context, patientID int64) ([]Appointment, error) {
	appts, err := s.repo.ListAppointmentsByPatient(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("list appointments by patient: %w", err)
	}
	return appts, nil
}

// ListByDoctor retrieves a doctor's appointments, newest first.
func (s *Service) ListByDoctor(ctx context.Context, doctorID int64) ([]Appointment, error) {
	appts, err := s.repo.ListAppointmentsByDoctor(ctx, doctorID)
	if err != nil {
		return nil, fmt.Errorf("list appointments by doctor: %w", err)
	}
	return appts, nil
}

// ListByDoctorAndDate retrieves a doctor's appointments on one day, ordered
// by time.
func (s *Service) ListByDoctorAndDate(ctx context.Context, doctorID int64, date time.Time) ([]Appointment, error) {
	appts, err := s.repo.ListAppointmentsByDoctorAndDate(ctx, doctorID, date)
	if err != nil {
		return nil, fmt.Errorf("list appointments by doctor and date: %w", err)
	}
	return appts, nil
}
