package booking

import (
	"context"
	"errors"
	"time"
)

var (
	ErrPatientNotFound     = errors.New("patient not found")
	ErrDoctorNotFound      = errors.New("doctor not found")
	ErrAppointmentNotFound = errors.New("appointment not found")

	// ErrSlotTaken is returned by CreateAppointment when the storage layer's
	// unique occupancy index rejects the insert, i.e. this request lost a
	// concurrent race for the slot.
	ErrSlotTaken = errors.New("slot already taken")
)

// Repository contains all DB interactions needed by the service.
type Repository interface {
	GetPatientByID(ctx context.Context, id int64) (*Patient, error)
	GetDoctorByID(ctx context.Context, id int64) (*Doctor, error)

	// For conflict checks
	CountConflictingAppointments(ctx context.Context, doctorID int64, date time.Time, timeOfDay string, excludeID *int64) (int, error)

	// Creation and updates
	CreateAppointment(ctx context.Context, appt *Appointment) (int64, error)
	UpdateAppointmentStatus(ctx context.Context, id int64, from, to Status, cancellationReason string) (*Appointment, error)
	UpdateAppointmentSlot(ctx context.Context, id int64, date time.Time, timeOfDay string) (*Appointment, error)

	// Queries
	GetAppointmentByID(ctx context.Context, id int64) (*Appointment, error)
	ListAppointmentsByPatient(ctx context.Context, patientID int64) ([]Appointment, error)
	ListAppointmentsByDoctor(ctx context.Context, doctorID int64) ([]Appointment, error)
	ListAppointmentsByDoctorAndDate(ctx context.Context, doctorID int64, date time.Time) ([]Appointment, error)
}
