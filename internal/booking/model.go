package booking

import "time"

type Appointment struct {
	ID                 int64
	PatientID          int64
	DoctorID           int64
	AppointmentDate    time.Time // calendar date, time of day is always midnight UTC
	AppointmentTime    string    // HH:MM
	Status             Status
	Notes              string
	CancellationReason string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

type Patient struct {
	ID               int64
	UserID           int64
	DateOfBirth      *time.Time
	Gender           string
	Address          string
	EmergencyContact string
	BloodType        string
	Allergies        string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type Doctor struct {
	ID              int64
	UserID          int64
	DepartmentID    int64
	Title           string
	LicenseNumber   string
	Biography       string
	ExperienceYears *int
	IsActive        bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NormalizeDate strips the time-of-day component so date comparisons and the
// occupancy key only ever see midnight UTC.
func NormalizeDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
