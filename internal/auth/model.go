package auth

import "time"

const (
	RolePatient = "Patient"
	RoleDoctor  = "Doctor"
	RoleAdmin   = "Admin"
)

type User struct {
	ID           int64
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	PhoneNumber  string
	Role         string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// PatientProfile holds the patient-specific fields captured at registration.
type PatientProfile struct {
	DateOfBirth *time.Time
	Gender      string
	Address     string
	BloodType   string
}
