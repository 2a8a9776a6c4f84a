package booking

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// BookingRequest is a candidate booking as handed to the orchestrator.
type BookingRequest struct {
	PatientID       int64     `validate:"gt=0"`
	DoctorID        int64     `validate:"gt=0"`
	AppointmentDate time.Time `validate:"required,nopast"`
	// 00:00 is the zero time-of-day and counts as absent, like "".
	AppointmentTime string    `validate:"required,datetime=15:04,ne=00:00"`
	Notes           string
}

type FieldViolation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries every violation found in a request; validation
// never stops at the first bad field.
type ValidationError struct {
	Violations []FieldViolation
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		msgs[i] = v.Message
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// fieldMessages maps field+tag to the fixed message reported to callers.
var fieldMessages = map[string]string{
	"PatientID.gt":             "Patient ID is required",
	"DoctorID.gt":              "Doctor ID is required",
	"AppointmentDate.required": "Appointment date is required",
	"AppointmentDate.nopast":   "Appointment date must be today or in the future",
	"AppointmentTime.required": "Appointment time is required",
	"AppointmentTime.ne":       "Appointment time is required",
	"AppointmentTime.datetime": "Appointment time must be in HH:MM format",
}

// Validator performs the structural checks that run before any store access.
type Validator struct {
	validate *validator.Validate
	now      func() time.Time
}

func NewValidator(now func() time.Time) *Validator {
	if now == nil {
		now = time.Now
	}

	v := validator.New()
	nv := &Validator{validate: v, now: now}

	// The zero date is left to the required tag so it reports as missing,
	// not as in the past.
	_ = v.RegisterValidation("nopast", func(fl validator.FieldLevel) bool {
		date, ok := fl.Field().Interface().(time.Time)
		if !ok || date.IsZero() {
			return true
		}
		today := NormalizeDate(nv.now().UTC())
		return !NormalizeDate(date).Before(today)
	})

	return nv
}

// Check returns nil when the request is structurally sound, otherwise a
// *ValidationError listing every field violation.
func (v *Validator) Check(req BookingRequest) error {
	err := v.validate.Struct(req)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	out := &ValidationError{}
	for _, fe := range verrs {
		key := fe.Field() + "." + fe.Tag()
		msg, known := fieldMessages[key]
		if !known {
			msg = fe.Field() + " is invalid"
		}
		out.Violations = append(out.Violations, FieldViolation{
			Field:   fe.Field(),
			Message: msg,
		})
	}
	return out
}
