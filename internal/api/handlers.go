package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/clinicore/appointment-system/internal/booking"
)

func createAppointmentHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateAppointmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeFailure(w, http.StatusBadRequest, "could not parse JSON body")
			return
		}

		id, err := svc.Book(r.Context(), booking.BookingRequest{
			PatientID:       req.PatientID,
			DoctorID:        req.DoctorID,
			AppointmentDate: parseDate(req.AppointmentDate),
			AppointmentTime: req.AppointmentTime,
			Notes:           req.Notes,
		})
		if err != nil {
			handleBookingError(w, err)
			return
		}

		writeSuccess(w, http.StatusCreated, "Appointment created successfully", map[string]int64{"appointment_id": id})
	}
}

func getAppointmentHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}

		appt, err := svc.GetAppointment(r.Context(), id)
		if err != nil {
			handleBookingError(w, err)
			return
		}

		writeSuccess(w, http.StatusOK, "", toAppointmentResponse(appt))
	}
}

func confirmAppointmentHandler(svc *booking.Service) http.HandlerFunc {
	return statusChangeHandler(func(r *http.Request, id int64) (*booking.Appointment, error) {
		return svc.Confirm(r.Context(), id)
	}, "Appointment confirmed")
}

func completeAppointmentHandler(svc *booking.Service) http.HandlerFunc {
	return statusChangeHandler(func(r *http.Request, id int64) (*booking.Appointment, error) {
		return svc.Complete(r.Context(), id)
	}, "Appointment completed")
}

func noShowAppointmentHandler(svc *booking.Service) http.HandlerFunc {
	return statusChangeHandler(func(r *http.Request, id int64) (*booking.Appointment, error) {
		return svc.MarkNoShow(r.Context(), id)
	}, "Appointment marked as no-show")
}

func cancelAppointmentHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}

		var req CancelRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeFailure(w, http.StatusBadRequest, "could not parse JSON body")
			return
		}

		appt, err := svc.Cancel(r.Context(), id, req.Reason)
		if err != nil {
			handleBookingError(w, err)
			return
		}

		writeSuccess(w, http.StatusOK, "Appointment cancelled", toAppointmentResponse(appt))
	}
}

func rescheduleAppointmentHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}

		var req RescheduleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeFailure(w, http.StatusBadRequest, "could not parse JSON body")
			return
		}

		appt, err := svc.Reschedule(r.Context(), id, parseDate(req.AppointmentDate), req.AppointmentTime)
		if err != nil {
			handleBookingError(w, err)
			return
		}

		writeSuccess(w, http.StatusOK, "Appointment rescheduled", toAppointmentResponse(appt))
	}
}

func listPatientAppointmentsHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}

		appts, err := svc.ListByPatient(r.Context(), id)
		if err != nil {
			handleBookingError(w, err)
			return
		}

		writeSuccess(w, http.StatusOK, "", toAppointmentResponses(appts))
	}
}

func listDoctorAppointmentsHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}

		var appts []booking.Appointment
		var err error
		if dateParam := r.URL.Query().Get("date"); dateParam != "" {
			date, perr := time.Parse(dateFormat, dateParam)
			if perr != nil {
				writeFailure(w, http.StatusBadRequest, "date must be in YYYY-MM-DD format")
				return
			}
			appts, err = svc.ListByDoctorAndDate(r.Context(), id, date)
		} else {
			appts, err = svc.ListByDoctor(r.Context(), id)
		}
		if err != nil {
			handleBookingError(w, err)
			return
		}

		writeSuccess(w, http.StatusOK, "", toAppointmentResponses(appts))
	}
}

func statusChangeHandler(change func(*http.Request, int64) (*booking.Appointment, error), message string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}

		appt, err := change(r, id)
		if err != nil {
			handleBookingError(w, err)
			return
		}

		writeSuccess(w, http.StatusOK, message, toAppointmentResponse(appt))
	}
}

func handleBookingError(w http.ResponseWriter, err error) {
	var verr *booking.ValidationError

	switch {
	case errors.As(err, &verr):
		writeValidationFailure(w, verr)
	case errors.Is(err, booking.ErrPatientNotFound):
		writeFailure(w, http.StatusNotFound, "Patient not found")
	case errors.Is(err, booking.ErrDoctorUnavailable):
		writeFailure(w, http.StatusNotFound, "Doctor not found or inactive")
	case errors.Is(err, booking.ErrSlotUnavailable):
		writeFailure(w, http.StatusConflict, "This time slot is not available")
	case errors.Is(err, booking.ErrAppointmentNotFound):
		writeFailure(w, http.StatusNotFound, "Appointment not found")
	case errors.Is(err, booking.ErrInvalidStatusTransition):
		writeFailure(w, http.StatusConflict, "Invalid status transition")
	case errors.Is(err, booking.ErrCancellationReason):
		writeFailure(w, http.StatusBadRequest, "Cancellation reason is required")
	default:
		writeFailure(w, http.StatusInternalServerError, "internal error")
	}
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeFailure(w, http.StatusBadRequest, "id must be a positive integer")
		return 0, false
	}
	return id, true
}

// parseDate returns the zero time for anything unparseable; the booking
// validator then reports the date as missing.
func parseDate(raw string) time.Time {
	t, err := time.Parse(dateFormat, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}
