package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/clinicore/appointment-system/internal/auth"
)

func registerHandler(svc *auth.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeFailure(w, http.StatusBadRequest, "could not parse JSON body")
			return
		}

		if req.Email == "" || req.Password == "" || req.FirstName == "" || req.LastName == "" {
			writeFailure(w, http.StatusBadRequest, "email, password, first_name and last_name are required")
			return
		}

		var dob *time.Time
		if req.DateOfBirth != "" {
			parsed, err := time.Parse(dateFormat, req.DateOfBirth)
			if err != nil {
				writeFailure(w, http.StatusBadRequest, "date_of_birth must be in YYYY-MM-DD format")
				return
			}
			dob = &parsed
		}

		userID, err := svc.RegisterPatient(r.Context(), auth.RegisterRequest{
			Email:       req.Email,
			Password:    req.Password,
			FirstName:   req.FirstName,
			LastName:    req.LastName,
			PhoneNumber: req.PhoneNumber,
			Profile: auth.PatientProfile{
				DateOfBirth: dob,
				Gender:      req.Gender,
				Address:     req.Address,
				BloodType:   req.BloodType,
			},
		})
		if err != nil {
			if errors.Is(err, auth.ErrEmailExists) {
				writeFailure(w, http.StatusConflict, "Email already exists")
				return
			}
			writeFailure(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeSuccess(w, http.StatusCreated, "Patient registered successfully", map[string]int64{"user_id": userID})
	}
}

func loginHandler(svc *auth.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeFailure(w, http.StatusBadRequest, "could not parse JSON body")
			return
		}

		result, err := svc.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrInvalidCredentials):
				writeFailure(w, http.StatusUnauthorized, "Invalid email or password")
			case errors.Is(err, auth.ErrAccountInactive):
				writeFailure(w, http.StatusUnauthorized, "User account is inactive")
			default:
				writeFailure(w, http.StatusInternalServerError, "internal error")
			}
			return
		}

		writeSuccess(w, http.StatusOK, "Login successful", LoginResponse{
			UserID:   result.UserID,
			Email:    result.Email,
			FullName: result.FullName,
			Role:     result.Role,
			Token:    result.Token,
		})
	}
}
