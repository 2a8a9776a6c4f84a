package api

import (
	"net/http"

	"github.com/clinicore/appointment-system/internal/directory"
)

func listDoctorsHandler(svc *directory.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doctors, err := svc.ListDoctors(r.Context())
		if err != nil {
			writeFailure(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeSuccess(w, http.StatusOK, "", doctors)
	}
}

func listDepartmentsHandler(svc *directory.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		departments, err := svc.ListDepartments(r.Context())
		if err != nil {
			writeFailure(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeSuccess(w, http.StatusOK, "", departments)
	}
}
