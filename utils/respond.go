package utils

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/ray-remotestate/cafeteria/middlewares"
	"github.com/ray-remotestate/cafeteria/models"
)

var errorStatuses = []struct {
	err    error
	status int
}{
	{models.ErrUnauthenticated, http.StatusUnauthorized},
	{models.ErrInvalidCredentials, http.StatusUnauthorized},
	{models.ErrForbidden, http.StatusForbidden},
	{models.ErrInvalidRequest, http.StatusBadRequest},
	{models.ErrItemNotFound, http.StatusBadRequest},
	{models.ErrInsufficientStock, http.StatusBadRequest},
	{models.ErrDuplicateUsername, http.StatusBadRequest},
	{models.ErrAlreadyAdmin, http.StatusBadRequest},
	{models.ErrRequestAlreadyPending, http.StatusBadRequest},
	{models.ErrRequestNotFound, http.StatusNotFound},
	{models.ErrMenuItemNotFound, http.StatusNotFound},
	{models.ErrRequestNotPending, http.StatusConflict},
	{models.ErrMenuItemInUse, http.StatusConflict},
}

func RespondJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logrus.WithError(err).Error("failed to encode response")
	}
}

func RespondMessage(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, map[string]string{"message": message})
}

// RespondError writes the status and message for a known domain error.
// Anything else is logged and answered with a bare 500.
func RespondError(w http.ResponseWriter, r *http.Request, err error) {
	status, message := ErrorStatus(err)
	if status == http.StatusInternalServerError {
		logrus.WithFields(logrus.Fields{
			"request_id": middlewares.RequestIDFromContext(r.Context()),
			"method":     r.Method,
			"path":       r.URL.Path,
		}).WithError(err).Error("request failed")
	}
	RespondMessage(w, status, message)
}

// ErrorStatus maps err to an HTTP status and a client-safe message.
func ErrorStatus(err error) (int, string) {
	for _, e := range errorStatuses {
		if !errors.Is(err, e.err) {
			continue
		}

		var itemErr *models.ItemError
		if errors.As(err, &itemErr) {
			return e.status, itemErr.Error()
		}
		var reqErr *models.RequestError
		if errors.As(err, &reqErr) {
			return e.status, reqErr.Reason
		}
		return e.status, e.err.Error()
	}
	return http.StatusInternalServerError, "internal server error"
}
