package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"licensepanel/logger"
	"licensepanel/models"
	"licensepanel/services"
)

// maxBodyBytes caps every JSON request body. Import uses maxImportBytes.
const (
	maxBodyBytes   = 1 << 20
	maxImportBytes = 16 << 20
)

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, limit int64, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	return json.NewDecoder(r.Body).Decode(v)
}

// statusForError 서비스 에러를 HTTP 상태 코드로 변환
func statusForError(err error) int {
	switch {
	case errors.Is(err, services.ErrLicenseNotFound),
		errors.Is(err, services.ErrRegistrationNotFound),
		errors.Is(err, services.ErrQuotaNotFound),
		errors.Is(err, services.ErrProfileNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrLicenseConflict),
		errors.Is(err, services.ErrDeviceConflict):
		return http.StatusConflict
	case errors.Is(err, services.ErrValidation),
		errors.Is(err, services.ErrInvalidLimit):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeServiceError writes the admin API envelope for err. Storage failures
// are logged and answered with a generic message.
func writeServiceError(w http.ResponseWriter, err error, failure string, fields map[string]interface{}) {
	status := statusForError(err)
	switch status {
	case http.StatusBadRequest:
		writeJSON(w, status, models.ValidationErrorResponse("Invalid request", err))
	case http.StatusInternalServerError:
		if fields == nil {
			fields = map[string]interface{}{}
		}
		fields["error"] = err.Error()
		logger.WithFields(fields).Error("%s", failure)
		writeJSON(w, status, models.ErrorResponse(failure))
	default:
		writeJSON(w, status, models.ErrorResponse(err.Error()))
	}
}

func methodNotAllowed(w http.ResponseWriter) {
	writeJSON(w, http.StatusMethodNotAllowed, models.ErrorResponse(models.MessageMethodNotAllowed))
}

// pathID returns the single path segment after prefix, or "" when absent.
// ok is false for nested paths.
func pathID(r *http.Request, prefix string) (id string, ok bool) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, prefix), "/")
	if strings.Contains(rest, "/") {
		return "", false
	}
	return rest, true
}

// queryInt parses an optional non-negative integer query parameter.
func queryInt(r *http.Request, name string) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, errors.New(name + " must be a non-negative integer")
	}
	return n, nil
}
