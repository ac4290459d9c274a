package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/wolfeidau/gasdesk/internal/apperr"
	"github.com/wolfeidau/gasdesk/internal/auth"
)

// Error codes returned in ErrorDetail.Code.
const (
	CodeIncompleteForm      = "incomplete_form"
	CodeInvalidFormat       = "invalid_format"
	CodeWeakSecret          = "weak_secret"
	CodeQuantityPolicy      = "quantity_policy"
	CodeInvalidCylinderType = "invalid_cylinder_type"
	CodeValidation          = "validation"
	CodeUnauthenticated     = "unauthenticated"
	CodeAuthFailed          = "auth_failed"
	CodeForbidden           = "forbidden"
	CodeNotFound            = "not_found"
	CodeUnavailable         = "unavailable"
	CodeInternal            = "internal"
)

// validationCodes is checked in order; the children come before the parent.
var validationCodes = []struct {
	err  error
	code string
}{
	{apperr.ErrIncompleteForm, CodeIncompleteForm},
	{apperr.ErrFormat, CodeInvalidFormat},
	{apperr.ErrWeakSecret, CodeWeakSecret},
	{apperr.ErrQuantityPolicy, CodeQuantityPolicy},
	{apperr.ErrInvalidCylinderType, CodeInvalidCylinderType},
	{apperr.ErrValidation, CodeValidation},
}

// describe maps err to a status and the body sent to the caller. Messages of
// unexpected errors are not passed through.
func describe(err error) (int, ErrorDetail) {
	switch {
	case errors.Is(err, apperr.ErrValidation):
		detail := ErrorDetail{Code: CodeValidation, Message: err.Error(), Field: apperr.FieldOf(err)}
		var fe *apperr.FieldError
		if errors.As(err, &fe) && fe.Message != "" {
			detail.Message = fe.Message
		}
		for _, vc := range validationCodes {
			if errors.Is(err, vc.err) {
				detail.Code = vc.code
				break
			}
		}
		return http.StatusBadRequest, detail
	case errors.Is(err, auth.ErrUnauthenticated):
		return http.StatusUnauthorized, ErrorDetail{Code: CodeUnauthenticated, Message: "a valid session is required"}
	case errors.Is(err, apperr.ErrAuth):
		return http.StatusUnauthorized, ErrorDetail{Code: CodeAuthFailed, Message: apperr.ErrAuth.Error()}
	case errors.Is(err, apperr.ErrForbidden):
		return http.StatusForbidden, ErrorDetail{Code: CodeForbidden, Message: err.Error()}
	case errors.Is(err, apperr.ErrTenantNotFound):
		return http.StatusNotFound, ErrorDetail{Code: CodeNotFound, Message: apperr.ErrTenantNotFound.Error()}
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound, ErrorDetail{Code: CodeNotFound, Message: err.Error()}
	case errors.Is(err, apperr.ErrStore):
		return http.StatusServiceUnavailable, ErrorDetail{
			Code:      CodeUnavailable,
			Message:   "service temporarily unavailable, please try again",
			Retryable: true,
		}
	default:
		return http.StatusInternalServerError, ErrorDetail{Code: CodeInternal, Message: "internal server error"}
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, detail := describe(err)

	log := zerolog.Ctx(r.Context())
	switch {
	case status >= http.StatusInternalServerError:
		log.Error().Err(err).Str("code", detail.Code).Msg("Request failed")
	default:
		log.Debug().Err(err).Str("code", detail.Code).Msg("Request rejected")
	}

	writeJSON(w, r, status, ErrorBody{Error: detail})
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("Failed to write response")
	}
}

// readJSON decodes a size limited request body into v.
func readJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperr.Field(apperr.ErrValidation, "body", "malformed request body")
	}
	return nil
}
