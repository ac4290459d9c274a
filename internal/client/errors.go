package client

import (
	"fmt"

	"github.com/wolfeidau/gasdesk/internal/apperr"
	"github.com/wolfeidau/gasdesk/internal/auth"
	"github.com/wolfeidau/gasdesk/internal/server"
)

// APIError is an error response from the server. It unwraps to the matching
// apperr sentinel so callers can branch with errors.Is on either side of the
// wire.
type APIError struct {
	StatusCode int
	server.ErrorDetail
}

func (e *APIError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s (%s): %s", e.Code, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

var codeSentinels = map[string]error{
	server.CodeIncompleteForm:      apperr.ErrIncompleteForm,
	server.CodeInvalidFormat:       apperr.ErrFormat,
	server.CodeWeakSecret:          apperr.ErrWeakSecret,
	server.CodeQuantityPolicy:      apperr.ErrQuantityPolicy,
	server.CodeInvalidCylinderType: apperr.ErrInvalidCylinderType,
	server.CodeValidation:          apperr.ErrValidation,
	server.CodeUnauthenticated:     auth.ErrUnauthenticated,
	server.CodeAuthFailed:          apperr.ErrAuth,
	server.CodeForbidden:           apperr.ErrForbidden,
	server.CodeNotFound:            apperr.ErrNotFound,
	server.CodeUnavailable:         apperr.ErrStore,
}

func (e *APIError) Unwrap() error {
	return codeSentinels[e.Code]
}
