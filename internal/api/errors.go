package api

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/cleared-dev/voucherbook/internal/model"
)

// ErrorResponse represents an API error response.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

var errorCodes = []struct {
	err    error
	status int
	code   string
}{
	{model.ErrMissingField, http.StatusBadRequest, "missing_field"},
	{model.ErrInvalidType, http.StatusBadRequest, "invalid_type"},
	{model.ErrInvalidAmount, http.StatusBadRequest, "invalid_amount"},
	{model.ErrSelfReference, http.StatusBadRequest, "self_reference"},
	{model.ErrUnresolvedReference, http.StatusBadRequest, "unresolved_reference"},
	{model.ErrInvalidStatus, http.StatusBadRequest, "invalid_status"},
	{model.ErrInvalidRange, http.StatusBadRequest, "invalid_range"},
	{model.ErrNotFound, http.StatusNotFound, "not_found"},
	{model.ErrDuplicateName, http.StatusConflict, "duplicate_name"},
	{model.ErrAccountInUse, http.StatusConflict, "account_in_use"},
	{model.ErrVoucherFinalized, http.StatusConflict, "voucher_finalized"},
	{model.ErrInvalidTransition, http.StatusConflict, "invalid_transition"},
	{model.ErrConflict, http.StatusConflict, "conflict"},
	{model.ErrConfirmationRequired, http.StatusPreconditionRequired, "confirmation_required"},
}

// statusFor maps a book error to an HTTP status and error code.
func statusFor(err error) (int, string) {
	for _, ec := range errorCodes {
		if errors.Is(err, ec.err) {
			return ec.status, ec.code
		}
	}
	return http.StatusInternalServerError, "server_error"
}

// writeJSONError writes a JSON error response.
func writeJSONError(w http.ResponseWriter, status int, error, description string) {
	writeJSON(w, status, ErrorResponse{
		Error:            error,
		ErrorDescription: description,
	})
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status, code := statusFor(err)
	if status == http.StatusInternalServerError {
		s.log.Error("request failed", zap.Error(err))
		writeJSONError(w, status, code, "internal error")
		return
	}
	writeJSONError(w, status, code, err.Error())
}
