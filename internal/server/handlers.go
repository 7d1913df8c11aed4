package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"charpix/internal/api"
	"charpix/internal/gallery"
)

// apiError carries an HTTP status plus a stable machine readable code
// alongside the underlying error.
type apiError struct {
	status  int
	code    string
	errCode int
	err     error
}

func (e apiError) Error() string {
	if e.err != nil {
		return e.err.Error()
	}
	return e.code
}

func (e apiError) Unwrap() error {
	return e.err
}

func badRequest(errCode int, format string, args ...any) apiError {
	return apiError{
		status:  http.StatusBadRequest,
		code:    "invalid_argument",
		errCode: errCode,
		err:     fmt.Errorf(format, args...),
	}
}

func notFound(errCode int, format string, args ...any) apiError {
	return apiError{
		status:  http.StatusNotFound,
		code:    "not_found",
		errCode: errCode,
		err:     fmt.Errorf(format, args...),
	}
}

func forbidden(format string, args ...any) apiError {
	return apiError{
		status:  http.StatusForbidden,
		code:    "forbidden",
		errCode: ErrCodeForbidden,
		err:     fmt.Errorf(format, args...),
	}
}

func unauthorized(format string, args ...any) apiError {
	return apiError{
		status:  http.StatusUnauthorized,
		code:    "unauthorized",
		errCode: ErrCodeUnauthorized,
		err:     fmt.Errorf(format, args...),
	}
}

func internalError(errCode int, err error) apiError {
	return apiError{
		status:  http.StatusInternalServerError,
		code:    "internal",
		errCode: errCode,
		err:     err,
	}
}

func storeFailure(op string, err error) apiError {
	return internalError(ErrCodeStoreFailure, fmt.Errorf("%s: %w", op, err))
}

// galleryError converts domain errors from the gallery packages into the
// HTTP error envelope.
func galleryError(err error) apiError {
	var apiErr apiError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	switch {
	case errors.Is(err, gallery.ErrCharacterNotFound):
		return notFound(ErrCodeCharacterNotFound, "character not found")
	case errors.Is(err, gallery.ErrPermissionDenied):
		return forbidden("not allowed to modify this gallery")
	case gallery.IsValidation(err):
		return badRequest(validationErrorCode(err), "%s", err.Error())
	case gallery.IsStorage(err):
		return internalError(ErrCodeBlobFailure, err)
	default:
		return internalError(ErrCodeInternal, err)
	}
}

func validationErrorCode(err error) int {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "exceeds"):
		return ErrCodeFileTooLarge
	case strings.Contains(msg, "unsupported"):
		return ErrCodeUnsupportedFormat
	case strings.Contains(msg, "empty"):
		return ErrCodeMissingRequired
	default:
		return ErrCodeInvalidArgument
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log().Error("failed to encode response", "error", err)
	}
}

func (s *Server) writeErrorReq(w http.ResponseWriter, r *http.Request, status int, err error) {
	resp := api.ErrorResponse{Error: "internal server error"}

	var apiErr apiError
	if errors.As(err, &apiErr) {
		if apiErr.status != 0 {
			status = apiErr.status
		}
		resp.Code = apiErr.code
		resp.ErrorCode = apiErr.errCode
	}
	if resp.ErrorCode == 0 {
		resp.ErrorCode = defaultErrorCodeByStatus(status)
	}

	// Never leak internal error details to clients.
	if status < http.StatusInternalServerError && err != nil {
		resp.Error = err.Error()
	}

	logger := s.log()
	if r != nil {
		logger = logger.With("method", r.Method, "path", r.URL.Path)
	}
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "status", status, "error", err)
	} else {
		logger.Info("request rejected", "status", status, "error", err)
	}

	s.writeJSON(w, status, resp)
}
