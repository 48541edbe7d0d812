package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"tally/apperrors"
)

// ErrorResponse is the error envelope returned to clients
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

var kindStatus = map[apperrors.Kind]int{
	apperrors.KindUnauthenticated: http.StatusUnauthorized,
	apperrors.KindForbidden:       http.StatusForbidden,
	apperrors.KindNotFound:        http.StatusNotFound,
	apperrors.KindConflict:        http.StatusConflict,
	apperrors.KindInvalidInput:    http.StatusBadRequest,
	apperrors.KindInternal:        http.StatusInternalServerError,
}

// HTTPErrorHandler maps AppError kinds to HTTP statuses and a stable error
// envelope. Unclassified errors are logged and surfaced as INTERNAL.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		status := kindStatus[appErr.Kind]
		if status == 0 {
			status = http.StatusInternalServerError
		}
		writeError(c, status, string(appErr.Kind), appErr.Message)
		return
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		message, ok := httpErr.Message.(string)
		if !ok {
			message = http.StatusText(httpErr.Code)
		}
		writeError(c, httpErr.Code, string(kindForStatus(httpErr.Code)), message)
		return
	}

	log.WithFields(log.Fields{
		"method": c.Request().Method,
		"path":   c.Path(),
	}).WithError(err).Error("Unhandled error in request")

	writeError(c, http.StatusInternalServerError, string(apperrors.KindInternal), "internal error")
}

// kindForStatus maps framework-raised HTTP statuses (route 404, method 405)
// back to the stable error codes clients match on
func kindForStatus(status int) apperrors.Kind {
	switch status {
	case http.StatusUnauthorized:
		return apperrors.KindUnauthenticated
	case http.StatusForbidden:
		return apperrors.KindForbidden
	case http.StatusNotFound:
		return apperrors.KindNotFound
	case http.StatusConflict:
		return apperrors.KindConflict
	}
	if status >= http.StatusInternalServerError {
		return apperrors.KindInternal
	}
	return apperrors.KindInvalidInput
}

func writeError(c echo.Context, status int, code, message string) {
	var err error
	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, ErrorResponse{Code: code, Message: message})
	}
	if err != nil {
		log.WithError(err).Error("Failed to write error response")
	}
}
