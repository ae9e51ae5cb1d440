package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/member-directory/internal/application"
	repo "github.com/oksasatya/member-directory/internal/domain/repository"
	"github.com/oksasatya/member-directory/internal/domain/roster"
	"github.com/oksasatya/member-directory/internal/domain/verification"
	"github.com/oksasatya/member-directory/pkg/response"
)

var statusByError = []struct {
	err    error
	status int
}{
	{application.ErrThrottled, http.StatusTooManyRequests},
	{application.ErrFlowNotFound, http.StatusUnauthorized},
	{application.ErrNotVerified, http.StatusForbidden},
	{application.ErrAlreadyLinked, http.StatusConflict},
	{application.ErrSearchIncomplete, http.StatusBadRequest},
	{application.ErrNoSearch, http.StatusConflict},
	{application.ErrCandidateNotFound, http.StatusNotFound},
	{application.ErrNoDraft, http.StatusConflict},
	{application.ErrWriteFailed, http.StatusBadGateway},
	{application.ErrInvalidMailing, http.StatusBadRequest},
	{application.ErrExportUnavailable, http.StatusServiceUnavailable},
	{application.ErrReindexUnavailable, http.StatusServiceUnavailable},
	{verification.ErrInvalidEmail, http.StatusBadRequest},
	{verification.ErrLookupFailed, http.StatusBadGateway},
	{verification.ErrDispatchFailed, http.StatusServiceUnavailable},
	{verification.ErrSessionClosed, http.StatusConflict},
	{verification.ErrNoActiveCode, http.StatusConflict},
	{verification.ErrCodeExpired, http.StatusGone},
	{verification.ErrTooManyAttempts, http.StatusTooManyRequests},
	{roster.ErrEmptyName, http.StatusBadRequest},
	{roster.ErrInvalidName, http.StatusBadRequest},
	{roster.ErrUnknownRelation, http.StatusBadRequest},
	{roster.ErrIndexOutOfRange, http.StatusNotFound},
	{repo.ErrMemberNotFound, http.StatusNotFound},
}

// statusFor maps domain errors onto HTTP statuses; anything unknown is a 500.
func statusFor(err error) int {
	for _, e := range statusByError {
		if errors.Is(err, e.err) {
			return e.status
		}
	}
	return http.StatusInternalServerError
}

// fail writes err using the public message of the first known sentinel it wraps.
func fail(c *gin.Context, err error) {
	status := statusFor(err)
	msg := err.Error()
	for _, e := range statusByError {
		if errors.Is(err, e.err) {
			msg = e.err.Error()
			break
		}
	}
	if status == http.StatusInternalServerError {
		msg = "internal error"
	}
	response.Error[any](c, status, msg, nil)
}
