package response

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"jobpilot-admin/internal/apiclient"
	"jobpilot-admin/internal/forms"
	"jobpilot-admin/internal/listview"
	"jobpilot-admin/internal/normalize"
	"jobpilot-admin/internal/session"
	"jobpilot-admin/pkg/logger"
)

// ErrorDetail is the errors payload for failures that came from upstream
type ErrorDetail struct {
	Kind   string `json:"kind"`
	Status int    `json:"status,omitempty"`
}

// RespondError maps err onto the envelope. fallback is the message shown
// when neither the server nor validation produced one.
func RespondError(c *gin.Context, err error, fallback string) {
	code, message, details := Classify(err, fallback)

	if code >= http.StatusInternalServerError {
		logger.GetDefault().LogHTTPError(c, err, code)
	}
	RespondJSON(c, "error", code, message, nil, details)
}

// Classify picks the status code, message and error details for err
func Classify(err error, fallback string) (int, string, interface{}) {
	if fallback == "" {
		fallback = forms.DefaultErrorMessage
	}

	var (
		verrs    forms.ValidationErrors
		apiErr   *apiclient.APIError
		parseErr *normalize.ParseError
	)

	switch {
	case errors.As(err, &verrs):
		return http.StatusBadRequest, verrs.Summary(), verrs

	case errors.As(err, &parseErr):
		return http.StatusBadGateway, "could not parse response", ErrorDetail{Kind: listview.ErrorKindParse}

	case errors.As(err, &apiErr):
		msg := apiErr.Message
		if msg == "" {
			msg = fallback
		}
		return apiErr.Status, msg, ErrorDetail{Kind: listview.ErrorKindAPI, Status: apiErr.Status}

	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "The server took too long to respond. Please try again.",
			ErrorDetail{Kind: listview.ErrorKindTransport}

	case apiclient.IsTransport(err):
		return http.StatusBadGateway, forms.UserMessage(err, fallback), ErrorDetail{Kind: listview.ErrorKindTransport}

	case errors.Is(err, session.ErrMalformedLoginResponse):
		return http.StatusBadGateway, "Login successful but user data missing", ErrorDetail{Kind: listview.ErrorKindParse}

	case errors.Is(err, session.ErrNotAuthenticated):
		return http.StatusUnauthorized, "Session expired, please log in again", nil

	case errors.Is(err, listview.ErrScreenNotFound), errors.Is(err, listview.ErrScreenClosed):
		return http.StatusNotFound, "Screen not found", nil

	case errors.Is(err, forms.ErrInvalidAmount):
		return http.StatusBadRequest, "Please enter a valid amount", nil
	}

	return http.StatusInternalServerError, fallback, nil
}
