package response

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobpilot-admin/internal/apiclient"
	"jobpilot-admin/internal/forms"
	"jobpilot-admin/internal/listview"
	"jobpilot-admin/internal/normalize"
	"jobpilot-admin/internal/session"
	"jobpilot-admin/pkg/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
	logger.SetDefault(logger.NewWithHandler(slog.NewTextHandler(io.Discard, nil)))
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantMsg  string
	}{
		{
			name:     "validation",
			err:      forms.ValidationErrors{{Field: "email", Rule: "required", Message: "Email is required"}},
			wantCode: http.StatusBadRequest,
			wantMsg:  "Email is required",
		},
		{
			name:     "parse",
			err:      fmt.Errorf("list users: %w", &normalize.ParseError{Reason: "bad"}),
			wantCode: http.StatusBadGateway,
			wantMsg:  "could not parse response",
		},
		{
			name:     "api with message",
			err:      &apiclient.APIError{Status: http.StatusConflict, Message: "Email already exists"},
			wantCode: http.StatusConflict,
			wantMsg:  "Email already exists",
		},
		{
			name:     "api without message",
			err:      &apiclient.APIError{Status: http.StatusNotFound},
			wantCode: http.StatusNotFound,
			wantMsg:  "Failed to load",
		},
		{
			name:     "transport",
			err:      &apiclient.TransportError{Method: "GET", Path: "/user", Err: errors.New("connection refused")},
			wantCode: http.StatusBadGateway,
			wantMsg:  "Failed to load",
		},
		{
			name:     "timeout",
			err:      &apiclient.TransportError{Method: "GET", Path: "/user", Err: context.DeadlineExceeded},
			wantCode: http.StatusGatewayTimeout,
			wantMsg:  "The server took too long to respond. Please try again.",
		},
		{
			name:     "malformed login",
			err:      fmt.Errorf("%w: missing user", session.ErrMalformedLoginResponse),
			wantCode: http.StatusBadGateway,
			wantMsg:  "Login successful but user data missing",
		},
		{
			name:     "screen",
			err:      listview.ErrScreenNotFound,
			wantCode: http.StatusNotFound,
			wantMsg:  "Screen not found",
		},
		{
			name:     "unknown",
			err:      errors.New("boom"),
			wantCode: http.StatusInternalServerError,
			wantMsg:  "Failed to load",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, msg, _ := Classify(tt.err, "Failed to load")
			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantMsg, msg)
		})
	}
}

func TestRespondError_Envelope(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/faq/create", nil)

	RespondError(c, forms.ValidationErrors{{Field: "question", Rule: "required", Message: "Question is required"}}, "")

	require.Equal(t, http.StatusBadRequest, w.Code)
	var body struct {
		Status     string             `json:"status"`
		StatusCode int                `json:"status_code"`
		Message    string             `json:"message"`
		Errors     []forms.FieldError `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "error", body.Status)
	assert.Equal(t, http.StatusBadRequest, body.StatusCode)
	assert.Equal(t, "Question is required", body.Message)
	require.Len(t, body.Errors, 1)
	assert.Equal(t, "question", body.Errors[0].Field)
}

func TestRespondOK(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	RespondOK(c, "Users retrieved", ListData{Items: []int{1}, Total: 1, Page: 1, Limit: 10, Summary: "Showing 1–1 of 1"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{
		"status":"success","status_code":200,"message":"Users retrieved",
		"data":{"items":[1],"total":1,"page":1,"limit":10,"summary":"Showing 1–1 of 1"}
	}`, w.Body.String())
}
