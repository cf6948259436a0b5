package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func RespondJSON(c *gin.Context, status string, code int, message string, data interface{}, errors interface{}) {
	c.JSON(code, StandardApiResponse{
		Status:     status,
		StatusCode: code,
		Message:    message,
		Data:       data,
		Errors:     errors,
	})
}

// RespondOK writes a 200 success envelope
func RespondOK(c *gin.Context, message string, data interface{}) {
	RespondJSON(c, "success", http.StatusOK, message, data, nil)
}

// RespondCreated writes a 201 success envelope
func RespondCreated(c *gin.Context, message string, data interface{}) {
	RespondJSON(c, "success", http.StatusCreated, message, data, nil)
}

// RespondBadRequest reports a body or query that could not be bound
func RespondBadRequest(c *gin.Context, err error) {
	RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
}
