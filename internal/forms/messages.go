package forms

import (
	"errors"

	"jobpilot-admin/internal/apiclient"
	"jobpilot-admin/internal/normalize"
)

// DefaultErrorMessage is shown when nothing more specific is known
const DefaultErrorMessage = "Something went wrong. Please try again."

// UserMessage picks what to tell the user about err: the server's message
// when it sent one, then the first validation message, then fallback.
func UserMessage(err error, fallback string) string {
	if fallback == "" {
		fallback = DefaultErrorMessage
	}
	if err == nil {
		return fallback
	}

	if msg, ok := apiclient.MessageOf(err); ok {
		return msg
	}

	var verrs ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return verrs.Summary()
	}

	if normalize.IsParseError(err) {
		return "Could not read the server response. Please try again."
	}
	return fallback
}
