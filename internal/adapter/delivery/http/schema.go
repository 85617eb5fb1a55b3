package http

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/vadimbarashkov/url-shorter/internal/entity"
)

// shortenRequest represents the structure for a request to shorten a URL.
type shortenRequest struct {
	FullURL string `json:"fullUrl" validate:"required"`
}

// shortenResponse represents the structure for a response containing the short URL.
type shortenResponse struct {
	ShortURL string `json:"shortUrl"`
}

// destinationResponse carries the destination of a resolved short URL.
type destinationResponse struct {
	DestinationURL string `json:"Destination Url"`
}

// urlResponse represents the structure for a response containing a full URL record.
type urlResponse struct {
	ID             int64     `json:"id"`
	FullURL        string    `json:"fullUrl"`
	ShortURL       string    `json:"shortUrl"`
	ExpirationTime time.Time `json:"expirationTime"`
	Expired        bool      `json:"expired"`
}

func toURLResponse(url *entity.URL, now time.Time) urlResponse {
	return urlResponse{
		ID:             url.ID,
		FullURL:        url.FullURL,
		ShortURL:       url.ShortURL,
		ExpirationTime: url.ExpirationTime,
		Expired:        url.IsExpired(now),
	}
}

// Plain-text messages for failures that never reach the use case.
const (
	emptyRequestBodyMsg   = "empty request body"
	invalidRequestBodyMsg = "invalid request body"
	invalidDayMsg         = "day must be an integer"
	serverErrorMsg        = "server error occurred"
)

// messageForTag returns a user-friendly message based on the validation tag.
func messageForTag(tag string) string {
	switch tag {
	case "required":
		return "this field is required"
	default:
		return "invalid value"
	}
}

// validationErrorMessage renders the first validation failure as "field: message".
func validationErrorMessage(err error) string {
	errs, ok := err.(validator.ValidationErrors)
	if !ok || len(errs) == 0 {
		return invalidRequestBodyMsg
	}

	return errs[0].Field() + ": " + messageForTag(errs[0].Tag())
}
