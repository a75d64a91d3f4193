// Package apierr normalizes every failure into one JSON envelope:
// {status_code, detail, code, messages, timestamp}.
package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// Error codes carried in the envelope.
const (
	CodeNotFound       = "not_found"
	CodeValidation     = "validation_error"
	CodeAuthentication = "authentication_failed"
	CodeError          = "error"
)

// Envelope is the uniform error payload. Field names are part of the API.
type Envelope struct {
	StatusCode int       `json:"status_code"`
	Detail     string    `json:"detail"`
	Code       string    `json:"code"`
	Messages   any       `json:"messages"`
	Timestamp  time.Time `json:"timestamp"`
}

func write(c *gin.Context, status int, detail, code string, messages any) {
	c.AbortWithStatusJSON(status, Envelope{
		StatusCode: status,
		Detail:     detail,
		Code:       code,
		Messages:   messages,
		Timestamp:  time.Now().UTC(),
	})
}

// NotFound writes the 404 envelope.
func NotFound(c *gin.Context) {
	write(c, http.StatusNotFound, "Not found.", CodeNotFound, nil)
}

// Validation writes the 400 envelope. Binding errors from the validator
// are folded into a field -> message map.
func Validation(c *gin.Context, err error) {
	var messages any
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[strings.ToLower(fe.Field())] = "failed on " + fe.Tag()
		}
		messages = fields
	} else if err != nil {
		messages = err.Error()
	}
	write(c, http.StatusBadRequest, "Invalid input.", CodeValidation, messages)
}

// Unauthorized writes the 401 envelope.
func Unauthorized(c *gin.Context, detail string) {
	if detail == "" {
		detail = "Authentication credentials were not provided or are invalid."
	}
	write(c, http.StatusUnauthorized, detail, CodeAuthentication, nil)
}

// Internal writes the 500 envelope carrying the raw error message.
func Internal(c *gin.Context, err error) {
	var messages any
	if err != nil {
		messages = []string{err.Error()}
	}
	write(c, http.StatusInternalServerError, "A server error occurred.", CodeError, messages)
}

// Recovery returns a middleware that converts panics into the 500
// envelope. In debug mode the panic is re-raised to aid local diagnosis.
func Recovery(debug bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			if debug {
				panic(r)
			}
			err, ok := r.(error)
			if !ok {
				err = fmt.Errorf("%v", r)
			}
			Internal(c, err)
		}()
		c.Next()
	}
}
