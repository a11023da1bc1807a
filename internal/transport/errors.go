package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/mathmusci/optivenue/internal/entity"
	"github.com/mathmusci/optivenue/internal/lock"
	"github.com/sirupsen/logrus"
)

const (
	CodeValidation = "validation_error"
	CodeNotFound   = "not_found"
	CodeImport     = "import_error"
	CodeBusy       = "busy"
	CodeTimeout    = "timeout"
	CodeInternal   = "internal_error"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error  string              `json:"error"`
	Code   string              `json:"code"`
	Fields []entity.FieldError `json:"fields,omitempty"`
}

var registerOnce sync.Once

// registerJSONNames makes binding errors report json field names.
func registerJSONNames() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
}

// bindJSON decodes the body into obj and turns decoding and binding failures
// into a *entity.ValidationError.
func bindJSON(c *gin.Context, obj any) error {
	err := c.ShouldBindJSON(obj)
	if err == nil {
		return nil
	}

	var ve entity.ValidationError
	var fieldErrs validator.ValidationErrors
	var timeErr *entity.TimeFormatError
	switch {
	case errors.As(err, &fieldErrs):
		for _, fe := range fieldErrs {
			ve.Add(fe.Field(), "%s", describe(fe))
		}
	case errors.As(err, &timeErr):
		ve.Add("start_time", "%s", timeErr.Error())
	default:
		ve.Add("body", "%s", err.Error())
	}
	return ve.Err()
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	default:
		return fmt.Sprintf("failed %q constraint", fe.Tag())
	}
}

// errorStatus maps a service error to its HTTP status and response body.
func errorStatus(err error) (int, ErrorResponse) {
	var (
		ve       *entity.ValidationError
		rejected *entity.BookingRejected
		ie       *entity.ImportError
	)
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: CodeValidation, Fields: ve.Fields}
	case errors.As(err, &rejected):
		return http.StatusConflict, ErrorResponse{Error: err.Error(), Code: string(rejected.Reason)}
	case errors.As(err, &ie):
		resp := ErrorResponse{Error: err.Error(), Code: CodeImport}
		if ie.Field != "" {
			resp.Fields = []entity.FieldError{{Field: ie.Field, Message: fmt.Sprintf("line %d: %v", ie.Line, ie.Err)}}
		}
		return http.StatusBadRequest, resp
	case errors.Is(err, entity.ErrNotFound):
		return http.StatusNotFound, ErrorResponse{Error: err.Error(), Code: CodeNotFound}
	case errors.Is(err, lock.ErrNotAcquired):
		return http.StatusServiceUnavailable, ErrorResponse{Error: "booking is busy, try again", Code: CodeBusy}
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, ErrorResponse{Error: "request timed out", Code: CodeTimeout}
	default:
		return http.StatusInternalServerError, ErrorResponse{Error: "internal server error", Code: CodeInternal}
	}
}

func abortWithError(c *gin.Context, err error) {
	status, body := errorStatus(err)
	if status >= http.StatusInternalServerError {
		logrus.WithError(err).WithField("path", c.Request.URL.Path).Error("Request error")
	}
	c.AbortWithStatusJSON(status, body)
}
