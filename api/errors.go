package api

import (
	"errors"
	"net/http"

	"github.com/Domenick1991/tripbooking/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

const codeInvalidRequest = "INVALID_REQUEST"

type errorResponse struct {
	Error  string            `json:"error"`
	Code   string            `json:"code,omitempty"`
	Fields map[string]string `json:"fields,omitempty"`
}

// writeError maps service errors to HTTP statuses. Unknown errors are
// logged and reported as 500 without their message.
func writeError(c *gin.Context, err error) {
	var vErr *domain.ValidationError
	switch {
	case errors.As(err, &vErr):
		c.JSON(http.StatusBadRequest, errorResponse{
			Error:  vErr.Message,
			Code:   vErr.Code,
			Fields: map[string]string{vErr.Field: vErr.Message},
		})
	case errors.Is(err, domain.ErrHotelNotFound),
		errors.Is(err, domain.ErrRoomNotFound),
		errors.Is(err, domain.ErrFlightNotFound):
		c.JSON(http.StatusNotFound, errorResponse{Error: err.Error(), Code: "NOT_FOUND"})
	default:
		requestLogger(c).WithError(err).Error("request failed")
		c.JSON(http.StatusInternalServerError, errorResponse{Error: http.StatusText(http.StatusInternalServerError)})
	}
}

func writeBindError(c *gin.Context, err error) {
	resp := errorResponse{Error: "invalid request", Code: codeInvalidRequest}

	var vErrs validator.ValidationErrors
	if errors.As(err, &vErrs) {
		resp.Fields = make(map[string]string, len(vErrs))
		for _, fe := range vErrs {
			resp.Fields[fe.Field()] = fieldMessage(fe)
		}
	} else {
		resp.Error = err.Error()
	}
	c.JSON(http.StatusBadRequest, resp)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "bookingdate":
		return "date has wrong format, use YYYY-MM-DD"
	case "gt":
		return "must be greater than " + fe.Param()
	case "max":
		return "must be at most " + fe.Param() + " characters"
	default:
		return "invalid value"
	}
}

func requestLogger(c *gin.Context) logrus.FieldLogger {
	if v, ok := c.Get(loggerKey); ok {
		if log, ok := v.(logrus.FieldLogger); ok {
			return log
		}
	}
	return logrus.StandardLogger()
}
