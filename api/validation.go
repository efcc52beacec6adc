package api

import (
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/Domenick1991/tripbooking/internal/service/booking"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerOnce sync.Once

// registerValidators extends gin's validator with the booking date rule
// and reports fields by their JSON names.
func registerValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
		_ = v.RegisterValidation("bookingdate", isBookingDate)
	})
}

func isBookingDate(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	_, err := time.Parse(booking.DateLayout, s)
	return err == nil
}
