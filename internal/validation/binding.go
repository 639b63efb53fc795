package validation

import (
	"fmt"

	"beautybook/internal/calendar"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Register adds the booking tags to gin's validator:
//
//	timeslot  one of the daily grid start times, "08:00".."17:00"
//	isodate   a calendar date in YYYY-MM-DD form
func Register() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}
	return RegisterOn(v)
}

func RegisterOn(v *validator.Validate) error {
	if err := v.RegisterValidation("timeslot", validTimeSlot); err != nil {
		return fmt.Errorf("failed to register timeslot: %w", err)
	}
	if err := v.RegisterValidation("isodate", validISODate); err != nil {
		return fmt.Errorf("failed to register isodate: %w", err)
	}
	return nil
}

func validTimeSlot(fl validator.FieldLevel) bool {
	return calendar.IsValidSlot(fl.Field().String())
}

func validISODate(fl validator.FieldLevel) bool {
	_, err := calendar.ParseDate(fl.Field().String())
	return err == nil
}
