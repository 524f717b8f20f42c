package validator

import (
	"servimarket/pkg/logger"
	"servimarket/pkg/model"
	"servimarket/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type BookingValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewBookingValidator(log *logger.Logger) *BookingValidator {
	return &BookingValidator{
		validate: validation.New(),
		logger:   log,
	}
}

func (v *BookingValidator) ValidateRequest(req *model.BookingRequest) error {
	return validation.Struct(v.validate, req)
}

func (v *BookingValidator) Validate(booking *model.Booking) error {
	return validation.Struct(v.validate, booking)
}

func (v *BookingValidator) ValidateStatusUpdate(update *model.BookingStatusUpdate) error {
	return validation.Struct(v.validate, update)
}
