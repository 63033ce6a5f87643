package service

import (
	"github.com/go-playground/validator/v10"

	"cloudlodge/internal/entities"
	apperrors "cloudlodge/internal/errors"
)

var validate = validator.New()

// ModificationForm is what the edit dialog submits before the coordinator
// runs. Guest count is not range-checked here: out-of-bounds values are
// clamped into the room's limits, not rejected.
type ModificationForm struct {
	CheckInDate  string `validate:"required,datetime=2006-01-02"`
	CheckOutDate string `validate:"required,datetime=2006-01-02"`
	NumGuests    int    `validate:"gte=0"`
}

// Parse validates the form and turns it into a DateRange. Everything caught
// here fails before any network call fires.
func (f ModificationForm) Parse() (entities.DateRange, error) {
	if err := validate.Struct(f); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
			field := errs[0]
			if field.Tag() == "required" {
				return entities.DateRange{}, apperrors.Validation("check-in and check-out dates are both required")
			}
			return entities.DateRange{}, apperrors.Validation("invalid value for %s", field.Field())
		}
		return entities.DateRange{}, apperrors.Validation("invalid form: %v", err)
	}

	start, err := entities.ParseDay(f.CheckInDate)
	if err != nil {
		return entities.DateRange{}, apperrors.Validation("invalid check-in date %q", f.CheckInDate)
	}
	end, err := entities.ParseDay(f.CheckOutDate)
	if err != nil {
		return entities.DateRange{}, apperrors.Validation("invalid check-out date %q", f.CheckOutDate)
	}
	return entities.DateRange{Start: start, End: end}, nil
}
