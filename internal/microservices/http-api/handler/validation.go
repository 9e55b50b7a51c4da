package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"booklease/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerOnce sync.Once

// RegisterValidators installs the custom binding rules on gin's validator.
// It is safe to call more than once.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("rentaltier", func(fl validator.FieldLevel) bool {
			return service.IsRentalTier(int(fl.Field().Int()))
		})
	})
}

var durationFields = map[string]bool{"RentalDays": true, "ExtendDays": true, "rental_days": true, "extend_days": true}

// bindError maps a ShouldBindJSON failure onto the domain's validation errors.
func bindError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		for _, fe := range verrs {
			if fe.Tag() == "rentaltier" || durationFields[fe.Field()] {
				return service.ErrInvalidDuration
			}
			if fe.Field() == "Rating" {
				return service.ErrInvalidRating
			}
		}
		fe := verrs[0]
		return invalidInput(fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag()))
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		switch {
		case durationFields[typeErr.Field]:
			return service.ErrInvalidDuration
		case typeErr.Field == "rating":
			return service.ErrInvalidRating
		}
		return invalidInput(fmt.Sprintf("%s has the wrong type", typeErr.Field))
	}
	return service.ErrInvalidInput
}
