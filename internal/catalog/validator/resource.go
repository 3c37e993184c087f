package validator

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"voyago/pkg/logger"
	"voyago/pkg/model"

	"github.com/go-playground/validator/v10"
)

var (
	slotTimeRegex = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

type ResourceValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewResourceValidator(log *logger.Logger) *ResourceValidator {
	v := validator.New()

	if err := v.RegisterValidation("slot_time", validateSlotTime); err != nil {
		log.Fatal("Failed to register 'slot_time' validator",
			"error", err,
		)
	}

	log.Info("Resource validator initialized successfully")

	return &ResourceValidator{
		validate: v,
		logger:   log,
	}
}

// slot_time accepts a 24h wall-clock label like "09:00" or "17:30".
func validateSlotTime(fl validator.FieldLevel) bool {
	return slotTimeRegex.MatchString(fl.Field().String())
}

func (v *ResourceValidator) Validate(resource *model.Resource) error {
	if err := v.validate.Struct(resource); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	return v.validateSlotLayout(resource.Granularity, resource.SlotTemplates, resource.EndOfDay)
}

func (v *ResourceValidator) ValidateUpdate(update *model.ResourceUpdate) error {
	if err := v.validate.Struct(update); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	if update.Granularity != "" && update.SlotTemplates != nil {
		return v.validateSlotLayout(update.Granularity, *update.SlotTemplates, update.EndOfDay)
	}

	return nil
}

// validateSlotLayout enforces the cross-field rules the tag grammar cannot:
// slot resources need at least one template, templates must be strictly
// increasing, and end of day must come after the last slot start.
func (v *ResourceValidator) validateSlotLayout(granularity string, templates []string, endOfDay string) error {
	if granularity == model.GranularityDay {
		if len(templates) > 0 {
			return ValidationErrors{
				ValidationError{
					Field:   "SlotTemplates",
					Message: "day-granularity resources cannot define slot templates",
				},
			}
		}
		return nil
	}

	if len(templates) == 0 {
		return ValidationErrors{
			ValidationError{
				Field:   "SlotTemplates",
				Message: "slot-granularity resources need at least one slot template",
			},
		}
	}

	// Zero-padded HH:MM labels order correctly as strings.
	for i := 1; i < len(templates); i++ {
		if templates[i] <= templates[i-1] {
			return ValidationErrors{
				ValidationError{
					Field:   "SlotTemplates",
					Message: fmt.Sprintf("slot templates must be strictly increasing, got %q after %q", templates[i], templates[i-1]),
				},
			}
		}
	}

	if endOfDay != "" && endOfDay <= templates[len(templates)-1] {
		return ValidationErrors{
			ValidationError{
				Field:   "EndOfDay",
				Message: fmt.Sprintf("end of day %q must be after the last slot start %q", endOfDay, templates[len(templates)-1]),
			},
		}
	}

	return nil
}

func (v *ResourceValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid MongoDB ObjectID", err.Field())
		case "slot_time":
			message = fmt.Sprintf("%s must be a 24h time label like 09:00", err.Field())
		case "timezone":
			message = fmt.Sprintf("%s must be a valid IANA time zone", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
