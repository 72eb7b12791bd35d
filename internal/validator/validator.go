package validator

import (
	"reflect"
	"strings"

	"github.com/SAP-F-2025/course-service/internal/models"
	"github.com/go-playground/validator/v10"
)

// Validator is the main validator instance that combines all validation types
type Validator struct {
	structValidator    *validator.Validate
	formFieldValidator *FormFieldValidator
}

// New creates a new centralized validator instance
func New() *Validator {
	structValidator := validator.New()

	// Register all custom validators once
	registerCustomValidators(structValidator)

	return &Validator{
		structValidator:    structValidator,
		formFieldValidator: NewFormFieldValidator(),
	}
}

// ValidateStruct validates struct tags only
func (v *Validator) ValidateStruct(s interface{}) error {
	return v.structValidator.Struct(s)
}

// Validate validates struct tags and returns our error type on failure
func (v *Validator) Validate(s interface{}) error {
	if err := v.ValidateStruct(s); err != nil {
		if errs := ToValidationErrors(err); len(errs) > 0 {
			return errs
		}
		return err
	}
	return nil
}

// FormField returns the form field validator
func (v *Validator) FormField() *FormFieldValidator {
	return v.formFieldValidator
}

// Engine exposes the underlying go-playground validator, e.g. for gin's binding.
func (v *Validator) Engine() *validator.Validate {
	return v.structValidator
}

// registerCustomValidators registers all custom validation functions
func registerCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("field_type", validateFieldType)
	validate.RegisterValidation("submission_type", validateSubmissionType)
	validate.RegisterValidation("course_role", validateCourseRole)
	validate.RegisterValidation("not_blank", validateNotBlank)

	// Custom tag name function for better error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// Custom validation functions
func validateFieldType(fl validator.FieldLevel) bool {
	return models.FieldType(fl.Field().String()).IsValid()
}

func validateSubmissionType(fl validator.FieldLevel) bool {
	return models.SubmissionType(fl.Field().String()).IsValid()
}

func validateCourseRole(fl validator.FieldLevel) bool {
	return models.CourseRole(fl.Field().String()).IsValid()
}

func validateNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}
