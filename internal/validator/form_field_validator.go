package validator

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	apperrors "github.com/SAP-F-2025/course-service/internal/errors"
	"github.com/SAP-F-2025/course-service/internal/models"
)

const (
	FormFieldsPath       = "form_fields"
	FormResponseDataPath = "form_response_data"
	responseAttr         = "response"
)

// FormFieldValidator validates template fields (authoring phase) and
// submission responses (submission phase).
type FormFieldValidator struct{}

// NewFormFieldValidator creates a new form field validator
func NewFormFieldValidator() *FormFieldValidator {
	return &FormFieldValidator{}
}

// ValidateFields checks the structure of a template's field list. Required
// flags are not enforced here; they only matter once a member submits.
func (v *FormFieldValidator) ValidateFields(fields []models.FormField) ValidationErrors {
	if len(fields) == 0 {
		return ValidationErrors{*apperrors.NewValidationErrorWithRule(FormFieldsPath, "must contain at least 1 field", "min", 0)}
	}

	var errs ValidationErrors
	for i, field := range fields {
		errs = append(errs, v.ValidateField(apperrors.Path(FormFieldsPath, i), field)...)
	}
	return errs
}

// ValidateField checks one field against the shape of its type.
func (v *FormFieldValidator) ValidateField(path string, field models.FormField) ValidationErrors {
	var errs ValidationErrors
	add := func(attr, msg, rule string, value interface{}) {
		errs = append(errs, *apperrors.NewValidationErrorWithRule(apperrors.Path(path, attr), msg, rule, value))
	}

	for _, attr := range field.IllegalAttributes() {
		add(attr, fmt.Sprintf("is not allowed for %s fields", field.Type), "illegal_attribute", nil)
	}

	switch field.Type {
	case models.FieldText, models.FieldTextArea, models.FieldNumeric:
		if strings.TrimSpace(field.Label) == "" {
			add(models.AttrLabel, "is required", "required", field.Label)
		}
	case models.FieldMcq, models.FieldMrq:
		if strings.TrimSpace(field.Label) == "" {
			add(models.AttrLabel, "is required", "required", field.Label)
		}
		if len(field.Choices) == 0 {
			add(models.AttrChoices, "must have at least 1 choice", "min", 0)
		}
		for i, choice := range field.Choices {
			if strings.TrimSpace(choice) == "" {
				add(apperrors.Path(models.AttrChoices, i), "must not be blank", "not_blank", choice)
			}
		}
	case models.FieldTextDisplay:
		if strings.TrimSpace(field.Content) == "" {
			add(models.AttrContent, "is required", "required", field.Content)
		}
	default:
		add("type", "must be a valid field type (text, textarea, numeric, mcq, mrq, text_display)", "field_type", field.Type)
	}

	return errs
}

// ValidateResponses checks submitted answers against each field's required
// flag and response shape.
func (v *FormFieldValidator) ValidateResponses(responses []models.FormResponseField) ValidationErrors {
	var errs ValidationErrors
	for i, field := range responses {
		errs = append(errs, v.ValidateResponse(apperrors.Path(FormResponseDataPath, i, responseAttr), field)...)
	}
	return errs
}

// ValidateResponse checks a single answer; path points at its response attribute.
func (v *FormFieldValidator) ValidateResponse(path string, field models.FormResponseField) ValidationErrors {
	fail := func(msg, rule string, value interface{}) ValidationErrors {
		return ValidationErrors{*apperrors.NewValidationErrorWithRule(path, msg, rule, value)}
	}

	resp := field.Response
	switch field.Type {
	case models.FieldTextDisplay:
		return nil
	case models.FieldText, models.FieldTextArea:
		if resp != nil && resp.Multi {
			return fail("must be a string", "type", resp.Choices)
		}
		if field.Required && resp.IsEmpty() {
			return fail("is required", "required", "")
		}
	case models.FieldNumeric:
		if resp != nil && resp.Multi {
			return fail("must be a number", "numeric", resp.Choices)
		}
		if resp.IsEmpty() {
			if field.Required {
				return fail("is required", "required", "")
			}
			return nil
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(resp.Text), 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return fail("must be a number", "numeric", resp.Text)
		}
	case models.FieldMcq:
		if resp != nil && resp.Multi {
			return fail("must be a single choice", "type", resp.Choices)
		}
		if resp.IsEmpty() {
			if field.Required {
				return fail("is required", "required", "")
			}
			return nil
		}
		if !containsChoice(field.Choices, resp.Text) {
			return fail("must be one of the choices", "oneof", resp.Text)
		}
	case models.FieldMrq:
		if resp != nil && !resp.Multi {
			return fail("must be a list of choices", "type", resp.Text)
		}
		if resp.IsEmpty() {
			if field.Required {
				return fail("is required", "required", []string{})
			}
			return nil
		}
		for _, choice := range resp.Choices {
			if !containsChoice(field.Choices, choice) {
				return fail("must only contain listed choices", "oneof", choice)
			}
		}
	default:
		return fail("has an unknown field type", "field_type", field.Type)
	}
	return nil
}

// ValidateAgainstTemplate ensures responses follow the template's tag sequence.
func (v *FormFieldValidator) ValidateAgainstTemplate(fields []models.FormField, responses []models.FormResponseField) ValidationErrors {
	if len(fields) != len(responses) {
		return ValidationErrors{*apperrors.NewValidationErrorWithRule(
			FormResponseDataPath,
			fmt.Sprintf("must contain %d fields to match the template", len(fields)),
			"len", len(responses),
		)}
	}

	var errs ValidationErrors
	for i := range fields {
		if fields[i].Type != responses[i].Type {
			errs = append(errs, *apperrors.NewValidationErrorWithRule(
				apperrors.Path(FormResponseDataPath, i, "type"),
				fmt.Sprintf("must be %s to match the template", fields[i].Type),
				"template_type", responses[i].Type,
			))
		}
	}
	return errs
}

func containsChoice(choices []string, value string) bool {
	for _, c := range choices {
		if c == value {
			return true
		}
	}
	return false
}

// ParseChoices splits newline-separated choice text into an ordered list.
// Lines are trimmed and blank lines dropped; duplicates are kept on purpose.
func ParseChoices(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")

	choices := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		choices = append(choices, line)
	}
	return choices
}

// FormatChoices is the inverse of ParseChoices for editing in a textarea.
func FormatChoices(choices []string) string {
	return strings.Join(choices, "\n")
}
