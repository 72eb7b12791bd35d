package forms

import (
	"fmt"

	apperrors "github.com/SAP-F-2025/course-service/internal/errors"
	"github.com/SAP-F-2025/course-service/internal/models"
	"github.com/SAP-F-2025/course-service/internal/validator"
)

type WidgetKind string

const (
	WidgetTextInput     WidgetKind = "text_input"
	WidgetTextArea      WidgetKind = "textarea"
	WidgetNumberInput   WidgetKind = "number_input"
	WidgetRadioGroup    WidgetKind = "radio_group"
	WidgetCheckboxGroup WidgetKind = "checkbox_group"
	WidgetStatic        WidgetKind = "static"
)

type Option struct {
	Index    int    `json:"index"`
	Label    string `json:"label"`
	Selected bool   `json:"selected"`
}

// Widget is the input a client draws for one field. It carries the current
// value and whatever error the caller handed in; it never validates.
type Widget struct {
	Kind        WidgetKind `json:"kind"`
	Name        string     `json:"name"`
	Label       string     `json:"label,omitempty"`
	Description string     `json:"description,omitempty"`
	Placeholder string     `json:"placeholder,omitempty"`
	Required    bool       `json:"required,omitempty"`
	HasFeedback bool       `json:"has_feedback,omitempty"`
	ReadOnly    bool       `json:"read_only"`
	Value       string     `json:"value,omitempty"`
	Values      []string   `json:"values,omitempty"`
	Options     []Option   `json:"options,omitempty"`
	Content     string     `json:"content,omitempty"`
	Error       string     `json:"error,omitempty"`

	field models.FormField
}

// Render maps a response field to its widget.
func Render(name string, field models.FormResponseField, readOnly bool, errMsg string) (Widget, error) {
	w := Widget{
		Name:        name,
		Label:       field.Label,
		Description: field.Description,
		Placeholder: field.Placeholder,
		Required:    field.Required,
		HasFeedback: field.HasFeedback,
		ReadOnly:    readOnly,
		Error:       errMsg,
		field:       field.FormField,
	}

	switch field.Type {
	case models.FieldText:
		w.Kind = WidgetTextInput
		w.Value = field.Value()
	case models.FieldTextArea:
		w.Kind = WidgetTextArea
		w.Value = field.Value()
	case models.FieldNumeric:
		w.Kind = WidgetNumberInput
		w.Value = field.Value()
	case models.FieldMcq:
		w.Kind = WidgetRadioGroup
		w.Value = field.Value()
		w.Options = options(field.Choices, selectedSet(field.Response))
	case models.FieldMrq:
		w.Kind = WidgetCheckboxGroup
		if field.Response != nil {
			w.Values = append([]string{}, field.Response.Choices...)
		}
		w.Options = options(field.Choices, selectedSet(field.Response))
	case models.FieldTextDisplay:
		w = Widget{Kind: WidgetStatic, Name: name, Content: field.Content, ReadOnly: true, field: field.FormField}
	default:
		return Widget{}, fmt.Errorf("%w: %s", ErrInvalidFieldType, field.Type)
	}
	return w, nil
}

// RenderSubmission renders responses in order, attaching errors keyed by
// form_response_data.<i>.response.
func RenderSubmission(responses []models.FormResponseField, readOnly bool, errs validator.ValidationErrors) ([]Widget, error) {
	widgets := make([]Widget, 0, len(responses))
	for i, field := range responses {
		path := apperrors.Path(validator.FormResponseDataPath, i, "response")
		var msg string
		if e := errs.ByField(path); e != nil {
			msg = e.Message
		}
		w, err := Render(path, field, readOnly, msg)
		if err != nil {
			return nil, fmt.Errorf("field %d: %w", i, err)
		}
		widgets = append(widgets, w)
	}
	return widgets, nil
}

// Apply is the widget's change handler: given the current response and the
// raw input, it returns the next response. For checkbox groups input toggles
// that choice; the result keeps definition order.
func (w Widget) Apply(current *models.Response, input string) (*models.Response, error) {
	if w.Kind == WidgetStatic {
		return nil, ErrNoInput
	}
	if w.ReadOnly {
		return current.Clone(), ErrReadOnly
	}

	switch w.Kind {
	case WidgetTextInput, WidgetTextArea, WidgetNumberInput, WidgetRadioGroup:
		return models.TextResponse(input), nil
	case WidgetCheckboxGroup:
		selected := selectedSet(current)
		if selected[input] {
			delete(selected, input)
		} else {
			selected[input] = true
		}
		next := models.ChoicesResponse()
		for _, c := range w.field.Choices {
			if selected[c] {
				next.Choices = append(next.Choices, c)
				delete(selected, c)
			}
		}
		return next, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidFieldType, w.Kind)
	}
}

func options(choices []string, selected map[string]bool) []Option {
	out := make([]Option, len(choices))
	for i, c := range choices {
		out[i] = Option{Index: i, Label: c, Selected: selected[c]}
	}
	return out
}

func selectedSet(r *models.Response) map[string]bool {
	set := make(map[string]bool)
	if r == nil {
		return set
	}
	if r.Multi {
		for _, c := range r.Choices {
			set[c] = true
		}
	} else if r.Text != "" {
		set[r.Text] = true
	}
	return set
}
