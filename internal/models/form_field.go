package models

import (
	"encoding/json"
	"fmt"
	"sort"
)

type FieldType string

const (
	FieldText        FieldType = "text"
	FieldTextArea    FieldType = "textarea"
	FieldNumeric     FieldType = "numeric"
	FieldMcq         FieldType = "mcq"
	FieldMrq         FieldType = "mrq"
	FieldTextDisplay FieldType = "text_display"
)

// FieldTypes lists every field kind in builder menu order.
var FieldTypes = []FieldType{
	FieldText,
	FieldTextArea,
	FieldNumeric,
	FieldMcq,
	FieldMrq,
	FieldTextDisplay,
}

func (t FieldType) IsValid() bool {
	switch t {
	case FieldText, FieldTextArea, FieldNumeric, FieldMcq, FieldMrq, FieldTextDisplay:
		return true
	default:
		return false
	}
}

// HasChoices reports whether the field is answered by picking from a choice list.
func (t FieldType) HasChoices() bool {
	return t == FieldMcq || t == FieldMrq
}

// HasResponse is false only for static display fields.
func (t FieldType) HasResponse() bool {
	return t.IsValid() && t != FieldTextDisplay
}

// IsMulti reports whether the response is a list of strings rather than a string.
func (t FieldType) IsMulti() bool {
	return t == FieldMrq
}

// Attribute names as they appear on the wire. Validation errors use these as path segments.
const (
	AttrLabel       = "label"
	AttrDescription = "description"
	AttrPlaceholder = "placeholder"
	AttrRequired    = "required"
	AttrHasFeedback = "has_feedback"
	AttrChoices     = "choices"
	AttrContent     = "content"
)

var sharedAttributes = []string{AttrLabel, AttrDescription, AttrPlaceholder, AttrRequired, AttrHasFeedback}

// LegalAttributes returns the attributes a field of type t may carry besides "type".
func (t FieldType) LegalAttributes() []string {
	switch t {
	case FieldText, FieldTextArea, FieldNumeric:
		return sharedAttributes
	case FieldMcq, FieldMrq:
		return append(append([]string{}, sharedAttributes...), AttrChoices)
	case FieldTextDisplay:
		return []string{AttrContent}
	default:
		return nil
	}
}

func (t FieldType) allows(attr string) bool {
	for _, a := range t.LegalAttributes() {
		if a == attr {
			return true
		}
	}
	return false
}

// FormField describes one field of a submission template. Type is the
// discriminator; the remaining attributes are only meaningful for the kinds
// listed in LegalAttributes.
type FormField struct {
	Type        FieldType `json:"type"`
	Label       string    `json:"label,omitempty"`
	Description string    `json:"description,omitempty"`
	Placeholder string    `json:"placeholder,omitempty"`
	Required    bool      `json:"required,omitempty"`
	HasFeedback bool      `json:"has_feedback,omitempty"`
	Choices     []string  `json:"choices,omitempty"`
	Content     string    `json:"content,omitempty"`

	// attributes present in the decoded payload that the type does not allow
	illegal []string
}

type formFieldAlias FormField

// Normalized returns a copy holding only the attributes legal for its type.
func (f FormField) Normalized() FormField {
	out := FormField{Type: f.Type}
	switch f.Type {
	case FieldTextDisplay:
		out.Content = f.Content
	case FieldText, FieldTextArea, FieldNumeric, FieldMcq, FieldMrq:
		out.Label = f.Label
		out.Description = f.Description
		out.Placeholder = f.Placeholder
		out.Required = f.Required
		out.HasFeedback = f.HasFeedback
		if f.Type.HasChoices() {
			out.Choices = append([]string(nil), f.Choices...)
		}
	}
	return out
}

// IllegalAttributes lists attributes the decoded payload carried that are not
// allowed for its type, sorted by name.
func (f FormField) IllegalAttributes() []string {
	return f.illegal
}

// DisplayName is the label for input fields and the content for static fields.
func (f FormField) DisplayName() string {
	if f.Type == FieldTextDisplay {
		return f.Content
	}
	return f.Label
}

func (f FormField) MarshalJSON() ([]byte, error) {
	return json.Marshal(formFieldAlias(f.Normalized()))
}

func (f *FormField) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("form field must be an object: %w", err)
	}

	var alias formFieldAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}
	*f = FormField(alias)
	f.illegal = nil

	if !f.Type.IsValid() {
		return nil
	}
	for key := range raw {
		if key == "type" {
			continue
		}
		if !f.Type.allows(key) {
			f.illegal = append(f.illegal, key)
		}
	}
	sort.Strings(f.illegal)
	return nil
}
