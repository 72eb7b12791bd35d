package forms

import (
	"fmt"

	"github.com/SAP-F-2025/course-service/internal/models"
	"github.com/SAP-F-2025/course-service/internal/validator"
)

// FieldPatch carries the edits to apply to a single field. Nil members are left untouched.
type FieldPatch struct {
	Type        *models.FieldType `json:"type" validate:"omitempty,field_type"`
	Label       *string           `json:"label"`
	Description *string           `json:"description"`
	Placeholder *string           `json:"placeholder"`
	Required    *bool             `json:"required"`
	HasFeedback *bool             `json:"has_feedback"`
	Choices     []string          `json:"choices"`
	ChoicesText *string           `json:"choices_text"`
	Content     *string           `json:"content"`
}

// Builder edits a template's field list the way the authoring form does:
// fields are added blank, edited in place, reordered and removed, then
// validated as a whole when the template is saved.
type Builder struct {
	fields    []models.FormField
	validator *validator.FormFieldValidator
}

func NewBuilder(fields []models.FormField) *Builder {
	b := &Builder{validator: validator.NewFormFieldValidator()}
	for _, f := range fields {
		b.fields = append(b.fields, f.Normalized())
	}
	return b
}

// Fields returns a copy of the current field list.
func (b *Builder) Fields() []models.FormField {
	out := make([]models.FormField, len(b.fields))
	for i, f := range b.fields {
		out[i] = f.Normalized()
	}
	return out
}

func (b *Builder) Len() int {
	return len(b.fields)
}

// Add appends a blank field of type t and returns its index.
func (b *Builder) Add(t models.FieldType) (int, error) {
	if !t.IsValid() {
		return -1, fmt.Errorf("%w: %s", ErrInvalidFieldType, t)
	}
	b.fields = append(b.fields, blankField(t))
	return len(b.fields) - 1, nil
}

// Insert places field at index, shifting later fields down.
func (b *Builder) Insert(index int, field models.FormField) error {
	if index < 0 || index > len(b.fields) {
		return ErrFieldIndexOutOfRange
	}
	if !field.Type.IsValid() {
		return fmt.Errorf("%w: %s", ErrInvalidFieldType, field.Type)
	}
	b.fields = append(b.fields, models.FormField{})
	copy(b.fields[index+1:], b.fields[index:])
	b.fields[index] = field.Normalized()
	return nil
}

func (b *Builder) Remove(index int) error {
	if !b.inRange(index) {
		return ErrFieldIndexOutOfRange
	}
	b.fields = append(b.fields[:index], b.fields[index+1:]...)
	return nil
}

// Move relocates the field at from so that it ends up at position to.
func (b *Builder) Move(from, to int) error {
	if !b.inRange(from) || !b.inRange(to) {
		return ErrFieldIndexOutOfRange
	}
	if from == to {
		return nil
	}
	f := b.fields[from]
	b.fields = append(b.fields[:from], b.fields[from+1:]...)
	b.fields = append(b.fields, models.FormField{})
	copy(b.fields[to+1:], b.fields[to:])
	b.fields[to] = f
	return nil
}

// Reorder permutes the fields; order[i] is the current index of the field that goes to position i.
func (b *Builder) Reorder(order []int) error {
	if len(order) != len(b.fields) {
		return fmt.Errorf("%w: order must list all %d fields", ErrFieldIndexOutOfRange, len(b.fields))
	}
	seen := make(map[int]bool, len(order))
	next := make([]models.FormField, len(order))
	for i, idx := range order {
		if !b.inRange(idx) || seen[idx] {
			return fmt.Errorf("%w: bad position %d", ErrFieldIndexOutOfRange, idx)
		}
		seen[idx] = true
		next[i] = b.fields[idx]
	}
	b.fields = next
	return nil
}

// Update applies patch to the field at index. Changing the type keeps the
// shared attributes and drops the ones the new type does not allow.
func (b *Builder) Update(index int, patch FieldPatch) error {
	if !b.inRange(index) {
		return ErrFieldIndexOutOfRange
	}
	f := b.fields[index]

	if patch.Type != nil && *patch.Type != f.Type {
		if !patch.Type.IsValid() {
			return fmt.Errorf("%w: %s", ErrInvalidFieldType, *patch.Type)
		}
		f = retype(f, *patch.Type)
	}
	if patch.Label != nil {
		f.Label = *patch.Label
	}
	if patch.Description != nil {
		f.Description = *patch.Description
	}
	if patch.Placeholder != nil {
		f.Placeholder = *patch.Placeholder
	}
	if patch.Required != nil {
		f.Required = *patch.Required
	}
	if patch.HasFeedback != nil {
		f.HasFeedback = *patch.HasFeedback
	}
	if patch.Choices != nil {
		f.Choices = append([]string{}, patch.Choices...)
	}
	if patch.ChoicesText != nil {
		f.Choices = validator.ParseChoices(*patch.ChoicesText)
	}
	if patch.Content != nil {
		f.Content = *patch.Content
	}

	b.fields[index] = f.Normalized()
	return nil
}

// Validate runs the authoring-phase checks over the whole list.
func (b *Builder) Validate() validator.ValidationErrors {
	return b.validator.ValidateFields(b.fields)
}

func (b *Builder) inRange(i int) bool {
	return i >= 0 && i < len(b.fields)
}

func blankField(t models.FieldType) models.FormField {
	f := models.FormField{Type: t}
	if t.HasChoices() {
		f.Choices = []string{}
	}
	return f
}

func retype(f models.FormField, t models.FieldType) models.FormField {
	out := f
	out.Type = t
	if t.HasChoices() && out.Choices == nil {
		out.Choices = []string{}
	}
	if t == models.FieldTextDisplay && out.Content == "" {
		out.Content = f.Label
	}
	if f.Type == models.FieldTextDisplay && out.Label == "" {
		out.Label = f.Content
	}
	return out.Normalized()
}
