package forms

import (
	"testing"

	"github.com/SAP-F-2025/course-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func TestBuilder_AddEditValidate(t *testing.T) {
	b := NewBuilder(nil)
	assert.NotEmpty(t, b.Validate(), "empty template must not validate")

	i, err := b.Add(models.FieldMcq)
	require.NoError(t, err)
	assert.Equal(t, 0, i)

	errs := b.Validate()
	assert.NotNil(t, errs.ByField("form_fields.0.label"))
	assert.NotNil(t, errs.ByField("form_fields.0.choices"))

	require.NoError(t, b.Update(0, FieldPatch{
		Label:       strPtr("Q1"),
		ChoicesText: strPtr("A\nB\nA\n"),
		Required:    boolPtr(true),
	}))
	assert.Empty(t, b.Validate())

	fields := b.Fields()
	require.Len(t, fields, 1)
	assert.Equal(t, []string{"A", "B", "A"}, fields[0].Choices)
	assert.True(t, fields[0].Required)
}

func TestBuilder_AddRejectsUnknownType(t *testing.T) {
	_, err := NewBuilder(nil).Add("slider")
	assert.ErrorIs(t, err, ErrInvalidFieldType)
}

func TestBuilder_RetypeDropsIllegalAttributes(t *testing.T) {
	b := NewBuilder([]models.FormField{{Type: models.FieldMcq, Label: "Q", Choices: []string{"A"}}})

	text := models.FieldText
	require.NoError(t, b.Update(0, FieldPatch{Type: &text}))
	f := b.Fields()[0]
	assert.Equal(t, models.FieldText, f.Type)
	assert.Equal(t, "Q", f.Label)
	assert.Nil(t, f.Choices)

	display := models.FieldTextDisplay
	require.NoError(t, b.Update(0, FieldPatch{Type: &display}))
	f = b.Fields()[0]
	assert.Equal(t, "Q", f.Content)
	assert.Empty(t, f.Label)
}

func TestBuilder_MoveRemoveReorder(t *testing.T) {
	b := NewBuilder([]models.FormField{
		{Type: models.FieldText, Label: "a"},
		{Type: models.FieldText, Label: "b"},
		{Type: models.FieldText, Label: "c"},
	})

	labels := func() []string {
		var out []string
		for _, f := range b.Fields() {
			out = append(out, f.Label)
		}
		return out
	}

	require.NoError(t, b.Move(0, 2))
	assert.Equal(t, []string{"b", "c", "a"}, labels())

	require.NoError(t, b.Move(2, 0))
	assert.Equal(t, []string{"a", "b", "c"}, labels())

	require.NoError(t, b.Reorder([]int{2, 0, 1}))
	assert.Equal(t, []string{"c", "a", "b"}, labels())

	assert.ErrorIs(t, b.Reorder([]int{0, 0, 1}), ErrFieldIndexOutOfRange)
	assert.ErrorIs(t, b.Reorder([]int{0, 1}), ErrFieldIndexOutOfRange)

	require.NoError(t, b.Remove(1))
	assert.Equal(t, []string{"c", "b"}, labels())
	assert.ErrorIs(t, b.Remove(5), ErrFieldIndexOutOfRange)

	require.NoError(t, b.Insert(0, models.FormField{Type: models.FieldTextDisplay, Content: "intro"}))
	assert.Equal(t, 3, b.Len())
	assert.Equal(t, models.FieldTextDisplay, b.Fields()[0].Type)
}
